package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/userdir/internal/model"
)

// MongoUserRepo はMongoDBを使用したユーザーリポジトリ。
type MongoUserRepo struct {
	collection *mongo.Collection
}

// NewMongoUserRepo はMongoUserRepoを生成する。
func NewMongoUserRepo(collection *mongo.Collection) *MongoUserRepo {
	return &MongoUserRepo{collection: collection}
}

// userDocument はusersコレクションのドキュメント表現。
// モデルとBSONのマッピングはこの層に閉じ込める。
type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Age       *int               `bson:"age,omitempty"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// toUser はドキュメントをドメインモデルに変換する。
func (d *userDocument) toUser() *model.User {
	return &model.User{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Age:       d.Age,
		Status:    model.UserStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// Insert はユーザーを作成し、採番されたIDを返す。
// emailユニークインデックス違反はErrDuplicateKeyとして返す。
func (r *MongoUserRepo) Insert(ctx context.Context, user *model.User) (string, error) {
	doc := userDocument{
		Name:      user.Name,
		Email:     user.Email,
		Age:       user.Age,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateKey
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type: %T", result.InsertedID)
	}
	return oid.Hex(), nil
}

// FindByID は指定IDのユーザーを取得する。
// IDがObjectIDとして不正な場合は見つからなかったものとして扱う。
func (r *MongoUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc userDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return doc.toUser(), nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *MongoUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var doc userDocument
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return doc.toUser(), nil
}

// Update は設定済みフィールドのみを$setで部分更新する。
func (r *MongoUserRepo) Update(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	set := bson.M{"updated_at": updatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Age != nil {
		set["age"] = *patch.Age
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, ErrDuplicateKey
		}
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	return result.MatchedCount > 0, nil
}

// Delete は指定IDのユーザーを削除する。
func (r *MongoUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return result.DeletedCount > 0, nil
}

// List はコレクションの自然順でユーザー一覧を取得する。
// ソートキーは指定しない。挿入順で返るストアの挙動に依存する。
func (r *MongoUserRepo) List(ctx context.Context, skip, limit int64) ([]*model.User, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*model.User{}
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user document: %w", err)
		}
		users = append(users, doc.toUser())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Count は全ユーザー数を返す。
func (r *MongoUserRepo) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return int(n), nil
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)
