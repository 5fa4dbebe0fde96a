// Package database はドキュメントストアへの接続ライフサイクルを管理する。
package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// コレクション名
const (
	UsersCollection    = "users"
	SessionsCollection = "sessions"
)

// ConnectionConfig は接続プールの設定を保持する。
type ConnectionConfig struct {
	URI         string
	MaxPoolSize uint64
	MinPoolSize uint64
	MaxIdleTime time.Duration
}

// DB はMongoDBクライアントと対象データベースを保持する。
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect はMongoDBへの接続を開き、疎通確認を行う。
// 接続URIのパスに含まれるデータベース名を対象データベースとして使用する。
// 疎通確認に失敗した場合はエラーを返す。起動時の接続失敗は呼び出し側で致命的エラーとして扱うこと。
func Connect(ctx context.Context, cfg ConnectionConfig) (*DB, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxIdleTime)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Pingに失敗したクライアントは残さない
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(databaseName(cfg.URI))

	return &DB{client: client, database: db}, nil
}

// databaseName は接続URIのパスからデータベース名を取り出す。
// URIにデータベース名が含まれない場合は"userdb"を使用する。
func databaseName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "userdb"
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "userdb"
	}
	return name
}

// Collection は指定された名前のコレクションを返す。
func (d *DB) Collection(name string) *mongo.Collection {
	return d.database.Collection(name)
}

// Ping はストアへの疎通確認を行う。
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes は必要なインデックスを作成する。
// インデックスは最適化であり、作成失敗は警告ログに留めて起動を中断しない。
// ただしemailユニークインデックスは重複作成の最終防衛線でもあるため、失敗は目立つ形で残す。
func (d *DB) EnsureIndexes(ctx context.Context) {
	users := d.Collection(UsersCollection)
	if _, err := users.Indexes().CreateMany(ctx, userIndexModels()); err != nil {
		slog.Warn("failed to create user indexes", slog.String("error", err.Error()))
	}

	sessions := d.Collection(SessionsCollection)
	if _, err := sessions.Indexes().CreateMany(ctx, sessionIndexModels()); err != nil {
		slog.Warn("failed to create session indexes", slog.String("error", err.Error()))
	}
}

// userIndexModels はusersコレクションのインデックス定義を返す。
func userIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
}

// sessionIndexModels はsessionsコレクションのインデックス定義を返す。
func sessionIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
		},
	}
}

// Close はストア接続を閉じる。接続が開いていない場合は何もしない（冪等）。
func (d *DB) Close(ctx context.Context) error {
	if d == nil || d.client == nil {
		return nil
	}
	client := d.client
	d.client = nil
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
