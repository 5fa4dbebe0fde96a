// Package user はユーザーディレクトリのドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/userdir/internal/model"
	"github.com/hitoshi/userdir/internal/repository"
)

// Service はユーザーディレクトリのサービス層。
// 作成時のメールアドレス一意性、部分更新、ページング付き一覧のビジネスロジックを提供する。
// リクエスト間で状態を保持せず、永続状態はストアのみが所有する。
type Service struct {
	repo repository.UserRepository
	now  func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(repo repository.UserRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Create はユーザーを作成する。
// メールアドレスが既に使用されている場合はConflictを返す。
// 挿入前の存在チェックで409を区別可能にし、ストア側のユニークインデックスを
// 同時作成の最終防衛線とする。
func (s *Service) Create(ctx context.Context, input *model.CreateUserInput) (*model.User, error) {
	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		slog.Error("failed to check email uniqueness", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	status := input.Status
	if status == "" {
		status = model.StatusActive
	}

	now := s.now().UTC()
	user := &model.User{
		Name:      input.Name,
		Email:     input.Email,
		Age:       input.Age,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.repo.Insert(ctx, user)
	if err != nil {
		// 存在チェックをすり抜けた同時作成はユニークインデックスで弾かれる
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewDuplicateEmailError()
		}
		slog.Error("failed to insert user", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	user.ID = id

	slog.Info("user created",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetByID は指定IDのユーザーを取得する。
// 不正な形式のIDも含め、解決できない場合はNotFoundを返す。
func (s *Service) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		slog.Error("failed to find user", slog.String("user_id", id), slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// GetByEmail はメールアドレスの完全一致でユーザーを取得する。
// 見つからない場合はNotFoundを返す。
func (s *Service) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find user by email", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// Update は設定済みフィールドのみを適用する部分更新を行う。
// 空のパッチの場合は現在のレコードをそのまま返し、updated_atは変更しない。
// 存在確認後の書き込みで対象が消えていた場合は内部エラーを返す。
func (s *Service) Update(ctx context.Context, id string, patch *model.UpdateUserInput) (*model.User, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.IsEmpty() {
		return current, nil
	}

	if patch.Email != nil && *patch.Email != current.Email {
		existing, err := s.repo.FindByEmail(ctx, *patch.Email)
		if err != nil {
			slog.Error("failed to check email uniqueness", slog.String("error", err.Error()))
			return nil, model.NewInternalError()
		}
		if existing != nil {
			return nil, model.NewDuplicateEmailError()
		}
	}

	matched, err := s.repo.Update(ctx, id, patch, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewDuplicateEmailError()
		}
		slog.Error("failed to update user", slog.String("user_id", id), slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	if !matched {
		// 直前の存在確認と書き込みの間に削除された
		slog.Error("update lost race", slog.String("user_id", id))
		return nil, model.NewInternalError()
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil || updated == nil {
		slog.Error("failed to reload updated user", slog.String("user_id", id))
		return nil, model.NewInternalError()
	}

	slog.Info("user updated", slog.String("user_id", id))

	return updated, nil
}

// Delete は指定IDのユーザーを削除する。
// 対象が存在しない場合はNotFoundを返す。
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		slog.Error("failed to delete user", slog.String("user_id", id), slog.String("error", err.Error()))
		return model.NewInternalError()
	}
	if !deleted {
		return model.NewUserNotFoundError()
	}

	slog.Info("user deleted", slog.String("user_id", id))

	return nil
}

// List はストアの自然順でユーザー一覧を返す。
// skipはページ番号から呼び出し側が算出する（skip = (page - 1) * limit）。
func (s *Service) List(ctx context.Context, skip, limit int) ([]*model.User, error) {
	users, err := s.repo.List(ctx, int64(skip), int64(limit))
	if err != nil {
		slog.Error("failed to list users", slog.String("error", err.Error()))
		return nil, model.NewInternalError()
	}
	return users, nil
}

// Count は一覧の取得とは独立に全ユーザー数を返す。
func (s *Service) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		slog.Error("failed to count users", slog.String("error", err.Error()))
		return 0, model.NewInternalError()
	}
	return total, nil
}
