// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/userdir/internal/model"
)

// ErrDuplicateKey はユニーク制約違反を示す。
// メールアドレスのユニークインデックスに挿入が弾かれた場合に返される。
var ErrDuplicateKey = errors.New("duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
// ドキュメントストアに対する単発の操作のみを提供し、リトライは行わない。
type UserRepository interface {
	// Insert はユーザーを作成し、ストアが採番したIDを返す。
	// メールアドレスが重複している場合はErrDuplicateKeyを返す。
	Insert(ctx context.Context, user *model.User) (string, error)

	// FindByID は指定IDのユーザーを取得する。
	// 見つからない場合、またはIDがストアのID形式として不正な場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスの完全一致でユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update は指定IDのユーザーにpatchの設定済みフィールドのみ適用する。
	// updated_atはupdatedAtの値で更新する。対象ドキュメントが存在した場合はtrueを返す。
	Update(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error)

	// Delete は指定IDのユーザーを削除する。削除された場合はtrueを返す。
	Delete(ctx context.Context, id string) (bool, error)

	// List はストアの自然順でユーザー一覧を返す。skip件読み飛ばし、最大limit件返す。
	List(ctx context.Context, skip, limit int64) ([]*model.User, error)

	// Count は全ユーザー数を返す。
	Count(ctx context.Context) (int, error)
}
