package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/userdir/internal/model"
	"github.com/hitoshi/userdir/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	insertFn      func(ctx context.Context, user *model.User) (string, error)
	findByIDFn    func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
	updateFn      func(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error)
	deleteFn      func(ctx context.Context, id string) (bool, error)
	listFn        func(ctx context.Context, skip, limit int64) ([]*model.User, error)
	countFn       func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) Insert(ctx context.Context, user *model.User) (string, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, user)
	}
	return "65a000000000000000000001", nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch, updatedAt)
	}
	return true, nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return true, nil
}

func (m *mockUserRepo) List(ctx context.Context, skip, limit int64) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx, skip, limit)
	}
	return []*model.User{}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

// apiErrorCode はAPIErrorのコードを取り出す。APIErrorでなければ空文字を返す。
func apiErrorCode(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// --- Create ---

func TestService_Create_Success(t *testing.T) {
	var inserted *model.User
	repo := &mockUserRepo{
		insertFn: func(ctx context.Context, user *model.User) (string, error) {
			inserted = user
			return "65a000000000000000000001", nil
		},
	}

	svc := NewService(repo)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	user, err := svc.Create(context.Background(), &model.CreateUserInput{
		Name:  "Ann",
		Email: "ann@x.com",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if user.ID != "65a000000000000000000001" {
		t.Errorf("ID = %q, want assigned id", user.ID)
	}
	if user.Email != "ann@x.com" {
		t.Errorf("Email = %q, want %q", user.Email, "ann@x.com")
	}
	if user.Status != model.StatusActive {
		t.Errorf("Status = %q, want default %q", user.Status, model.StatusActive)
	}
	if !user.CreatedAt.Equal(fixed) || !user.UpdatedAt.Equal(fixed) {
		t.Errorf("timestamps = %v/%v, want both %v", user.CreatedAt, user.UpdatedAt, fixed)
	}
	if inserted == nil {
		t.Fatal("expected Insert to be called")
	}
}

func TestService_Create_DuplicateEmail_ReturnsConflict(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "existing", Email: email}, nil
		},
	}

	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &model.CreateUserInput{
		Name:  "Ann",
		Email: "ann@x.com",
	})
	if apiErrorCode(err) != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeDuplicateEmail)
	}
}

// 事前チェック通過後にユニークインデックスで弾かれた場合もConflictになること
func TestService_Create_DuplicateKeyOnInsert_ReturnsConflict(t *testing.T) {
	repo := &mockUserRepo{
		insertFn: func(ctx context.Context, user *model.User) (string, error) {
			return "", repository.ErrDuplicateKey
		},
	}

	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &model.CreateUserInput{
		Name:  "Ann",
		Email: "ann@x.com",
	})
	if apiErrorCode(err) != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeDuplicateEmail)
	}
}

func TestService_Create_StoreFault_ReturnsInternalError(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, errors.New("connection reset")
		},
	}

	svc := NewService(repo)

	_, err := svc.Create(context.Background(), &model.CreateUserInput{
		Name:  "Ann",
		Email: "ann@x.com",
	})
	if apiErrorCode(err) != model.ErrCodeInternal {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeInternal)
	}
}

// --- GetByID / GetByEmail ---

func TestService_GetByID_Found(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Ann", Email: "ann@x.com"}, nil
		},
	}

	svc := NewService(repo)

	user, err := svc.GetByID(context.Background(), "65a000000000000000000001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.Name != "Ann" {
		t.Errorf("Name = %q, want %q", user.Name, "Ann")
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	_, err := svc.GetByID(context.Background(), "doesnotexist")
	if apiErrorCode(err) != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeUserNotFound)
	}
}

func TestService_GetByEmail_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	_, err := svc.GetByEmail(context.Background(), "nobody@x.com")
	if apiErrorCode(err) != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeUserNotFound)
	}
}

// --- Update ---

func TestService_Update_EmptyPatch_ReturnsCurrentWithoutWrite(t *testing.T) {
	prior := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	updateCalled := false
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Ann", UpdatedAt: prior}, nil
		},
		updateFn: func(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error) {
			updateCalled = true
			return true, nil
		},
	}

	svc := NewService(repo)

	user, err := svc.Update(context.Background(), "65a000000000000000000001", &model.UpdateUserInput{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updateCalled {
		t.Error("expected no store write for empty patch")
	}
	if !user.UpdatedAt.Equal(prior) {
		t.Errorf("UpdatedAt = %v, want unchanged %v", user.UpdatedAt, prior)
	}
}

func TestService_Update_PartialPatch_RefreshesUpdatedAt(t *testing.T) {
	prior := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	later := prior.Add(time.Hour)
	suspended := model.StatusSuspended

	var gotPatch *model.UpdateUserInput
	var gotUpdatedAt time.Time
	reloaded := false

	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			if reloaded {
				return &model.User{ID: id, Name: "Ann", Status: suspended, UpdatedAt: later}, nil
			}
			return &model.User{ID: id, Name: "Ann", Status: model.StatusActive, UpdatedAt: prior}, nil
		},
		updateFn: func(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error) {
			gotPatch = patch
			gotUpdatedAt = updatedAt
			reloaded = true
			return true, nil
		},
	}

	svc := NewService(repo)
	svc.now = func() time.Time { return later }

	user, err := svc.Update(context.Background(), "65a000000000000000000001",
		&model.UpdateUserInput{Status: &suspended})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotPatch == nil || gotPatch.Status == nil || *gotPatch.Status != suspended {
		t.Error("expected status field to be passed to the store")
	}
	if gotPatch != nil && gotPatch.Name != nil {
		t.Error("expected unset fields to stay out of the patch")
	}
	if !gotUpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", gotUpdatedAt, later)
	}
	if !user.UpdatedAt.After(prior) {
		t.Errorf("UpdatedAt = %v, want later than %v", user.UpdatedAt, prior)
	}
}

func TestService_Update_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{})

	name := "Bob"
	_, err := svc.Update(context.Background(), "doesnotexist", &model.UpdateUserInput{Name: &name})
	if apiErrorCode(err) != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeUserNotFound)
	}
}

// 存在確認後に対象が消えた場合は内部エラーになること
func TestService_Update_LostRace_ReturnsInternalError(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Name: "Ann"}, nil
		},
		updateFn: func(ctx context.Context, id string, patch *model.UpdateUserInput, updatedAt time.Time) (bool, error) {
			return false, nil
		},
	}

	svc := NewService(repo)

	name := "Bob"
	_, err := svc.Update(context.Background(), "65a000000000000000000001", &model.UpdateUserInput{Name: &name})
	if apiErrorCode(err) != model.ErrCodeInternal {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeInternal)
	}
}

func TestService_Update_EmailTakenByOtherUser_ReturnsConflict(t *testing.T) {
	taken := "taken@x.com"
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "ann@x.com"}, nil
		},
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: "other", Email: email}, nil
		},
	}

	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "65a000000000000000000001",
		&model.UpdateUserInput{Email: &taken})
	if apiErrorCode(err) != model.ErrCodeDuplicateEmail {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeDuplicateEmail)
	}
}

// --- Delete ---

func TestService_Delete_Success(t *testing.T) {
	deleteCalled := false
	repo := &mockUserRepo{
		deleteFn: func(ctx context.Context, id string) (bool, error) {
			deleteCalled = true
			return true, nil
		},
	}

	svc := NewService(repo)

	if err := svc.Delete(context.Background(), "65a000000000000000000001"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !deleteCalled {
		t.Error("expected Delete to be called")
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	repo := &mockUserRepo{
		deleteFn: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}

	svc := NewService(repo)

	err := svc.Delete(context.Background(), "doesnotexist")
	if apiErrorCode(err) != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want %q", apiErrorCode(err), model.ErrCodeUserNotFound)
	}
}

// --- List / Count ---

func TestService_List_PassesSkipAndLimit(t *testing.T) {
	var gotSkip, gotLimit int64
	repo := &mockUserRepo{
		listFn: func(ctx context.Context, skip, limit int64) ([]*model.User, error) {
			gotSkip, gotLimit = skip, limit
			return []*model.User{{ID: "1"}, {ID: "2"}}, nil
		},
	}

	svc := NewService(repo)

	users, err := svc.List(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotSkip != 20 || gotLimit != 10 {
		t.Errorf("skip/limit = %d/%d, want 20/10", gotSkip, gotLimit)
	}
	if len(users) != 2 {
		t.Errorf("len(users) = %d, want 2", len(users))
	}
}

func TestService_Count(t *testing.T) {
	repo := &mockUserRepo{
		countFn: func(ctx context.Context) (int, error) {
			return 42, nil
		},
	}

	svc := NewService(repo)

	total, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 42 {
		t.Errorf("total = %d, want 42", total)
	}
}
