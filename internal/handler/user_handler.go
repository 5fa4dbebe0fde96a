package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/userdir/internal/middleware"
	"github.com/hitoshi/userdir/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create はユーザーを作成する。メールアドレスが重複している場合はConflictを返す。
	Create(ctx context.Context, input *model.CreateUserInput) (*model.User, error)
	// GetByID は指定IDのユーザーを取得する。
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Update は部分更新を行う。
	Update(ctx context.Context, id string, patch *model.UpdateUserInput) (*model.User, error)
	// Delete は指定IDのユーザーを削除する。
	Delete(ctx context.Context, id string) error
	// List はskip/limitでページングした一覧を返す。
	List(ctx context.Context, skip, limit int) ([]*model.User, error)
	// Count は全ユーザー数を返す。
	Count(ctx context.Context) (int, error)
}

// PaginationConfig は一覧取得のページサイズ設定。
type PaginationConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

// UserHandler はユーザーディレクトリのHTTPハンドラー。
type UserHandler struct {
	service    UserServiceInterface
	pagination PaginationConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, pagination PaginationConfig) *UserHandler {
	return &UserHandler{
		service:    service,
		pagination: pagination,
	}
}

// createUserRequest はユーザー作成リクエストのボディ。
type createUserRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    *int   `json:"age"`
	Status string `json:"status"`
}

// updateUserRequest はユーザー更新リクエストのボディ。
// 省略されたフィールドは変更しない。
type updateUserRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Age    *int    `json:"age"`
	Status *string `json:"status"`
}

// CreateUser はユーザー作成を処理する。
// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("body", "invalid JSON"))
		return
	}

	input := &model.CreateUserInput{
		Name:   req.Name,
		Email:  req.Email,
		Age:    req.Age,
		Status: model.UserStatus(req.Status),
	}
	if apiErr := input.Validate(); apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, apiErr)
		return
	}

	user, err := h.service.Create(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// ListUsers はページング付きのユーザー一覧取得を処理する。
// GET /api/users?page=1&limit=10
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, apiErr := parsePositiveQueryInt(r, "page", 1)
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, apiErr)
		return
	}

	limit, apiErr := parsePositiveQueryInt(r, "limit", h.pagination.DefaultPageSize)
	if apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, apiErr)
		return
	}
	if limit > h.pagination.MaxPageSize {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("limit", "must be at most "+strconv.Itoa(h.pagination.MaxPageSize)))
		return
	}

	// 1始まりのページ番号からskipを算出する
	skip := (page - 1) * limit

	users, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// totalは一覧の取得件数とは独立に算出する
	total, err := h.service.Count(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	pagination := model.NewPaginationInfo(page, limit, total)

	resp := userListResponse{
		Users: make([]userResponse, 0, len(users)),
		Pagination: paginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: pagination.Total,
			Pages: pagination.Pages,
		},
	}
	for _, u := range users {
		resp.Users = append(resp.Users, toUserResponse(u))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetUser はユーザー詳細取得を処理する。
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateUser はユーザーの部分更新を処理する。
// PUT /api/users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity,
			model.NewValidationError("body", "invalid JSON"))
		return
	}

	patch := &model.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		patch.Status = &status
	}
	if apiErr := patch.Validate(); apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusUnprocessableEntity, apiErr)
		return
	}

	user, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// DeleteUser はユーザー削除を処理する。
// DELETE /api/users/{id}
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

// parsePositiveQueryInt はクエリパラメータを1以上の整数として解析する。
// 未指定の場合はdefaultValを返す。
func parsePositiveQueryInt(r *http.Request, key string, defaultVal int) (int, *model.APIError) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, model.NewValidationError(key, "must be a positive integer")
	}
	return n, nil
}
