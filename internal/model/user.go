// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"net/mail"
	"time"
	"unicode/utf8"
)

// UserStatus はユーザーの状態を表す。
type UserStatus string

const (
	// StatusActive は有効なユーザーを示す。
	StatusActive UserStatus = "active"
	// StatusInactive は無効化されたユーザーを示す。
	StatusInactive UserStatus = "inactive"
	// StatusSuspended は停止中のユーザーを示す。
	StatusSuspended UserStatus = "suspended"
)

// IsValid はステータスが定義済みの値かどうかを返す。
func (s UserStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User はディレクトリに登録されたユーザーを表す。
// IDはストアが採番し、作成後は変更されない。
type User struct {
	ID        string
	Name      string
	Email     string
	Age       *int
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput はユーザー作成リクエストの入力値。
type CreateUserInput struct {
	Name   string
	Email  string
	Age    *int
	Status UserStatus
}

// Validate は入力値の形式を検証する。
// 違反があった場合は対象フィールドと制約を含むAPIErrorを返す。
func (in *CreateUserInput) Validate() *APIError {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validateAge(in.Age); err != nil {
		return err
	}
	// statusは省略可能。省略時はactiveとして扱う。
	if in.Status != "" && !in.Status.IsValid() {
		return NewValidationError("status", "must be one of active, inactive, suspended")
	}
	return nil
}

// UpdateUserInput はユーザー更新リクエストの入力値。
// nilのフィールドは更新対象外として扱う（部分更新）。
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Age    *int
	Status *UserStatus
}

// IsEmpty は更新対象フィールドが1つも含まれないかどうかを返す。
func (in *UpdateUserInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Age == nil && in.Status == nil
}

// Validate は設定されているフィールドのみ形式を検証する。
func (in *UpdateUserInput) Validate() *APIError {
	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return err
		}
	}
	if in.Email != nil {
		if err := validateEmail(*in.Email); err != nil {
			return err
		}
	}
	if err := validateAge(in.Age); err != nil {
		return err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return NewValidationError("status", "must be one of active, inactive, suspended")
	}
	return nil
}

// validateName は名前が1〜100文字であることを検証する。
func validateName(name string) *APIError {
	n := utf8.RuneCountInString(name)
	if n < 1 {
		return NewValidationError("name", "must not be empty")
	}
	if n > 100 {
		return NewValidationError("name", "must be at most 100 characters")
	}
	return nil
}

// validateEmail はメールアドレスの構文を検証する。
func validateEmail(email string) *APIError {
	if email == "" {
		return NewValidationError("email", "must not be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", fmt.Sprintf("invalid email address: %s", email))
	}
	return nil
}

// validateAge は年齢が0〜150の範囲内であることを検証する。nilは許容する。
func validateAge(age *int) *APIError {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > 150 {
		return NewValidationError("age", "must be between 0 and 150")
	}
	return nil
}

// PaginationInfo はリスト応答のページング情報。導出値であり永続化しない。
type PaginationInfo struct {
	Page  int
	Limit int
	Total int
	Pages int
}

// NewPaginationInfo はtotalとlimitからページ数を算出してPaginationInfoを生成する。
func NewPaginationInfo(page, limit, total int) PaginationInfo {
	pages := (total + limit - 1) / limit
	return PaginationInfo{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}
}

// HealthStatus はヘルスチェックの結果を表す。毎回その場で算出し、キャッシュしない。
type HealthStatus struct {
	Status    string
	Database  string
	Timestamp time.Time
}

// Healthy はストアに到達可能かどうかを返す。
func (h *HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
