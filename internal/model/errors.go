// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Messageはレスポンスのerrorフィールド、Detailはdetailフィールドに対応する。
type APIError struct {
	Code    string // エラーコード
	Message string // 短いエラーメッセージ
	Detail  string // 呼び出し元への補足情報
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeDuplicateEmail = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound   = "USER_NOT_FOUND"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// NewValidationError は入力値検証エラーを生成する。
// fieldには違反したフィールド名、constraintには制約の内容を指定する。
func NewValidationError(field, constraint string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "Validation error",
		Detail:  fmt.Sprintf("%s: %s", field, constraint),
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateEmail,
		Message: "Conflict",
		Detail:  "User with this email already exists",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "Not found",
		Detail:  "User not found",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログにのみ記録し、呼び出し元には一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
		Detail:  "An unexpected error occurred",
	}
}
