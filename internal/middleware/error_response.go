package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/userdir/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// 全エンドポイントで{"error", "detail"}の形に揃える。
type ErrorResponseBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:  apiErr.Message,
		Detail: apiErr.Detail,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 内部の詳細はログのみに記録し、呼び出し元には一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}
