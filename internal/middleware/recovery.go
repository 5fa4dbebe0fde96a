package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はルーターから漏れたpanicを捕捉し、
// 統一エラーフォーマットの500レスポンスに変換するミドルウェアを生成する。
// 生のエラー内容はログにのみ記録し、呼び出し元には返さない。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					args := []any{
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					}
					if requestID, err := RequestIDFromContext(r.Context()); err == nil {
						args = append(args, slog.String("request_id", requestID))
					}
					slog.Error("panic recovered", args...)

					WriteInternalServerError(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
