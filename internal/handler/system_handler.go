package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/userdir/internal/model"
)

// SystemServiceInterface はシステムハンドラーが必要とするサービスインターフェース。
type SystemServiceInterface interface {
	// HealthCheck はストアへの疎通確認を行う。失敗してもエラーは返さず結果で表現する。
	HealthCheck(ctx context.Context) *model.HealthStatus
}

// SystemHandler はヘルスチェックのHTTPハンドラー。
type SystemHandler struct {
	service SystemServiceInterface
}

// NewSystemHandler はSystemHandlerを生成する。
func NewSystemHandler(service SystemServiceInterface) *SystemHandler {
	return &SystemHandler{
		service: service,
	}
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Health はヘルスチェックを処理する。
// GET /health
// unhealthyな結果は503 Service Unavailableに変換する。
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.service.HealthCheck(r.Context())

	statusCode := http.StatusOK
	if !status.Healthy() {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, healthResponse{
		Status:    status.Status,
		Database:  status.Database,
		Timestamp: status.Timestamp,
	})
}
