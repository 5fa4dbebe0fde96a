// Package system はシステムヘルスチェックのサービスを提供する。
package system

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/userdir/internal/model"
)

// Pinger はストアへの疎通確認インターフェース。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service はヘルスチェックのサービス層。
type Service struct {
	pinger Pinger
	now    func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(pinger Pinger) *Service {
	return &Service{
		pinger: pinger,
		now:    time.Now,
	}
}

// HealthCheck はストアへの軽量な疎通確認を行い、結果を返す。
// ヘルスチェック自体が呼び出し元を巻き込んで失敗してはならないため、
// いかなる失敗もunhealthy/disconnectedの結果として返し、エラーは返さない。
func (s *Service) HealthCheck(ctx context.Context) *model.HealthStatus {
	status := &model.HealthStatus{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: s.now().UTC(),
	}

	if err := s.pinger.Ping(ctx); err != nil {
		slog.Error("health check failed", slog.String("error", err.Error()))
		status.Status = "unhealthy"
		status.Database = "disconnected"
	}

	return status
}
