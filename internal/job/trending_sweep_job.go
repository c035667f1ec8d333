package job

import (
	"VoteFight/internal/pkg/logger"
	"VoteFight/internal/service"
	"context"
	log "log/slog"

	"github.com/google/uuid"
)

// TrendingSweepJob 周期性标记过期对战并全量重算热度分
type TrendingSweepJob struct {
	trendingSvc service.TrendingService
}

func NewTrendingSweepJob(trendingSvc service.TrendingService) *TrendingSweepJob {
	return &TrendingSweepJob{
		trendingSvc: trendingSvc,
	}
}

func (s *TrendingSweepJob) Run() {
	traceID := "job-trending-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	updated, err := s.trendingSvc.SweepTrendingScores(ctx)
	if err != nil {
		log.ErrorContext(ctx, "trending sweep job error", "err", err)
		return
	}
	log.InfoContext(ctx, "trending sweep job finished", "updated_count", updated)
}
