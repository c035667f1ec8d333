package cron

import (
	"VoteFight/internal/api/config"
	"VoteFight/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

const defaultSweepCron = "0 */5 * * * *"

type Manager struct {
	engine           *cron.Cron
	trendingSweepJob *job.TrendingSweepJob
}

func NewCronManager(trendingSweepJob *job.TrendingSweepJob) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		trendingSweepJob: trendingSweepJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	spec := config.Cfg.Trending.SweepCron
	if spec == "" {
		spec = defaultSweepCron
	}
	if _, err := s.engine.AddJob(spec, s.trendingSweepJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
