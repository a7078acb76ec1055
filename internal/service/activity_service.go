package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campushq/uniportal-api/internal/models"
	"github.com/campushq/uniportal-api/pkg/jobs"
)

type activityWriter interface {
	Create(ctx context.Context, log *models.ActivityLog) error
}

// activityRecorder is the fire-and-forget audit hook used by the other
// services and the audit middleware.
type activityRecorder interface {
	Record(log models.ActivityLog)
}

// ActivityService writes activity logs through a background queue so a
// slow or failing audit insert never blocks the primary operation.
type ActivityService struct {
	queue   *jobs.Queue
	logger  *zap.Logger
	metrics *MetricsService
}

// ActivityConfig tunes the background writer.
type ActivityConfig struct {
	Workers    int
	BufferSize int
}

// NewActivityService constructs the service and its worker queue.
func NewActivityService(repo activityWriter, cfg ActivityConfig, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ActivityService{logger: logger}
	svc.queue = jobs.NewQueue("activity", func(ctx context.Context, job jobs.Job) error {
		log, ok := job.Payload.(models.ActivityLog)
		if !ok {
			return nil
		}
		return repo.Create(ctx, &log)
	}, jobs.QueueConfig{Workers: cfg.Workers, BufferSize: cfg.BufferSize, Logger: logger})
	return svc
}

// UseMetrics attaches the metrics service so dropped entries are counted.
func (s *ActivityService) UseMetrics(m *MetricsService) {
	s.metrics = m
}

// Start launches the background writers.
func (s *ActivityService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *ActivityService) Stop() {
	s.queue.Stop()
}

// Record enqueues an activity log. Dropped entries are logged and
// otherwise ignored.
func (s *ActivityService) Record(log models.ActivityLog) {
	if !s.queue.Enqueue(jobs.Job{Type: log.Action, Payload: log}) {
		s.metrics.ObserveAuditDrop()
		s.logger.Sugar().Warnw("activity log dropped", "action", log.Action, "resource", log.Resource)
	}
}
