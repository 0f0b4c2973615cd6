package scheduler

import (
	"context"
	"fmt"
	"time"

	"question_rotation_service/internal/app" // For RotationService interface
	domainTelegram "question_rotation_service/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const rotationJobTimeout = 2 * time.Minute

// RotationScheduler fires the rotation on a configured cron interval.
// The rotation itself tolerates duplicate or overlapping triggers: the
// store-level conditional commit guarantees at most one committed
// rotation per period, and a lost race resolves as a no-op.
type RotationScheduler struct {
	cronEngine       *cron.Cron
	rotationService  app.RotationService // Using the interface
	alertClient      domainTelegram.Client
	alertChatID      int64
	logger           *logrus.Logger
	cronSpecRotation string
}

func NewRotationScheduler(
	rotationService app.RotationService,
	alertClient domainTelegram.Client, // nil disables alerting
	alertChatID int64,
	logger *logrus.Logger,
	cronSpecRotation string, // e.g., "0 0 * * *" (midnight daily)
) *RotationScheduler {
	return &RotationScheduler{
		cronEngine:       cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		rotationService:  rotationService,
		alertClient:      alertClient,
		alertChatID:      alertChatID,
		logger:           logger,
		cronSpecRotation: cronSpecRotation,
	}
}

func (s *RotationScheduler) Start() error {
	s.logger.Info("Starting rotation scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecRotation, func() {
		s.logger.Info("Cron job triggered for cycle rotation.")
		ctx, cancel := context.WithTimeout(context.Background(), rotationJobTimeout)
		defer cancel()
		s.executeRotation(ctx)
	})
	if err != nil {
		return fmt.Errorf("could not add rotation cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpecRotation).Info("Rotation scheduler started.")
	return nil
}

func (s *RotationScheduler) executeRotation(ctx context.Context) {
	result, err := s.rotationService.Rotate(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Rotation failed; old cycle remains active, will retry on next tick.")
		s.alert(fmt.Sprintf("Question rotation failed: %v", err))
		return
	}
	if result.Conflict {
		s.logger.Info("Rotation resolved as no-op: another rotation already committed this period.")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"cycle_id":     result.CycleID,
		"assignments":  result.Assignments,
		"cache_pushed": result.CachePushed,
	}).Info("Rotation completed.")
}

func (s *RotationScheduler) alert(text string) {
	if s.alertClient == nil {
		return
	}
	if err := s.alertClient.SendMessage(s.alertChatID, text, nil); err != nil {
		s.logger.WithError(err).Warn("Failed to send rotation alert.")
	}
}

func (s *RotationScheduler) Stop() {
	s.logger.Info("Stopping rotation scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Rotation scheduler gracefully stopped.")
}
