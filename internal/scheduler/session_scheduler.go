package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/wuwumall/wuwumall-backend/config"
	"github.com/wuwumall/wuwumall-backend/internal/app/repository"
	"github.com/wuwumall/wuwumall-backend/internal/session"
	"github.com/wuwumall/wuwumall-backend/pkg/logger"
)

// SessionScheduler periodically sweeps expired sessions and trims the activity log.
type SessionScheduler struct {
	cron       *cron.Cron
	sessions   *session.Manager
	activities repository.ActivityRepository
	cfg        *config.SessionConfig
}

// NewSessionScheduler creates a session scheduler.
func NewSessionScheduler(sessions *session.Manager, activities repository.ActivityRepository, cfg *config.SessionConfig) *SessionScheduler {
	return &SessionScheduler{
		cron:       cron.New(),
		sessions:   sessions,
		activities: activities,
		cfg:        cfg,
	}
}

// Start begins the periodic sweep.
func (s *SessionScheduler) Start() error {
	// Sweep on the same cadence as the page heartbeat
	spec := fmt.Sprintf("@every %s", s.cfg.HeartbeatInterval)
	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()

		removed, err := s.sessions.Sweep(ctx)
		if err != nil {
			logger.Error("Failed to sweep expired sessions", err)
		} else if removed > 0 {
			logger.Info("Swept expired sessions", map[string]interface{}{
				"removed": removed,
			})
		}

		trimmed, err := s.activities.TrimToCap(ctx, s.cfg.ActivityCap)
		if err != nil {
			logger.Error("Failed to trim activity log", err)
		} else if trimmed > 0 {
			logger.Info("Trimmed activity log", map[string]interface{}{
				"trimmed": trimmed,
				"cap":     s.cfg.ActivityCap,
			})
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for session sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Session scheduler started successfully", map[string]interface{}{
		"interval": s.cfg.HeartbeatInterval.String(),
	})

	return nil
}

// Stop halts the scheduler.
func (s *SessionScheduler) Stop() {
	logger.Info("Stopping session scheduler...", nil)
	s.cron.Stop()
	logger.Info("Session scheduler stopped", nil)
}
