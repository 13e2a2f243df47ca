package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rental-manager/internal/cleanup"
	"rental-manager/internal/clock"
	"rental-manager/internal/config"
	"rental-manager/internal/models"
	"rental-manager/internal/notify"
	"rental-manager/internal/repository"
	"rental-manager/internal/tasks"
)

// Scheduler runs the daily payment and notification tasks
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	clock     clock.Clock
	config    *config.Config
	isRunning bool
}

// RunSummary aggregates one run over all users
type RunSummary struct {
	Users         int                    `json:"users"`
	Failed        int                    `json:"failed"`
	Notifications int                    `json:"notifications"`
	StatusChanges int                    `json:"status_changes"`
	Reports       []*tasks.Report        `json:"reports"`
	Cleanup       *cleanup.CleanupResult `json:"cleanup,omitempty"`
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, cfg *config.Config, c clock.Clock) *Scheduler {
	opts := []cron.Option{}
	if loc, err := cfg.Location(); err == nil {
		opts = append(opts, cron.WithLocation(loc))
	}
	return &Scheduler{
		cron:   cron.New(opts...),
		db:     db,
		clock:  c,
		config: cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.DailyRunEnabled {
		log.Info("Scheduler: daily run is disabled in configuration")
		return nil
	}

	cronSpec := parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Info("Scheduler: starting daily run...")
		summary, err := s.runDaily(nil)
		if err != nil {
			log.WithError(err).Error("Scheduler: daily run failed")
			return
		}
		log.WithFields(log.Fields{
			"users":          summary.Users,
			"failed":         summary.Failed,
			"notifications":  summary.Notifications,
			"status_changes": summary.StatusChanges,
		}).Info("Scheduler: daily run completed")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Infof("Scheduler: started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		log.Info("Scheduler: stopped")
	}
}

// runDaily processes one user or, when userID is nil, every user that owns
// contracts or payments. A failing user does not stop the others.
func (s *Scheduler) runDaily(userID *uint) (*RunSummary, error) {
	var users []uint
	if userID != nil {
		users = []uint{*userID}
	} else {
		ids, err := repository.UserIDs(s.db)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		users = ids
	}

	runner := tasks.NewRunner(s.db, s.clock, notify.WindowsFrom(&s.config.Notifications))
	summary := &RunSummary{Users: len(users)}

	for _, id := range users {
		report, err := runner.RunAll(id)
		if err != nil {
			log.WithError(err).WithField("user_id", id).Error("Scheduler: user run failed")
			summary.Failed++
			continue
		}
		summary.Reports = append(summary.Reports, report)
		summary.Notifications += report.Total()
		summary.StatusChanges += report.PaymentStatusChanges.Changed
	}

	if userID == nil {
		result, err := cleanup.NewService(s.db, s.clock).DeleteOldNotifications(nil, cleanup.CleanupConfig{
			RetentionDays:    s.config.Notifications.RetentionDays,
			MaxDeletionCount: s.config.Notifications.MaxDeletionCount,
			DryRun:           s.config.Notifications.CleanupDryRun,
			Reason:           models.CleanupReasonRetention,
		})
		if err != nil {
			log.WithError(err).Warn("Scheduler: notification cleanup failed")
		} else {
			summary.Cleanup = result
		}
	}

	return summary, nil
}

// RunNow immediately executes the daily job (for manual trigger).
// A nil userID runs every user and the notification cleanup.
func (s *Scheduler) RunNow(userID *uint) (*RunSummary, error) {
	log.Info("Scheduler: manual trigger - starting daily run...")
	return s.runDaily(userID)
}

// parseDailyRunTime converts HH:MM format to a cron expression
// Example: "06:00" -> "0 6 * * *"
func parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Warnf("Scheduler: failed to parse time '%s', using default 06:00", timeStr)
	return "0 6 * * *"
}
