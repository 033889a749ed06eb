package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/controllers"
)

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	ingestCtrl *controllers.IngestController
	logger     *logrus.Logger
	initial    sync.WaitGroup
}

// NewScheduler creates a new scheduler running the stats job on schedule
func NewScheduler(schedule string, ingestCtrl *controllers.IngestController, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		schedule:   schedule,
		ingestCtrl: ingestCtrl,
		logger:     logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runStats()
	})
	if err != nil {
		return fmt.Errorf("failed to add stats job: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", s.schedule).Info("Scheduler started")

	// Run initial refresh immediately
	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.runStats()
	}()

	return nil
}

// Stop stops the scheduler and waits for running jobs, the initial
// refresh included
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.initial.Wait()
}

// runStats refreshes the record gauges and logs the current play per kind
func (s *Scheduler) runStats() {
	s.logger.Debug("Running scheduled stats refresh")
	ctx := context.Background()

	stats, err := s.ingestCtrl.RefreshRecords(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Stats job failed")
		return
	}

	for _, kind := range s.ingestCtrl.Kinds() {
		entry, err := s.ingestCtrl.Current(ctx, kind)
		if apperrors.IsNotFound(err) {
			continue
		}
		if err != nil {
			s.logger.WithError(err).WithField("kind", kind).Warn("Failed to read current entry")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"kind":    kind,
			"records": stats[kind],
			"title":   entry.Title,
			"ts":      entry.Timestamp,
		}).Debug("Current entry")
	}
}
