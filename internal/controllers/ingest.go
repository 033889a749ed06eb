package controllers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/history"
	"github.com/amaumene/dono/internal/metrics"
	"github.com/amaumene/dono/internal/models"
)

// IngestController routes submitted items to the log of their kind and
// answers history queries.
type IngestController struct {
	journals map[models.MediaKind]history.Journal
	metrics  *metrics.Metrics
	logger   *logrus.Logger

	// gaugeMu pairs each record count with its gauge update, so a stale
	// count never overwrites a newer one.
	gaugeMu sync.Mutex
}

// NewIngestController creates a new ingest controller
func NewIngestController(m *metrics.Metrics, logger *logrus.Logger, journals ...history.Journal) *IngestController {
	c := &IngestController{
		journals: make(map[models.MediaKind]history.Journal, len(journals)),
		metrics:  m,
		logger:   logger,
	}
	for _, j := range journals {
		c.journals[j.Kind()] = j
	}
	return c
}

// Submit validates item and appends it to its kind's log
func (c *IngestController) Submit(ctx context.Context, item models.Item) (models.Entry, error) {
	item.Source = strings.TrimSpace(item.Source)

	journal, ok := c.journals[item.Kind]
	if !ok {
		return models.Entry{}, &apperrors.InvalidSourceError{Source: item.Source, Reason: fmt.Sprintf("unknown media kind %q", item.Kind)}
	}
	if item.Source == "" {
		c.record(item.Kind, metrics.OutcomeInvalid)
		return models.Entry{}, &apperrors.InvalidSourceError{Source: item.Source, Reason: "empty source"}
	}
	if item.Timestamp <= 0 {
		c.record(item.Kind, metrics.OutcomeInvalid)
		return models.Entry{}, &apperrors.InvalidSourceError{Source: item.Source, Reason: "timestamp must be positive"}
	}

	start := time.Now()
	entry, err := journal.Append(ctx, item)
	c.metrics.IngestSeconds.WithLabelValues(item.Kind.String()).Observe(time.Since(start).Seconds())

	fields := logrus.Fields{
		"kind":      item.Kind,
		"source":    item.Source,
		"timestamp": item.Timestamp,
	}
	if err != nil {
		c.record(item.Kind, outcomeFor(err))
		c.logger.WithError(err).WithFields(fields).Warn("Failed to ingest item")
		return models.Entry{}, err
	}

	c.record(item.Kind, metrics.OutcomeOK)
	if _, err := c.refreshRecords(ctx, item.Kind); err != nil {
		c.logger.WithError(err).WithField("kind", item.Kind).Warn("Failed to refresh record gauge")
	}

	fields["id"] = entry.ID
	fields["title"] = entry.Title
	fields["duration"] = entry.Duration
	c.logger.WithFields(fields).Info("Item recorded")

	return entry, nil
}

// Current returns the newest entry of kind
func (c *IngestController) Current(ctx context.Context, kind models.MediaKind) (models.Entry, error) {
	journal, err := c.journal(kind)
	if err != nil {
		return models.Entry{}, err
	}
	return journal.CurrentEntry(ctx)
}

// Previous returns the second newest entry of kind
func (c *IngestController) Previous(ctx context.Context, kind models.MediaKind) (models.Entry, error) {
	journal, err := c.journal(kind)
	if err != nil {
		return models.Entry{}, err
	}
	return journal.PreviousEntry(ctx)
}

// All returns every entry of kind, newest first
func (c *IngestController) All(ctx context.Context, kind models.MediaKind) ([]models.Entry, error) {
	journal, err := c.journal(kind)
	if err != nil {
		return nil, err
	}
	return journal.AllEntries(ctx)
}

// History merges the logs of every kind, newest first. Entries sharing a
// timestamp keep the order of models.Kinds.
func (c *IngestController) History(ctx context.Context) ([]models.Entry, error) {
	var merged []models.Entry
	for _, kind := range c.Kinds() {
		entries, err := c.journals[kind].AllEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s history: %w", kind, err)
		}
		merged = append(merged, entries...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})
	return merged, nil
}

// Stats returns the number of records per kind
func (c *IngestController) Stats(ctx context.Context) (map[models.MediaKind]int, error) {
	stats := make(map[models.MediaKind]int, len(c.journals))
	for kind, journal := range c.journals {
		count, err := journal.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s history: %w", kind, err)
		}
		stats[kind] = count
	}
	return stats, nil
}

// RefreshRecords sets the record gauge of every kind from the store and
// returns the counts it read
func (c *IngestController) RefreshRecords(ctx context.Context) (map[models.MediaKind]int, error) {
	stats := make(map[models.MediaKind]int, len(c.journals))
	for _, kind := range c.Kinds() {
		count, err := c.refreshRecords(ctx, kind)
		if err != nil {
			return nil, err
		}
		stats[kind] = count
	}
	return stats, nil
}

func (c *IngestController) refreshRecords(ctx context.Context, kind models.MediaKind) (int, error) {
	c.gaugeMu.Lock()
	defer c.gaugeMu.Unlock()

	count, err := c.journals[kind].Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s history: %w", kind, err)
	}
	c.metrics.Records.WithLabelValues(kind.String()).Set(float64(count))
	return count, nil
}

// Kinds lists the configured kinds in models.Kinds order
func (c *IngestController) Kinds() []models.MediaKind {
	kinds := make([]models.MediaKind, 0, len(c.journals))
	for _, kind := range models.Kinds {
		if _, ok := c.journals[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func (c *IngestController) journal(kind models.MediaKind) (history.Journal, error) {
	journal, ok := c.journals[kind]
	if !ok {
		return nil, &apperrors.InvalidSourceError{Source: kind.String(), Reason: "unknown media kind"}
	}
	return journal, nil
}

func (c *IngestController) record(kind models.MediaKind, outcome string) {
	c.metrics.Ingested.WithLabelValues(kind.String(), outcome).Inc()
}

func outcomeFor(err error) string {
	var (
		invalid *apperrors.InvalidSourceError
		storage *apperrors.StorageError
	)
	switch {
	case errors.As(err, &invalid):
		return metrics.OutcomeInvalid
	case apperrors.IsUpstream(err):
		return metrics.OutcomeUpstream
	case errors.As(err, &storage):
		return metrics.OutcomeStorage
	default:
		return "error"
	}
}
