// Package history implements the append-only play log kept for each media
// kind. One generic Log serves every record variant; the variant decides how
// it is built from a row and the Resolver decides how an item's metadata is
// looked up.
package history

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/models"
	"github.com/amaumene/dono/internal/store"
)

// Resolver looks up the metadata of a submitted item
type Resolver interface {
	Resolve(ctx context.Context, item models.Item) (*models.Metadata, error)
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, item models.Item) (*models.Metadata, error)

func (f ResolverFunc) Resolve(ctx context.Context, item models.Item) (*models.Metadata, error) {
	return f(ctx, item)
}

// Log is the history of one media kind.
//
// Inserts are serialized by writeMu for their whole duration, metadata lookup
// included, so there is a single writer per kind. mu only guards the append
// itself: readers never wait on a metadata lookup, and never see a record
// that is half written. Records sharing a timestamp are ordered by row ID,
// so the later insert counts as newer.
type Log[T any, PT models.Record[T]] struct {
	kind     models.MediaKind
	table    store.Table[T]
	resolver Resolver
	writeMu  sync.Mutex
	mu       sync.RWMutex
	tracer   trace.Tracer
	logger   *logrus.Logger
}

// New creates the log for kind over table
func New[T any, PT models.Record[T]](kind models.MediaKind, table store.Table[T], resolver Resolver, logger *logrus.Logger) *Log[T, PT] {
	return &Log[T, PT]{
		kind:     kind,
		table:    table,
		resolver: resolver,
		tracer:   otel.Tracer("github.com/amaumene/dono/internal/history"),
		logger:   logger,
	}
}

// Kind returns the media kind this log records
func (l *Log[T, PT]) Kind() models.MediaKind {
	return l.kind
}

// Insert resolves item and appends one record stamped with item.Timestamp.
// Nothing is written if resolution fails.
func (l *Log[T, PT]) Insert(ctx context.Context, item models.Item) (*T, error) {
	if item.Kind != l.kind {
		return nil, &apperrors.InvalidSourceError{Source: item.Source, Reason: "wrong media kind for " + l.kind.String() + " log"}
	}

	ctx, span := l.tracer.Start(ctx, "history.Insert", trace.WithAttributes(
		attribute.String("media.kind", l.kind.String()),
		attribute.Int64("media.timestamp", item.Timestamp),
	))
	defer span.End()

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	meta, err := l.resolver.Resolve(ctx, item)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	row := models.Row{
		ExternalID: meta.ExternalID,
		Timestamp:  item.Timestamp,
		Duration:   meta.Duration,
		Title:      meta.Title,
	}
	if row.ExternalID == "" {
		row.ExternalID = item.Source
	}
	if row.Title == "" {
		row.Title = row.ExternalID
	}
	if row.Duration < 0 {
		row.Duration = 0
	}

	var rec T
	PT(&rec).FromRow(row)

	l.mu.Lock()
	err = l.table.Append(ctx, &rec)
	l.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"kind":        l.kind,
		"id":          PT(&rec).ToRow().ID,
		"external_id": row.ExternalID,
		"timestamp":   PT(&rec).GetTimestamp(),
	}).Debug("History record appended")

	return &rec, nil
}

// Current returns the record with the largest timestamp
func (l *Log[T, PT]) Current(ctx context.Context) (*T, error) {
	return l.nth(ctx, 0, "current")
}

// Previous returns the record with the second largest timestamp
func (l *Log[T, PT]) Previous(ctx context.Context) (*T, error) {
	return l.nth(ctx, 1, "previous")
}

func (l *Log[T, PT]) nth(ctx context.Context, n int, query string) (*T, error) {
	l.mu.RLock()
	records, err := l.table.Latest(ctx, n+1)
	l.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if len(records) <= n {
		return nil, &apperrors.NotFoundError{Kind: l.kind.String(), Query: query}
	}
	return &records[n], nil
}

// All returns every record, newest first
func (l *Log[T, PT]) All(ctx context.Context) ([]T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Latest(ctx, 0)
}

// Count returns the number of records
func (l *Log[T, PT]) Count(ctx context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.table.Count(ctx)
}

// Journal is the kind-agnostic view of a Log used by callers that handle
// every kind the same way.
type Journal interface {
	Kind() models.MediaKind
	Append(ctx context.Context, item models.Item) (models.Entry, error)
	CurrentEntry(ctx context.Context) (models.Entry, error)
	PreviousEntry(ctx context.Context) (models.Entry, error)
	AllEntries(ctx context.Context) ([]models.Entry, error)
	Count(ctx context.Context) (int, error)
}

// Append is Insert returning an Entry
func (l *Log[T, PT]) Append(ctx context.Context, item models.Item) (models.Entry, error) {
	rec, err := l.Insert(ctx, item)
	if err != nil {
		return models.Entry{}, err
	}
	return l.entry(rec), nil
}

func (l *Log[T, PT]) CurrentEntry(ctx context.Context) (models.Entry, error) {
	rec, err := l.Current(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	return l.entry(rec), nil
}

func (l *Log[T, PT]) PreviousEntry(ctx context.Context) (models.Entry, error) {
	rec, err := l.Previous(ctx)
	if err != nil {
		return models.Entry{}, err
	}
	return l.entry(rec), nil
}

func (l *Log[T, PT]) AllEntries(ctx context.Context) ([]models.Entry, error) {
	records, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]models.Entry, 0, len(records))
	for i := range records {
		entries = append(entries, l.entry(&records[i]))
	}
	return entries, nil
}

func (l *Log[T, PT]) entry(rec *T) models.Entry {
	return models.Entry{Kind: l.kind, Row: PT(rec).ToRow()}
}
