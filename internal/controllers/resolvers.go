package controllers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/metrics"
	"github.com/amaumene/dono/internal/models"
	"github.com/amaumene/dono/internal/services/local"
	"github.com/amaumene/dono/internal/services/youtube"
)

// VideoFetcher looks up catalog metadata by video id
type VideoFetcher interface {
	Fetch(ctx context.Context, id string) (*youtube.VideoInfo, error)
}

// FileProber reads metadata of a local file
type FileProber interface {
	Probe(ctx context.Context, path string) (*local.TrackInfo, error)
}

// YoutubeResolver turns a youtube link into metadata: extract the id, then
// fetch title and duration from the catalog.
type YoutubeResolver struct {
	extractor *youtube.Extractor
	fetcher   VideoFetcher
	metrics   *metrics.Metrics
	logger    *logrus.Logger
}

// NewYoutubeResolver creates a new youtube resolver
func NewYoutubeResolver(extractor *youtube.Extractor, fetcher VideoFetcher, m *metrics.Metrics, logger *logrus.Logger) *YoutubeResolver {
	return &YoutubeResolver{
		extractor: extractor,
		fetcher:   fetcher,
		metrics:   m,
		logger:    logger,
	}
}

// Resolve implements history.Resolver
func (r *YoutubeResolver) Resolve(ctx context.Context, item models.Item) (*models.Metadata, error) {
	id, err := r.extractor.Extract(item.Source)
	if err != nil {
		return nil, err
	}

	info, err := r.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if info.DurationSuspect() {
		r.logger.WithFields(logrus.Fields{
			"video_id":     id,
			"raw_duration": info.RawDuration,
		}).Warn("Catalog duration decoded to zero")
		r.metrics.ZeroDurations.Inc()
	}

	return &models.Metadata{
		ExternalID: id,
		Title:      info.Title,
		Duration:   info.Duration,
	}, nil
}

// LocalResolver turns a file path into metadata with a FileProber
type LocalResolver struct {
	prober FileProber
}

// NewLocalResolver creates a new local resolver
func NewLocalResolver(prober FileProber) *LocalResolver {
	return &LocalResolver{prober: prober}
}

// Resolve implements history.Resolver
func (r *LocalResolver) Resolve(ctx context.Context, item models.Item) (*models.Metadata, error) {
	info, err := r.prober.Probe(ctx, item.Source)
	if err != nil {
		return nil, err
	}
	return &models.Metadata{
		ExternalID: info.Path,
		Title:      info.Title,
		Duration:   info.Duration,
	}, nil
}
