package main

import (
	"context"

	"github.com/google/wire"
	"github.com/sirupsen/logrus"

	"github.com/amaumene/dono/internal/api"
	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/config"
	"github.com/amaumene/dono/internal/controllers"
	"github.com/amaumene/dono/internal/history"
	"github.com/amaumene/dono/internal/metrics"
	"github.com/amaumene/dono/internal/models"
	"github.com/amaumene/dono/internal/scheduler"
	"github.com/amaumene/dono/internal/services/local"
	"github.com/amaumene/dono/internal/services/youtube"
	"github.com/amaumene/dono/internal/store"
)

// App is the long-running part of `dono serve`
type App struct {
	Server    *api.Server
	Scheduler *scheduler.Scheduler
}

type (
	videoLog = history.Log[models.Video, *models.Video]
	trackLog = history.Log[models.Track, *models.Track]
)

var storeSet = wire.NewSet(
	provideStore,
	provideVideoLog,
	provideTrackLog,
	provideIngestController,
	metrics.New,
	youtube.NewDefaultExtractor,
	controllers.NewYoutubeResolver,
	controllers.NewLocalResolver,
	local.NewProber,
	wire.Bind(new(controllers.FileProber), new(*local.Prober)),
)

var serveSet = wire.NewSet(
	storeSet,
	provideWriteOptions,
	youtube.NewClient,
	wire.Bind(new(controllers.VideoFetcher), new(*youtube.Client)),
	provideScheduler,
	api.NewServer,
	wire.Struct(new(App), "*"),
)

var readerSet = wire.NewSet(
	storeSet,
	provideReadOnlyOptions,
	wire.Value(controllers.VideoFetcher(offlineFetcher{})),
)

func provideWriteOptions(cfg *config.Config) store.Options {
	return store.Options{Driver: cfg.StoreDriver, Path: cfg.DatabaseFile}
}

func provideReadOnlyOptions(cfg *config.Config) store.Options {
	return store.Options{Driver: cfg.StoreDriver, Path: cfg.DatabaseFile, ReadOnly: true}
}

func provideStore(opts store.Options, logger *logrus.Logger) (*store.DB, func(), error) {
	db, err := store.Open(opts, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close database")
		}
	}
	return db, cleanup, nil
}

func provideVideoLog(db *store.DB, resolver *controllers.YoutubeResolver, logger *logrus.Logger) *videoLog {
	return history.New[models.Video, *models.Video](models.KindYoutube, store.NewTable[models.Video](db), resolver, logger)
}

func provideTrackLog(db *store.DB, resolver *controllers.LocalResolver, logger *logrus.Logger) *trackLog {
	return history.New[models.Track, *models.Track](models.KindLocal, store.NewTable[models.Track](db), resolver, logger)
}

func provideIngestController(m *metrics.Metrics, logger *logrus.Logger, videos *videoLog, tracks *trackLog) *controllers.IngestController {
	return controllers.NewIngestController(m, logger, videos, tracks)
}

func provideScheduler(cfg *config.Config, ctrl *controllers.IngestController, logger *logrus.Logger) *scheduler.Scheduler {
	return scheduler.NewScheduler(cfg.StatsSchedule, ctrl, logger)
}

// offlineFetcher backs read-only commands, which never resolve metadata
type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string) (*youtube.VideoInfo, error) {
	return nil, &apperrors.ConfigurationError{Key: config.YoutubeAPIKeyEnv}
}
