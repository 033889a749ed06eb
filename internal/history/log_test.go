package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/models"
	"github.com/amaumene/dono/internal/store"
)

var (
	_ Journal = (*Log[models.Video, *models.Video])(nil)
	_ Journal = (*Log[models.Track, *models.Track])(nil)
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// echoResolver resolves every item to its own source
var echoResolver = ResolverFunc(func(_ context.Context, item models.Item) (*models.Metadata, error) {
	return &models.Metadata{
		ExternalID: item.Source,
		Title:      "title " + item.Source,
		Duration:   item.Timestamp % 600,
	}, nil
})

func openDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(store.Options{
		Driver: store.DriverBolt,
		Path:   filepath.Join(t.TempDir(), "history.db"),
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newLogs(t *testing.T, resolver Resolver) (*Log[models.Video, *models.Video], *Log[models.Track, *models.Track]) {
	db := openDB(t)
	videos := New[models.Video, *models.Video](models.KindYoutube, store.NewTable[models.Video](db), resolver, testLogger())
	tracks := New[models.Track, *models.Track](models.KindLocal, store.NewTable[models.Track](db), resolver, testLogger())
	return videos, tracks
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *apperrors.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
}

func TestEmptyLog(t *testing.T) {
	ctx := context.Background()
	videos, _ := newLogs(t, echoResolver)

	_, err := videos.Current(ctx)
	requireNotFound(t, err)
	_, err = videos.Previous(ctx)
	requireNotFound(t, err)

	all, err := videos.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSingleRecord(t *testing.T) {
	ctx := context.Background()
	videos, _ := newLogs(t, echoResolver)

	rec, err := videos.Insert(ctx, models.Item{Kind: models.KindYoutube, Source: "dQw4w9WgXcQ", Timestamp: 1000})
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
	assert.Equal(t, "dQw4w9WgXcQ", rec.VideoID)
	assert.Equal(t, "title dQw4w9WgXcQ", rec.Title)
	assert.Equal(t, int64(1000), rec.GetTimestamp())

	current, err := videos.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, *rec, *current)

	_, err = videos.Previous(ctx)
	requireNotFound(t, err)
}

func TestCurrentAndPrevious(t *testing.T) {
	ctx := context.Background()
	_, tracks := newLogs(t, echoResolver)

	// timestamps submitted out of order; ordering follows the timestamp
	for _, ts := range []int64{30, 10, 50, 20, 40} {
		_, err := tracks.Insert(ctx, models.Item{Kind: models.KindLocal, Source: fmt.Sprintf("/t%d.mp3", ts), Timestamp: ts})
		require.NoError(t, err)
	}

	current, err := tracks.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), current.Timestamp)

	previous, err := tracks.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40), previous.Timestamp)

	all, err := tracks.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i-1].Timestamp, all[i].Timestamp)
	}
}

func TestRepeatedPlaysAreKept(t *testing.T) {
	ctx := context.Background()
	videos, _ := newLogs(t, echoResolver)

	for ts := int64(1); ts <= 3; ts++ {
		_, err := videos.Insert(ctx, models.Item{Kind: models.KindYoutube, Source: "dQw4w9WgXcQ", Timestamp: ts})
		require.NoError(t, err)
	}

	count, err := videos.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestResolveFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	failing := ResolverFunc(func(context.Context, models.Item) (*models.Metadata, error) {
		return nil, &apperrors.RemoteStatusError{Code: 404, Reason: "Not Found"}
	})
	videos, _ := newLogs(t, failing)

	_, err := videos.Insert(ctx, models.Item{Kind: models.KindYoutube, Source: "x", Timestamp: 1})
	var statusErr *apperrors.RemoteStatusError
	require.True(t, errors.As(err, &statusErr))

	count, err := videos.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInsertRejectsOtherKind(t *testing.T) {
	videos, _ := newLogs(t, echoResolver)

	_, err := videos.Insert(context.Background(), models.Item{Kind: models.KindLocal, Source: "/a.mp3", Timestamp: 1})
	var invalid *apperrors.InvalidSourceError
	assert.True(t, errors.As(err, &invalid))
}

func TestEmptyTitleFallsBackToExternalID(t *testing.T) {
	untitled := ResolverFunc(func(_ context.Context, item models.Item) (*models.Metadata, error) {
		return &models.Metadata{ExternalID: item.Source, Duration: -5}, nil
	})
	_, tracks := newLogs(t, untitled)

	rec, err := tracks.Insert(context.Background(), models.Item{Kind: models.KindLocal, Source: "/a.mp3", Timestamp: 1})
	require.NoError(t, err)
	assert.Equal(t, "/a.mp3", rec.Title)
	assert.Zero(t, rec.Duration)
}

func TestKindsAreIndependent(t *testing.T) {
	ctx := context.Background()
	videos, tracks := newLogs(t, echoResolver)

	const perKind = 20
	var wg sync.WaitGroup
	for i := 0; i < perKind; i++ {
		wg.Add(3)
		go func(ts int64) {
			defer wg.Done()
			_, err := videos.Insert(ctx, models.Item{Kind: models.KindYoutube, Source: "v", Timestamp: ts})
			assert.NoError(t, err)
		}(int64(i + 1))
		go func(ts int64) {
			defer wg.Done()
			_, err := tracks.Insert(ctx, models.Item{Kind: models.KindLocal, Source: "/t.mp3", Timestamp: ts})
			assert.NoError(t, err)
		}(int64(i + 1))
		go func() {
			defer wg.Done()
			_, _ = videos.All(ctx)
			_, _ = tracks.Current(ctx)
		}()
	}
	wg.Wait()

	allVideos, err := videos.All(ctx)
	require.NoError(t, err)
	assert.Len(t, allVideos, perKind)

	allTracks, err := tracks.AllEntries(ctx)
	require.NoError(t, err)
	assert.Len(t, allTracks, perKind)
	for _, e := range allTracks {
		assert.Equal(t, models.KindLocal, e.Kind)
	}

	current, err := videos.CurrentEntry(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(perKind), current.Timestamp)
	assert.Equal(t, models.KindYoutube, current.Kind)
}
