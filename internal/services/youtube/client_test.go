package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/config"
)

const okBody = `{"items":[{"id":"dQw4w9WgXcQ","snippet":{"title":"Never Gonna Give You Up"},"contentDetails":{"duration":"PT3M33S"}}]}`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestClient(t *testing.T, baseURL string, retries int) *Client {
	t.Helper()
	client, err := NewClient(&config.Config{
		YoutubeAPIKey:  "fake key",
		YoutubeAPIBase: baseURL,
		FetchTimeout:   2 * time.Second,
		FetchRetries:   retries,
	}, testLogger())
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(&config.Config{}, testLogger())
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, config.YoutubeAPIKeyEnv, cfgErr.Key)
}

func TestFetch(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, okBody)
	}))
	defer server.Close()

	info, err := newTestClient(t, server.URL, 0).Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "/videos/", gotPath)
	assert.Equal(t,
		"id=dQw4w9WgXcQ&part=snippet%2CcontentDetails&fields=items%28id%2Csnippet%28title%29%2CcontentDetails%28duration%29%29&key=fake%20key",
		gotQuery)
	assert.Equal(t, "Never Gonna Give You Up", info.Title)
	assert.Equal(t, int64(213), info.Duration)
	assert.Equal(t, "PT3M33S", info.RawDuration)
}

func TestFetchUsesFirstItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items":[
			{"snippet":{"title":"first"},"contentDetails":{"duration":"PT1S"}},
			{"snippet":{"title":"second"},"contentDetails":{"duration":"PT2S"}}]}`)
	}))
	defer server.Close()

	info, err := newTestClient(t, server.URL, 0).Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "first", info.Title)
	assert.Equal(t, int64(1), info.Duration)
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				var statusErr *apperrors.RemoteStatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, 404, statusErr.Code)
				assert.Equal(t, "Not Found", statusErr.Reason)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"error":{"code":403}}`,
			check: func(t *testing.T, err error) {
				var statusErr *apperrors.RemoteStatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, 403, statusErr.Code)
				assert.Equal(t, "Forbidden", statusErr.Reason)
			},
		},
		{
			name:   "empty items",
			status: http.StatusOK,
			body:   `{"items":[]}`,
			check: func(t *testing.T, err error) {
				var emptyErr *apperrors.EmptyCatalogError
				require.True(t, errors.As(err, &emptyErr))
				assert.Equal(t, "dQw4w9WgXcQ", emptyErr.ID)
			},
		},
		{
			name:   "not json",
			status: http.StatusOK,
			body:   `<html>`,
			check:  requireDeserialization,
		},
		{
			name:   "missing items",
			status: http.StatusOK,
			body:   `{"kind":"youtube#videoListResponse"}`,
			check:  requireDeserialization,
		},
		{
			name:   "wrong item shape",
			status: http.StatusOK,
			body:   `{"items":[{"snippet":{"name":"x"}}]}`,
			check:  requireDeserialization,
		},
		{
			name:   "wrong field type",
			status: http.StatusOK,
			body:   `{"items":[{"snippet":{"title":7},"contentDetails":{"duration":"PT1S"}}]}`,
			check:  requireDeserialization,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			info, err := newTestClient(t, server.URL, 0).Fetch(context.Background(), "dQw4w9WgXcQ")
			assert.Nil(t, info)
			tt.check(t, err)
		})
	}
}

func requireDeserialization(t *testing.T, err error) {
	var decodeErr *apperrors.DeserializationError
	require.True(t, errors.As(err, &decodeErr), "expected DeserializationError, got %v", err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestFetchTransportError(t *testing.T) {
	client := newTestClient(t, "http://catalog.invalid", 0)
	var calls int32
	client.httpClient.Transport = roundTripFunc(func(*http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	})

	_, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	var transportErr *apperrors.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchRetriesTransportErrors(t *testing.T) {
	client := newTestClient(t, "http://catalog.invalid", 2)
	var calls int32
	client.httpClient.Transport = roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("connection reset")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Status:     "200 OK",
			Body:       io.NopCloser(strings.NewReader(okBody)),
			Request:    r,
		}, nil
	})

	info, err := client.Fetch(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, int64(213), info.Duration)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryStatusErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 3).Fetch(context.Background(), "dQw4w9WgXcQ")
	var statusErr *apperrors.RemoteStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
