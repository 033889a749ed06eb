package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/config"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 root
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	videoParts  = "snippet,contentDetails"
	videoFields = "items(id,snippet(title),contentDetails(duration))"

	maxResponseSize = 1 << 20
)

// VideoInfo is the catalog metadata for one video
type VideoInfo struct {
	ID          string
	Title       string
	Duration    int64 // seconds
	RawDuration string
}

// DurationSuspect reports whether a non-empty duration decoded to zero
// without spelling zero, which usually means an unexpected format upstream.
func (v *VideoInfo) DurationSuspect() bool {
	return v.Duration == 0 && v.RawDuration != "" && !isZeroDuration(v.RawDuration)
}

// videoListResponse mirrors the subset of videos.list we request
type videoListResponse struct {
	Items *[]videoItem `json:"items"`
}

type videoItem struct {
	Snippet *struct {
		Title *string `json:"title"`
	} `json:"snippet"`
	ContentDetails *struct {
		Duration *string `json:"duration"`
	} `json:"contentDetails"`
}

// Client looks up video metadata in the YouTube Data API
type Client struct {
	baseURL    string
	apiKey     string
	retries    int
	httpClient *http.Client
	tracer     trace.Tracer
	logger     *logrus.Logger
}

// NewClient creates a catalog client. The API key is taken from cfg once;
// an empty key is a configuration error.
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.YoutubeAPIKey == "" {
		return nil, &apperrors.ConfigurationError{Key: config.YoutubeAPIKeyEnv}
	}

	baseURL := cfg.YoutubeAPIBase
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.YoutubeAPIKey,
		retries: cfg.FetchRetries,
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		tracer: otel.Tracer("github.com/amaumene/dono/internal/services/youtube"),
		logger: logger,
	}, nil
}

// Fetch returns the title and duration of the video with the given id.
// Only transport failures are retried, and only when retries are configured.
func (c *Client) Fetch(ctx context.Context, id string) (*VideoInfo, error) {
	ctx, span := c.tracer.Start(ctx, "youtube.Fetch", trace.WithAttributes(attribute.String("youtube.id", id)))
	defer span.End()

	reqURL := c.videoURL(id)
	start := time.Now()

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		data, err := c.get(ctx, reqURL)
		if err != nil {
			var transportErr *apperrors.TransportError
			if errors.As(err, &transportErr) {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"video_id": id,
					"attempt":  attempt,
				}).Warn("YouTube API request failed")
				return err
			}
			return backoff.Permanent(err)
		}
		body = data
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.MaxInterval = config.MaxRetryWait
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(c.retries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	info, err := decodeVideo(id, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"video_id":    id,
		"title":       info.Title,
		"duration":    info.Duration,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("YouTube metadata fetched")

	return info, nil
}

func (c *Client) videoURL(id string) string {
	return fmt.Sprintf("%s/videos/?%s", c.baseURL, buildQuery([]param{
		{"id", id},
		{"part", videoParts},
		{"fields", videoFields},
		{"key", c.apiKey},
	}))
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "dono/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperrors.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"status":      resp.Status,
		}).Error("YouTube API returned non-OK status")
		return nil, &apperrors.RemoteStatusError{
			Code:   resp.StatusCode,
			Reason: reasonPhrase(resp),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &apperrors.TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	return data, nil
}

// reasonPhrase extracts the reason text from a status line such as "404 Not Found"
func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func decodeVideo(id string, data []byte) (*VideoInfo, error) {
	var resp videoListResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &apperrors.DeserializationError{Err: err}
	}
	if resp.Items == nil {
		return nil, &apperrors.DeserializationError{Err: errors.New("missing items")}
	}
	if len(*resp.Items) == 0 {
		return nil, &apperrors.EmptyCatalogError{ID: id}
	}

	item := (*resp.Items)[0]
	if item.Snippet == nil || item.Snippet.Title == nil {
		return nil, &apperrors.DeserializationError{Err: errors.New("missing snippet.title")}
	}
	if item.ContentDetails == nil || item.ContentDetails.Duration == nil {
		return nil, &apperrors.DeserializationError{Err: errors.New("missing contentDetails.duration")}
	}

	raw := *item.ContentDetails.Duration
	return &VideoInfo{
		ID:          id,
		Title:       *item.Snippet.Title,
		Duration:    ParseDuration(raw),
		RawDuration: raw,
	}, nil
}
