// Package local reads title and duration of audio files on disk with ffprobe.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/amaumene/dono/internal/apperrors"
	"github.com/amaumene/dono/internal/config"
)

// TrackInfo is what ffprobe reports about a file
type TrackInfo struct {
	Path     string
	Title    string
	Duration int64 // seconds
}

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s execution failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}

// ffprobeOutput defines the structure for ffprobe JSON output
type ffprobeOutput struct {
	Format *struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
}

// Prober reads metadata of local files
type Prober struct {
	ffprobePath string
	run         Runner
	tracer      trace.Tracer
	logger      *logrus.Logger
}

// NewProber creates a prober using the configured ffprobe binary
func NewProber(cfg *config.Config, logger *logrus.Logger) *Prober {
	return NewProberWithRunner(cfg.FFprobePath, ExecRunner, logger)
}

// NewProberWithRunner creates a prober that executes commands through run
func NewProberWithRunner(ffprobePath string, run Runner, logger *logrus.Logger) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{
		ffprobePath: ffprobePath,
		run:         run,
		tracer:      otel.Tracer("github.com/amaumene/dono/internal/services/local"),
		logger:      logger,
	}
}

// Probe returns title and duration of the file at path
func (p *Prober) Probe(ctx context.Context, path string) (*TrackInfo, error) {
	ctx, span := p.tracer.Start(ctx, "local.Probe", trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()

	info, err := p.probe(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return info, nil
}

func (p *Prober) probe(ctx context.Context, path string) (*TrackInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &apperrors.InvalidSourceError{Source: path, Reason: "file does not exist"}
		}
		return nil, &apperrors.ProbeError{Path: path, Err: err}
	}
	if !stat.Mode().IsRegular() {
		return nil, &apperrors.InvalidSourceError{Source: path, Reason: "not a regular file"}
	}

	out, err := p.run(ctx, p.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration:format_tags=title",
		"-of", "json",
		path,
	)
	if err != nil {
		return nil, &apperrors.ProbeError{Path: path, Err: err}
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, &apperrors.ProbeError{Path: path, Err: fmt.Errorf("failed to unmarshal ffprobe output: %w", err)}
	}
	if probe.Format == nil {
		return nil, &apperrors.ProbeError{Path: path, Err: errors.New("no format section in ffprobe output")}
	}

	info := &TrackInfo{
		Path:     path,
		Title:    titleFor(path, probe.Format.Tags),
		Duration: parseSeconds(probe.Format.Duration),
	}

	p.logger.WithFields(logrus.Fields{
		"path":     path,
		"title":    info.Title,
		"duration": info.Duration,
	}).Debug("Local file probed")

	return info, nil
}

// titleFor prefers the title tag and falls back to the file name
func titleFor(path string, tags map[string]string) string {
	for key, value := range tags {
		if strings.EqualFold(key, "title") && strings.TrimSpace(value) != "" {
			return norm.NFC.String(strings.TrimSpace(value))
		}
	}
	base := filepath.Base(path)
	return norm.NFC.String(strings.TrimSuffix(base, filepath.Ext(base)))
}

// parseSeconds floors an ffprobe duration such as "183.456000"; anything
// unparseable is zero.
func parseSeconds(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(math.Floor(f))
}
