package youtube

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaumene/dono/internal/apperrors"
)

func TestExtract(t *testing.T) {
	extractor := NewDefaultExtractor()

	tests := []struct {
		name string
		link string
		want string
	}{
		{"short", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short with time", "https://youtu.be/dQw4w9WgXcQ?t=42", "dQw4w9WgXcQ"},
		{"short http", "http://youtu.be/a-b_c1D2e3F", "a-b_c1D2e3F"},
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch without www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch mobile", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch later param", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=1s", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"music", "https://music.youtube.com/watch?v=dQw4w9WgXcQ&list=RD", "dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Extract(tt.link)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractRejects(t *testing.T) {
	extractor := NewDefaultExtractor()

	links := []string{
		"",
		"dQw4w9WgXcQ",
		"https://youtu.be/short",
		"https://youtu.be/dQw4w9WgXcQX",
		"https://www.youtube.com/watch?v=dQw4w9WgXc",
		"https://www.youtube.com/watch?v=dQw4w9WgX!Q",
		"https://www.youtube.com/channel/UCxxxxxxxxxx",
		"https://vimeo.com/123456789",
		"https://www.youtube.com.evil.example/watch?v=dQw4w9WgXcQ",
		"ftp://youtu.be/dQw4w9WgXcQ",
	}

	for _, link := range links {
		t.Run(link, func(t *testing.T) {
			_, err := extractor.Extract(link)
			var invalid *apperrors.InvalidSourceError
			require.True(t, errors.As(err, &invalid), "expected InvalidSourceError, got %v", err)
			assert.Equal(t, link, invalid.Source)
		})
	}
}

func TestExtractCustomPattern(t *testing.T) {
	extractor := NewExtractor(regexp.MustCompile(`^yt:(?P<id>[A-Za-z0-9_-]{11})$`))

	got, err := extractor.Extract("yt:dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", got)

	_, err = NewExtractor(regexp.MustCompile(`^yt:.*$`)).Extract("yt:dQw4w9WgXcQ")
	assert.Error(t, err)
}
