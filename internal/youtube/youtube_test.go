package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yt-summarizer/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch with params", "https://www.youtube.com/watch?v=ABC123&t=10", "ABC123", true},
		{"watch plain", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/ABC123?t=5", "ABC123", true},
		{"short link plain", "youtu.be/XYZ", "XYZ", true},
		{"other host", "https://example.com", "", false},
		{"empty", "", "", false},
		{"empty id", "https://www.youtube.com/watch?v=", "", false},
		{"embed not supported", "https://www.youtube.com/embed/ABC123", "", false},
		{"no validation", "https://www.youtube.com/watch?v=not-an-id!!", "not-an-id!!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractVideoID(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *TitleFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f, err := NewTitleFetcher(context.Background(), config.YouTubeConfig{
		APIKey:   "test-key",
		Endpoint: srv.URL + "/",
		Timeout:  5 * time.Second,
	})
	require.NoError(t, err)
	return f
}

func TestVideoTitleMissingKey(t *testing.T) {
	f, err := NewTitleFetcher(context.Background(), config.YouTubeConfig{})
	require.NoError(t, err)
	assert.Equal(t, TitleAPIKeyMissing, f.VideoTitle(context.Background(), "abc"))
}

func TestVideoTitleSuccess(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/youtube/v3/videos"))
		assert.Equal(t, "abc", r.URL.Query().Get("id"))
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"id":"abc","snippet":{"title":"Test Video"}}]}`))
	})
	assert.Equal(t, "Test Video", f.VideoTitle(context.Background(), "abc"))
}

func TestVideoTitleErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"quota", http.StatusForbidden, `{"error":{"code":403,"message":"quota"}}`, TitleQuotaExceeded},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"bad key"}}`, TitleInvalidAPIKey},
		{"no items", http.StatusOK, `{"items":[]}`, TitleNotFound},
		{"empty title", http.StatusOK, `{"items":[{"snippet":{"title":""}}]}`, TitleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			assert.Equal(t, tt.want, f.VideoTitle(context.Background(), "abc"))
		})
	}
}

func TestVideoTitleOtherFailure(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"backend down"}}`))
	})
	got := f.VideoTitle(context.Background(), "abc")
	assert.True(t, strings.HasPrefix(got, "⚠️ YouTube API Error: "), got)
}
