package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"yt-summarizer/internal/config"
	"yt-summarizer/pkg/logger"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// 标题获取结果中的提示文本，调用方直接展示
const (
	TitleAPIKeyMissing = "⚠️ YouTube API Key Missing"
	TitleQuotaExceeded = "❌ API Key Quota Exceeded - Try another key."
	TitleInvalidAPIKey = "❌ Invalid YouTube API Key."
	TitleNotFound      = "⚠️ Title Not Found"
	titleAPIErrorFmt   = "⚠️ YouTube API Error: %v"
)

// TitleFetcher 通过 YouTube Data API v3 查询视频标题
type TitleFetcher struct {
	service *yt.Service
	timeout time.Duration
}

// NewTitleFetcher 未配置 API Key 时也返回可用实例，查询时返回缺失提示
func NewTitleFetcher(ctx context.Context, cfg config.YouTubeConfig) (*TitleFetcher, error) {
	f := &TitleFetcher{timeout: cfg.Timeout}
	if cfg.APIKey == "" {
		logger.Warn("YouTube API key not configured, titles will not be fetched")
		return f, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	f.service = service
	return f, nil
}

// VideoTitle 总是返回字符串，错误以提示文本表示
func (f *TitleFetcher) VideoTitle(ctx context.Context, videoID string) string {
	if f.service == nil {
		return TitleAPIKeyMissing
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	resp, err := f.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusForbidden:
				return TitleQuotaExceeded
			case http.StatusUnauthorized:
				return TitleInvalidAPIKey
			}
		}
		logger.Warnf("YouTube title lookup failed for %s: %v", videoID, err)
		return fmt.Sprintf(titleAPIErrorFmt, err)
	}

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil || resp.Items[0].Snippet.Title == "" {
		return TitleNotFound
	}
	return resp.Items[0].Snippet.Title
}
