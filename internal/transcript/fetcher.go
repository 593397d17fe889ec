package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"yt-summarizer/internal/config"
	"yt-summarizer/internal/model"
	"yt-summarizer/internal/utils"
	"yt-summarizer/pkg/logger"
)

const (
	maxWatchPageBytes = 8 << 20
	maxTimedTextBytes = 2 << 20
)

// Fetcher 经 ScraperAPI 代理抓取 watch 页面与字幕
type Fetcher struct {
	client    *http.Client
	watchURL  string
	languages []string
	hasKey    bool
}

type Option func(*Fetcher)

// WithHTTPClient 替换默认的代理客户端
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

func NewFetcher(cfg config.TranscriptConfig, opts ...Option) *Fetcher {
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	watchURL := cfg.WatchURL
	if watchURL == "" {
		watchURL = "https://www.youtube.com/watch"
	}

	f := &Fetcher{
		watchURL:  watchURL,
		languages: langs,
		hasKey:    cfg.ScraperAPIKey != "",
	}
	if f.hasKey {
		proxy := utils.ProxyURL("scraperapi", cfg.ScraperAPIKey, cfg.ProxyHost, cfg.ProxyPort)
		f.client = utils.NewProxyHTTPClient(proxy, cfg.Timeout, cfg.ProxyInsecure)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch 返回按时间排序的字幕；失败时错误类型总是 *Error
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (tr model.Transcript, err error) {
	defer func() {
		if r := recover(); r != nil {
			tr, err = nil, newError(KindOther, fmt.Errorf("panic: %v", r))
		}
	}()

	if !f.hasKey {
		return nil, newError(KindProxyKeyMissing, nil)
	}

	player, err := f.fetchPlayerResponse(ctx, videoID)
	if err != nil {
		return nil, newError(KindOther, err)
	}

	switch player.PlayabilityStatus.Status {
	case "OK", "":
	case "ERROR", "UNPLAYABLE":
		return nil, newError(KindUnavailable, errors.New(player.PlayabilityStatus.Reason))
	default:
		return nil, newError(KindOther, fmt.Errorf("playability %s: %s",
			player.PlayabilityStatus.Status, player.PlayabilityStatus.Reason))
	}

	tracks := player.tracks()
	if len(tracks) == 0 {
		return nil, newError(KindDisabled, nil)
	}

	track, ok := pickTrack(tracks, f.languages)
	if !ok {
		return nil, newError(KindNotFound, fmt.Errorf("no track in %v", f.languages))
	}

	tr, err = f.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, newError(KindOther, err)
	}
	if len(tr) == 0 {
		return nil, newError(KindNotFound, errors.New("caption track is empty"))
	}

	logger.Debugf("Fetched transcript for %s: %d lines (%s, kind=%q)", videoID, len(tr), track.LanguageCode, track.Kind)
	return tr, nil
}

func (f *Fetcher) fetchPlayerResponse(ctx context.Context, videoID string) (*playerResponse, error) {
	u, err := url.Parse(f.watchURL)
	if err != nil {
		return nil, fmt.Errorf("invalid watch url: %w", err)
	}
	q := u.Query()
	q.Set("v", videoID)
	q.Set("hl", "en")
	u.RawQuery = q.Encode()

	body, err := f.get(ctx, u.String(), maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer body.Close()

	return extractPlayerResponse(body)
}

func (f *Fetcher) fetchTimedText(ctx context.Context, baseURL string) (model.Transcript, error) {
	body, err := f.get(ctx, baseURL, maxTimedTextBytes)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}
	defer body.Close()

	tr, err := parseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}
	return tr, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func (f *Fetcher) get(ctx context.Context, rawURL string, limit int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", utils.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return limitedBody{Reader: io.LimitReader(resp.Body, limit), Closer: resp.Body}, nil
}
