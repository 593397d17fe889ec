package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yt-summarizer/internal/config"
	"yt-summarizer/internal/model"
	"yt-summarizer/internal/service"
	"yt-summarizer/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTitles struct{}

func (stubTitles) VideoTitle(ctx context.Context, videoID string) string {
	return "Video " + videoID
}

type stubTranscripts struct{}

func (stubTranscripts) Fetch(ctx context.Context, videoID string) (model.Transcript, error) {
	return model.Transcript{{Start: 1.5, Text: "hello"}}, nil
}

type stubAssistant struct{}

func (stubAssistant) Summarize(ctx context.Context, text, title string) (model.Summary, error) {
	return model.SectionedSummary([]model.Section{{Heading: "Overview", Body: "about " + title}}), nil
}

func (stubAssistant) Answer(ctx context.Context, question, title string) (model.Summary, error) {
	return model.PlainSummary("answer to " + question), nil
}

func (stubAssistant) Translate(ctx context.Context, summary model.Summary, code string) (model.Summary, error) {
	return summary, nil
}

var sessionConfig = config.SessionConfig{TTL: time.Hour, CookieName: "yts_session"}

// slowTranscripts 模拟耗时的字幕抓取，用于覆盖心跳
type slowTranscripts struct {
	delay time.Duration
}

func (s slowTranscripts) Fetch(ctx context.Context, videoID string) (model.Transcript, error) {
	time.Sleep(s.delay)
	return stubTranscripts{}.Fetch(ctx, videoID)
}

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWith(t, stubTranscripts{}, 15*time.Second)
}

func newTestRouterWith(t *testing.T, transcripts service.TranscriptFetcher, heartbeat time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	assistants := func(ctx context.Context, apiKey string) (service.Assistant, error) {
		return stubAssistant{}, nil
	}
	svc := service.NewSessionService(storage.NewMemoryStorage(), stubTitles{}, transcripts, assistants, sessionConfig)

	sessions := NewSessionHandler(svc)
	sessions.heartbeat = heartbeat

	router := gin.New()
	router.SetHTMLTemplate(Templates())
	NewPageHandler(svc, sessionConfig).RegisterRoutes(router)
	sessions.RegisterRoutes(router.Group("/api"))
	return router
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "English", resp.Language)
	assert.False(t, resp.APIKeySet)
	return resp.SessionID
}

func TestSessionAPIFlow(t *testing.T) {
	r := newTestRouter(t)
	id := createSession(t, r)
	base := "/api/session/" + id

	w := doJSON(t, r, http.MethodPost, base+"/summarize", gin.H{"url": "https://youtu.be/abc"})
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = doJSON(t, r, http.MethodPost, base+"/api-key", gin.H{"api_key": "gsk_1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "gsk_1")

	w = doJSON(t, r, http.MethodPost, base+"/api-key", gin.H{"api_key": "gsk_2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPut, base+"/language", gin.H{"language": "Elvish"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, base+"/summarize", gin.H{"url": "not a video"})
	require.Equal(t, http.StatusOK, w.Code)
	var ignored model.SummarizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ignored))
	assert.True(t, ignored.Ignored)

	w = doJSON(t, r, http.MethodPost, base+"/summarize", gin.H{"url": "https://www.youtube.com/watch?v=abc&t=1"})
	require.Equal(t, http.StatusOK, w.Code)
	var summarized model.SummarizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summarized))
	assert.Equal(t, "abc", summarized.VideoID)
	assert.Equal(t, "Video abc", summarized.Title)
	require.NotNil(t, summarized.Summary)
	assert.Equal(t, []model.Section{{Heading: "Overview", Body: "about Video abc"}}, summarized.Summary.Sections)

	w = doJSON(t, r, http.MethodPost, base+"/followup", gin.H{"question": "why?"})
	require.Equal(t, http.StatusOK, w.Code)
	var followUp model.FollowUpResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &followUp))
	require.NotNil(t, followUp.Clarification)
	assert.Equal(t, "answer to why?", followUp.Clarification.Text)

	w = doJSON(t, r, http.MethodPost, base+"/new-chat", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cleared model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cleared))
	assert.Nil(t, cleared.CurrentSummary)
	assert.Equal(t, []string{"Video abc"}, cleared.History)

	w = doJSON(t, r, http.MethodPost, base+"/history/select", gin.H{"title": "Video abc"})
	require.Equal(t, http.StatusOK, w.Code)
	var selected model.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &selected))
	assert.Equal(t, summarized.Summary, selected.CurrentSummary)

	w = doJSON(t, r, http.MethodPost, base+"/history/select", gin.H{"title": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, base+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history model.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Len(t, history.Entries, 1)

	w = doJSON(t, r, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLanguages(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/languages", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Default   string           `json:"default"`
		Languages []model.Language `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "English", resp.Default)
	assert.Len(t, resp.Languages, len(model.Languages))
}

func TestSummarizeStream(t *testing.T) {
	r := newTestRouter(t)
	id := createSession(t, r)
	doJSON(t, r, http.MethodPost, "/api/session/"+id+"/api-key", gin.H{"api_key": "k"})

	w := doJSON(t, r, http.MethodPost, "/api/session/"+id+"/summarize/stream", gin.H{"url": "https://youtu.be/xyz"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, "event: progress")
	assert.Contains(t, body, `"stage":"fetching_title"`)
	assert.Contains(t, body, `"stage":"summarizing"`)
	assert.Contains(t, body, "event: result")
	assert.Contains(t, body, `"video_id":"xyz"`)
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))
	assert.Less(t, strings.Index(body, "fetching_title"), strings.Index(body, "event: result"))
}

func TestSummarizeStreamStopsHeartbeatBeforeResult(t *testing.T) {
	r := newTestRouterWith(t, slowTranscripts{delay: 50 * time.Millisecond}, time.Millisecond)
	id := createSession(t, r)
	doJSON(t, r, http.MethodPost, "/api/session/"+id+"/api-key", gin.H{"api_key": "k"})

	w := doJSON(t, r, http.MethodPost, "/api/session/"+id+"/summarize/stream", gin.H{"url": "https://youtu.be/xyz"})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "event: heartbeat")
	result := strings.Index(body, "event: result")
	require.Greater(t, result, 0)
	assert.NotContains(t, body[result:], "event: heartbeat")
	assert.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))

	// handler 返回后不再有任何写入
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, body, w.Body.String())
}

func TestSummarizeStreamUnknownSession(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/session/missing/summarize/stream", gin.H{"url": "https://youtu.be/xyz"})
	assert.Contains(t, w.Body.String(), "event: error")
}

func postForm(r http.Handler, path string, cookie *http.Cookie, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPage(r http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPageFlow(t *testing.T) {
	r := newTestRouter(t)

	w := getPage(r, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "yts_session", cookie.Name)
	assert.Contains(t, w.Body.String(), `name="api_key"`)
	assert.NotContains(t, w.Body.String(), `action="/form/followup"`)

	w = postForm(r, "/form/summarize", cookie, url.Values{"url": {"https://youtu.be/abc"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Contains(t, getPage(r, cookie).Body.String(), "🔑 Please enter your API key first.")

	w = postForm(r, "/form/api-key", cookie, url.Values{"api_key": {"gsk"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	page := getPage(r, cookie).Body.String()
	assert.Contains(t, page, "✅ API Key Set")
	assert.NotContains(t, page, "Please enter your API key first")

	postForm(r, "/form/language", cookie, url.Values{"language": {"French"}})
	postForm(r, "/form/summarize", cookie, url.Values{"url": {"https://youtu.be/abc"}})

	page = getPage(r, cookie).Body.String()
	assert.Contains(t, page, "<h3>Overview</h3>")
	assert.Contains(t, page, "about Video abc")
	assert.Contains(t, page, `action="/form/followup"`)
	assert.Contains(t, page, `<option value="French" selected>`)

	postForm(r, "/form/followup", cookie, url.Values{"question": {"what?"}})
	assert.Contains(t, getPage(r, cookie).Body.String(), "answer to what?")

	postForm(r, "/form/new-chat", cookie, nil)
	page = getPage(r, cookie).Body.String()
	assert.NotContains(t, page, "about Video abc")
	assert.Contains(t, page, `value="Video abc"`)

	postForm(r, "/form/history", cookie, url.Values{"title": {"Video abc"}})
	assert.Contains(t, getPage(r, cookie).Body.String(), "about Video abc")
}

func TestPageRecreatesExpiredSession(t *testing.T) {
	r := newTestRouter(t)
	w := getPage(r, &http.Cookie{Name: "yts_session", Value: "gone"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.NotEqual(t, "gone", cookies[0].Value)
}
