package llm

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"

	"yt-summarizer/pkg/logger"
)

const maxLoggedBody = 2000

var sensitiveHeaders = []string{"authorization", "x-api-key", "x-goog-api-key", "x-auth-token", "cookie"}

var sensitiveFieldRE = regexp.MustCompile(`"(api_key|apiKey|password|secret|token)"\s*:\s*"[^"]*"`)

// DebugTransport 记录发往模型服务的请求（敏感头和字段已脱敏）
type DebugTransport struct {
	base    http.RoundTripper
	enabled bool
}

func NewDebugTransport(base http.RoundTripper, enabled bool) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base, enabled: enabled}
}

// RoundTrip 实现http.RoundTripper接口
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.enabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.enabled {
		logger.Errorf("🚨 [LLM Debug] Request failed: %v", err)
	}
	if resp != nil && t.enabled {
		logger.Debugf("🔍 [LLM Debug] Response status: %s", resp.Status)
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	entry := logger.WithFields(map[string]interface{}{
		"method":  req.Method,
		"url":     req.URL.Redacted(),
		"headers": redactHeaders(req.Header),
	})

	if req.Body == nil {
		entry.Debug("🔍 [LLM Debug] request")
		return
	}

	bodyBytes, err := io.ReadAll(req.Body)
	if err != nil {
		logger.Errorf("🚨 [LLM Debug] Failed to read request body: %v", err)
		return
	}
	// 恢复请求体，以免影响实际请求
	req.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	entry.WithField("size", len(bodyBytes)).Debugf("🔍 [LLM Debug] request body: %s", sanitizeBody(string(bodyBytes)))
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if isSensitiveHeader(name) {
			out[name] = "[REDACTED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func isSensitiveHeader(name string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// sanitizeBody 替换 JSON 中敏感字段的值并截断过长内容（字幕可能很长）
func sanitizeBody(body string) string {
	body = sensitiveFieldRE.ReplaceAllString(body, `"$1": "[REDACTED]"`)
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody] + "...(truncated)"
	}
	return body
}
