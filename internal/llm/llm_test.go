package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yt-summarizer/internal/config"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.LLMConfig {
	return config.LLMConfig{
		Provider:    "groq",
		BaseURL:     baseURL,
		Model:       "llama-3.3-70b-versatile",
		MaxTokens:   512,
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	}
}

func TestGenerateAgainstOpenAICompatibleServer(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer session-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"short summary"},"finish_reason":"stop"}],"usage":{"total_tokens":7}}`)
	}))
	defer srv.Close()

	m, err := NewFactory(testConfig(srv.URL)).NewChatModel(context.Background(), "session-key")
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("system"),
		schema.UserMessage("hello"),
		{Role: schema.Assistant, Content: ""},
	}, einoModel.WithTemperature(0.1))
	require.NoError(t, err)

	assert.Equal(t, "short summary", msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestGenerateClassifiesErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":{"message":"nope","type":"invalid_request_error"}}`)
			}))
			defer srv.Close()

			m, err := NewFactory(testConfig(srv.URL)).NewChatModel(context.Background(), "k")
			require.NoError(t, err)

			_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStreamConcatenatesChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	m, err := NewFactory(testConfig(srv.URL)).NewChatModel(context.Background(), "k")
	require.NoError(t, err)

	reader, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("x")})
	require.NoError(t, err)
	defer reader.Close()

	var sb strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sb.WriteString(chunk.Content)
	}
	assert.Equal(t, "Hello, world", sb.String())
}

func TestFactoryRequiresKey(t *testing.T) {
	_, err := NewFactory(testConfig("http://unused")).NewChatModel(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewFactory(config.LLMConfig{Provider: "ollama"}).NewChatModel(context.Background(), "k")
	assert.Error(t, err)
}

func TestFactoryBuildsVendorModels(t *testing.T) {
	doubao := config.LLMConfig{
		Provider:    "doubao",
		BaseURL:     "https://ark.cn-beijing.volces.com/api/v3",
		Model:       "doubao-seed-1-6-250615",
		MaxTokens:   512,
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	}
	m, err := NewFactory(doubao).NewChatModel(context.Background(), "ark-key")
	require.NoError(t, err)
	assert.NotNil(t, m)

	qwen := doubao
	qwen.Provider = "qwen"
	qwen.BaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	qwen.Model = "qwen-plus"
	m, err = NewFactory(qwen).NewChatModel(context.Background(), "dashscope-key")
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestQwenGenerateAgainstCompatibleServer(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer dashscope-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","model":"qwen-plus","choices":[{"index":0,"message":{"role":"assistant","content":"qwen summary"},"finish_reason":"stop"}],"usage":{"total_tokens":3}}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Provider = "qwen"
	cfg.Model = "qwen-plus"
	m, err := NewFactory(cfg).NewChatModel(context.Background(), "dashscope-key")
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hello")})
	require.NoError(t, err)
	assert.Equal(t, "qwen summary", msg.Content)
	assert.Equal(t, "qwen-plus", got["model"])
}

func TestSanitizeBody(t *testing.T) {
	out := sanitizeBody(`{"api_key": "abc", "messages": []}`)
	assert.NotContains(t, out, "abc")
	assert.Contains(t, out, `"api_key": "[REDACTED]"`)

	long := sanitizeBody(strings.Repeat("a", maxLoggedBody+10))
	assert.True(t, strings.HasSuffix(long, "...(truncated)"))
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Content-Type", "application/json")

	out := redactHeaders(h)
	assert.Equal(t, "[REDACTED]", out["Authorization"])
	assert.Equal(t, "application/json", out["Content-Type"])
}
