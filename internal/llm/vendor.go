package llm

import (
	"context"
	"fmt"
	"net/http"

	"yt-summarizer/internal/config"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
)

// newDoubaoChatModel 通过火山方舟调用豆包，Model 为方舟上的模型或推理接入点 ID
func newDoubaoChatModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (*ark.ChatModel, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      apiKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Doubao model: %w", err)
	}
	return chatModel, nil
}

// newQwenChatModel 走 DashScope 的 OpenAI 兼容接口，请求经过调试 transport
func newQwenChatModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (*qwen.ChatModel, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      apiKey,
		Model:       cfg.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
		HTTPClient: &http.Client{
			Transport: NewDebugTransport(nil, cfg.DebugRequest),
			Timeout:   cfg.Timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qwen model: %w", err)
	}
	return chatModel, nil
}
