package llm

import (
	"context"
	"errors"
	"fmt"

	"yt-summarizer/internal/config"

	einoModel "github.com/cloudwego/eino/components/model"
)

var ErrMissingAPIKey = errors.New("llm: api key is required")

// Factory 按会话 API Key 创建聊天模型，提供方由配置决定
type Factory struct {
	cfg config.LLMConfig
}

func NewFactory(cfg config.LLMConfig) *Factory {
	return &Factory{cfg: cfg}
}

func (f *Factory) Provider() string {
	return f.cfg.Provider
}

// NewChatModel 每次调用创建新的客户端，API Key 不在会话之间共享
func (f *Factory) NewChatModel(ctx context.Context, apiKey string) (einoModel.BaseChatModel, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch f.cfg.Provider {
	case "groq", "openai":
		return newOpenAIChatModel(f.cfg, apiKey), nil
	case "gemini":
		return newGeminiChatModel(ctx, f.cfg, apiKey)
	case "doubao":
		return newDoubaoChatModel(ctx, f.cfg, apiKey)
	case "qwen":
		return newQwenChatModel(ctx, f.cfg, apiKey)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", f.cfg.Provider)
	}
}
