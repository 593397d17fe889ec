package service

import (
	"errors"
	"fmt"

	"yt-summarizer/internal/llm"
)

var (
	ErrAPIKeyMissing    = errors.New("api key not set for this session")
	ErrAPIKeyAlreadySet = errors.New("api key is already set for this session")
	ErrEmptyAPIKey      = errors.New("api key must not be empty")
	ErrEntryNotFound    = errors.New("history entry not found")
	ErrUnknownLanguage  = errors.New("unknown language")
)

const bannerAPIKeyMissing = "🔑 Please enter your API key first."

// describeLLMError 将模型调用失败转换为横幅文本
func describeLLMError(action string, err error) string {
	switch {
	case errors.Is(err, llm.ErrUnauthorized), errors.Is(err, llm.ErrMissingAPIKey):
		return "❌ Invalid LLM API Key."
	case errors.Is(err, llm.ErrRateLimited):
		return "❌ LLM rate limit reached - try again later."
	default:
		return fmt.Sprintf("⚠️ %s failed: %v", action, err)
	}
}
