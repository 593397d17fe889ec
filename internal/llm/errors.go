package llm

import (
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

var (
	ErrUnauthorized = errors.New("llm: invalid or unauthorized API key")
	ErrRateLimited  = errors.New("llm: rate limit exceeded")
	ErrEmptyReply   = errors.New("llm: empty response")
)

// classify 将各提供方的 HTTP 错误映射为包内哨兵错误，保留原始错误链
func classify(err error) error {
	if err == nil {
		return nil
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var genaiErr genai.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.As(err, &genaiErr):
		status = genaiErr.Code
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return err
}
