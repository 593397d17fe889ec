package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"yt-summarizer/internal/config"
	"yt-summarizer/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// geminiChatModel 通过 genai SDK 调用 Gemini
type geminiChatModel struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

func newGeminiChatModel(ctx context.Context, cfg config.LLMConfig, apiKey string) (*geminiChatModel, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Transport: NewDebugTransport(nil, cfg.DebugRequest),
			Timeout:   cfg.Timeout,
		},
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &geminiChatModel{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// request 拆分出 system 指令，其余消息按角色转换为 genai.Content
func (m *geminiChatModel) request(messages []*schema.Message, opts []einoModel.Option) (string, []*genai.Content, *genai.GenerateContentConfig) {
	options := einoModel.GetCommonOptions(&einoModel.Options{
		Model:       &m.model,
		MaxTokens:   &m.maxTokens,
		Temperature: &m.temperature,
	}, opts...)

	genConfig := &genai.GenerateContentConfig{}
	if options.Temperature != nil {
		genConfig.Temperature = genai.Ptr(*options.Temperature)
	}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(*options.MaxTokens)
	}

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			system = append(system, msg.Content)
		case schema.Assistant:
			if msg.Content != "" {
				contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
			}
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		genConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	model := m.model
	if options.Model != nil {
		model = *options.Model
	}
	return model, contents, genConfig
}

func (m *geminiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.Message, error) {
	model, contents, genConfig := m.request(messages, opts)
	logger.Debugf("Gemini generate: model=%s, contents=%d", model, len(contents))

	result, err := m.client.Models.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return nil, classify(err)
	}

	text := result.Text()
	if text == "" {
		return nil, ErrEmptyReply
	}
	return &schema.Message{Role: schema.Assistant, Content: text}, nil
}

func (m *geminiChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	model, contents, genConfig := m.request(messages, opts)

	reader, writer := schema.Pipe[*schema.Message](100)
	go func() {
		defer writer.Close()
		for resp, err := range m.client.Models.GenerateContentStream(ctx, model, contents, genConfig) {
			if err != nil {
				writer.Send(nil, classify(err))
				return
			}
			if text := resp.Text(); text != "" {
				if closed := writer.Send(&schema.Message{Role: schema.Assistant, Content: text}, nil); closed {
					return
				}
			}
		}
	}()
	return reader, nil
}
