package summarizer

import (
	"context"
	"fmt"
	"strings"

	"yt-summarizer/internal/llm"
	"yt-summarizer/internal/model"
	"yt-summarizer/pkg/logger"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
)

// Summarizer 负责摘要、追问回答与翻译，三者共用同一个聊天模型
type Summarizer struct {
	chat einoModel.BaseChatModel
}

func New(chat einoModel.BaseChatModel) *Summarizer {
	return &Summarizer{chat: chat}
}

// Open 使用会话的 API Key 创建 Summarizer
func Open(ctx context.Context, factory *llm.Factory, apiKey string) (*Summarizer, error) {
	chat, err := factory.NewChatModel(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return New(chat), nil
}

// Summarize 对字幕文本生成摘要，标题作为上下文
func (s *Summarizer) Summarize(ctx context.Context, text, title string) (model.Summary, error) {
	reply, err := s.generate(ctx, summarizeTemplate, map[string]any{
		"title": title,
		"text":  text,
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("summarize: %w", err)
	}
	return ParseSummary(reply), nil
}

// Answer 回答关于当前视频的追问
func (s *Summarizer) Answer(ctx context.Context, question, title string) (model.Summary, error) {
	reply, err := s.generate(ctx, answerTemplate, map[string]any{
		"title":    title,
		"question": question,
	})
	if err != nil {
		return model.Summary{}, fmt.Errorf("answer: %w", err)
	}
	return ParseSummary(reply), nil
}

// Translate 保持摘要形态：纯文本仍为纯文本，分节摘要按 JSON 对象发送并解析回分节
func (s *Summarizer) Translate(ctx context.Context, summary model.Summary, code string) (model.Summary, error) {
	vars := map[string]any{
		"code":     code,
		"language": languageName(code),
	}

	if !summary.IsSectioned() {
		vars["summary"] = summary.Text
		reply, err := s.generate(ctx, translatePlainTemplate, vars)
		if err != nil {
			return model.Summary{}, fmt.Errorf("translate: %w", err)
		}
		return model.PlainSummary(stripFences(reply)), nil
	}

	payload, err := encodeSections(summary.Sections)
	if err != nil {
		return model.Summary{}, fmt.Errorf("translate: %w", err)
	}
	vars["summary"] = payload
	reply, err := s.generate(ctx, translateSectionedTemplate, vars)
	if err != nil {
		return model.Summary{}, fmt.Errorf("translate: %w", err)
	}

	translated := parseTranslatedSections(reply)
	if !translated.IsSectioned() {
		logger.Warnf("Translation to %s returned plain text for a sectioned summary", code)
	}
	return translated, nil
}

func (s *Summarizer) generate(ctx context.Context, tpl prompt.ChatTemplate, vars map[string]any) (string, error) {
	messages, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	msg, err := s.chat.Generate(ctx, messages)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(msg.Content)
	if reply == "" {
		return "", llm.ErrEmptyReply
	}
	return reply, nil
}

func languageName(code string) string {
	for _, l := range model.Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
