package model

import "strings"

type SummaryKind string

const (
	SummaryPlain     SummaryKind = "plain"
	SummarySectioned SummaryKind = "sectioned"
)

// Section 是结构化摘要中的一节，顺序即展示顺序
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Summary 为 plain 或 sectioned 两种形态之一，创建后不再修改
type Summary struct {
	Kind     SummaryKind `json:"kind"`
	Text     string      `json:"text,omitempty"`
	Sections []Section   `json:"sections,omitempty"`
}

func PlainSummary(text string) Summary {
	return Summary{Kind: SummaryPlain, Text: text}
}

func SectionedSummary(sections []Section) Summary {
	cp := make([]Section, len(sections))
	copy(cp, sections)
	return Summary{Kind: SummarySectioned, Sections: cp}
}

func (s Summary) IsSectioned() bool {
	return s.Kind == SummarySectioned
}

// String 将摘要渲染为纯文本（标题与正文之间空一行）
func (s Summary) String() string {
	if !s.IsSectioned() {
		return s.Text
	}
	var b strings.Builder
	for i, sec := range s.Sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sec.Heading)
		b.WriteString("\n")
		b.WriteString(sec.Body)
	}
	return b.String()
}

// Clone 深拷贝，避免存储层与调用方共享 Sections
func (s Summary) Clone() Summary {
	if s.Sections == nil {
		return s
	}
	out := s
	out.Sections = make([]Section, len(s.Sections))
	copy(out.Sections, s.Sections)
	return out
}
