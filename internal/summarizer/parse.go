package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"yt-summarizer/internal/model"
)

// stripFences 去掉模型常加的 ```json ... ``` 包裹
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// 第一行是语言标记（json、JSON 或为空）
		if !strings.ContainsAny(s[:nl], "{[") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseSummary 解析模型输出：整段回复是 JSON 对象时为分节摘要（保持键顺序），其余一律为纯文本
func ParseSummary(raw string) model.Summary {
	text := stripFences(raw)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		if sections, err := decodeSections(text); err == nil && len(sections) > 0 {
			return model.SectionedSummary(sections)
		}
	}
	return model.PlainSummary(text)
}

// parseTranslatedSections 用于分节摘要的翻译结果：请求本身是 JSON 对象，
// 回复带前后说明文字时取第一个 { 到最后一个 } 之间的对象
func parseTranslatedSections(raw string) model.Summary {
	if summary := ParseSummary(raw); summary.IsSectioned() {
		return summary
	}

	text := stripFences(raw)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		if sections, err := decodeSections(text[start : end+1]); err == nil && len(sections) > 0 {
			return model.SectionedSummary(sections)
		}
	}
	return model.PlainSummary(text)
}

var errNotObject = errors.New("not a JSON object")

// decodeSections 逐 token 读取顶层对象以保留键顺序
func decodeSections(s string) ([]model.Section, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var sections []model.Section
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errNotObject
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		body, err := sectionBody(raw)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", key, err)
		}
		sections = append(sections, model.Section{Heading: key, Body: body})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return sections, nil
}

// sectionBody 支持字符串、字符串数组、嵌套对象与标量
func sectionBody(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return strings.TrimSpace(s), err
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return "", err
		}
		lines := make([]string, 0, len(items))
		for _, item := range items {
			line, err := sectionBody(item)
			if err != nil {
				return "", err
			}
			if line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n"), nil
	case '{':
		nested, err := decodeSections(string(raw))
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(nested))
		for _, sec := range nested {
			lines = append(lines, sec.Heading+": "+sec.Body)
		}
		return strings.Join(lines, "\n"), nil
	case 'n':
		return "", nil
	default:
		return string(raw), nil
	}
}

// encodeSections 按顺序序列化为 JSON 对象，供翻译时发送
func encodeSections(sections []model.Section) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, sec := range sections {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(sec.Heading)
		if err != nil {
			return "", err
		}
		v, err := json.Marshal(sec.Body)
		if err != nil {
			return "", err
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteByte('}')
	return b.String(), nil
}
