package model

import "time"

// ChatEntry 是一条历史记录，以视频标题为键
type ChatEntry struct {
	VideoTitle string  `json:"video_title"`
	Summary    Summary `json:"summary"`
}

// Session 保存一次交互会话的全部状态，不跨会话持久化
type Session struct {
	ID             string      `json:"id"`
	APIKey         string      `json:"api_key,omitempty"`
	Language       string      `json:"language"`
	History        []ChatEntry `json:"history"`
	CurrentTitle   string      `json:"current_title,omitempty"`
	CurrentSummary *Summary    `json:"current_summary,omitempty"`
	Clarification  *Summary    `json:"clarification,omitempty"`
	LastError      string      `json:"last_error,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Language:  DefaultLanguage,
		History:   make([]ChatEntry, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) HasAPIKey() bool {
	return s.APIKey != ""
}

// HasDisplay 表示当前是否有正在展示的摘要
func (s *Session) HasDisplay() bool {
	return s.CurrentSummary != nil
}

func (s *Session) FindEntry(title string) (ChatEntry, bool) {
	for _, e := range s.History {
		if e.VideoTitle == title {
			return e, true
		}
	}
	return ChatEntry{}, false
}

// Record 写入历史；标题已存在时原位覆盖，保留首次插入的位置
func (s *Session) Record(entry ChatEntry) {
	for i, e := range s.History {
		if e.VideoTitle == entry.VideoTitle {
			s.History[i] = entry
			return
		}
	}
	s.History = append(s.History, entry)
}

// Display 将给定条目设为当前展示内容，并清除上一次的追问回答
func (s *Session) Display(entry ChatEntry) {
	summary := entry.Summary.Clone()
	s.CurrentTitle = entry.VideoTitle
	s.CurrentSummary = &summary
	s.Clarification = nil
}

// ClearDisplay 只清空当前展示，不影响历史
func (s *Session) ClearDisplay() {
	s.CurrentTitle = ""
	s.CurrentSummary = nil
	s.Clarification = nil
	s.LastError = ""
}

func (s *Session) HistoryTitles() []string {
	titles := make([]string, 0, len(s.History))
	for _, e := range s.History {
		titles = append(titles, e.VideoTitle)
	}
	return titles
}

func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.History = make([]ChatEntry, len(s.History))
	for i, e := range s.History {
		out.History[i] = ChatEntry{VideoTitle: e.VideoTitle, Summary: e.Summary.Clone()}
	}
	if s.CurrentSummary != nil {
		cs := s.CurrentSummary.Clone()
		out.CurrentSummary = &cs
	}
	if s.Clarification != nil {
		cl := s.Clarification.Clone()
		out.Clarification = &cl
	}
	return &out
}
