package model

import "time"

// SessionResponse 是会话的对外视图，不包含 API Key
type SessionResponse struct {
	SessionID      string    `json:"session_id"`
	APIKeySet      bool      `json:"api_key_set"`
	Language       string    `json:"language"`
	LanguageCode   string    `json:"language_code"`
	CurrentTitle   string    `json:"current_title,omitempty"`
	CurrentSummary *Summary  `json:"current_summary,omitempty"`
	Clarification  *Summary  `json:"clarification,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	History        []string  `json:"history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewSessionResponse(s *Session) SessionResponse {
	code, _ := LanguageCode(s.Language)
	return SessionResponse{
		SessionID:      s.ID,
		APIKeySet:      s.HasAPIKey(),
		Language:       s.Language,
		LanguageCode:   code,
		CurrentTitle:   s.CurrentTitle,
		CurrentSummary: s.CurrentSummary,
		Clarification:  s.Clarification,
		LastError:      s.LastError,
		History:        s.HistoryTitles(),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// SummarizeResponse 对应一次视频提交的结果
type SummarizeResponse struct {
	SessionID string   `json:"session_id"`
	Ignored   bool     `json:"ignored,omitempty"`
	VideoID   string   `json:"video_id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Summary   *Summary `json:"summary,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type FollowUpResponse struct {
	SessionID     string   `json:"session_id"`
	Ignored       bool     `json:"ignored,omitempty"`
	Title         string   `json:"title,omitempty"`
	Clarification *Summary `json:"clarification,omitempty"`
	Error         string   `json:"error,omitempty"`
}

type HistoryResponse struct {
	SessionID string      `json:"session_id"`
	Entries   []ChatEntry `json:"entries"`
}
