package model

type SetAPIKeyRequest struct {
	APIKey string `json:"api_key" form:"api_key" binding:"required"`
}

type SetLanguageRequest struct {
	Language string `json:"language" form:"language" binding:"required"`
}

type SummarizeRequest struct {
	URL string `json:"url" form:"url" binding:"required"`
}

// FollowUpRequest 允许空问题，空问题不会触发任何操作
type FollowUpRequest struct {
	Question string `json:"question" form:"question"`
}

type SelectHistoryRequest struct {
	Title string `json:"title" form:"title" binding:"required"`
}
