package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"yt-summarizer/internal/model"
	"yt-summarizer/internal/service"
	"yt-summarizer/internal/utils"
	"yt-summarizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *service.SessionService
	heartbeat      time.Duration
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		heartbeat:      15 * time.Second,
	}
}

// respondError 将服务层错误映射为 HTTP 状态码
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case service.IsNotFound(err), errors.Is(err, service.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrAPIKeyAlreadySet):
		status = http.StatusConflict
	case errors.Is(err, service.ErrAPIKeyMissing):
		status = http.StatusPreconditionFailed
	case errors.Is(err, service.ErrEmptyAPIKey), errors.Is(err, service.ErrUnknownLanguage):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Errorf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *SessionHandler) Languages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default":   model.DefaultLanguage,
		"languages": model.Languages,
	})
}

func (h *SessionHandler) CreateSession(c *gin.Context) {
	session, err := h.sessionService.CreateSession(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]model.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, model.NewSessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.DeleteSession(c.Request.Context(), c.Param("session_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted successfully"})
}

func (h *SessionHandler) SetAPIKey(c *gin.Context) {
	var req model.SetAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.SetAPIKey(c.Request.Context(), c.Param("session_id"), req.APIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) SetLanguage(c *gin.Context) {
	var req model.SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.SetLanguage(c.Request.Context(), c.Param("session_id"), req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) Summarize(c *gin.Context) {
	var req model.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("session_id")
	result, err := h.sessionService.SubmitVideo(c.Request.Context(), sessionID, req.URL, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummarizeResponse(sessionID, result))
}

// SummarizeStream 以 SSE 推送各阶段进度，最后发送 result 事件
func (h *SessionHandler) SummarizeStream(c *gin.Context) {
	var req model.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("session_id")
	sseWriter := utils.NewSSEWriter(c.Writer)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// 心跳，防止代理因空闲断开连接；handler 返回前必须等它退出
	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := sseWriter.WriteJSON("heartbeat", gin.H{"timestamp": time.Now().Unix()}); err != nil {
					logger.Warnf("心跳发送失败: %v", err)
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	progress := func(stage model.Stage, message string) {
		event := model.ProgressEvent{Stage: stage, Message: message, Timestamp: time.Now().Unix()}
		if err := sseWriter.WriteJSON("progress", event); err != nil {
			logger.WithSession(sessionID).Warnf("Failed to write progress event: %v", err)
		}
	}

	result, err := h.sessionService.SubmitVideo(ctx, sessionID, req.URL, progress)
	cancel()
	<-heartbeatDone
	if err != nil {
		sseWriter.WriteJSON("error", gin.H{"error": err.Error()})
		sseWriter.Close()
		return
	}

	if err := sseWriter.WriteJSON("result", newSummarizeResponse(sessionID, result)); err != nil {
		logger.WithSession(sessionID).Errorf("Failed to write SSE: %v", err)
		return
	}
	sseWriter.Close()
}

func newSummarizeResponse(sessionID string, result *service.SubmitResult) model.SummarizeResponse {
	return model.SummarizeResponse{
		SessionID: sessionID,
		Ignored:   result.Ignored,
		VideoID:   result.VideoID,
		Title:     result.Title,
		Summary:   result.Summary,
		Error:     result.Error,
	}
}

func (h *SessionHandler) FollowUp(c *gin.Context) {
	var req model.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := c.Param("session_id")
	result, err := h.sessionService.FollowUp(c.Request.Context(), sessionID, req.Question, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.FollowUpResponse{
		SessionID:     sessionID,
		Ignored:       result.Ignored,
		Title:         result.Title,
		Clarification: result.Answer,
		Error:         result.Error,
	})
}

func (h *SessionHandler) History(c *gin.Context) {
	sessionID := c.Param("session_id")
	entries, err := h.sessionService.History(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.HistoryResponse{SessionID: sessionID, Entries: entries})
}

func (h *SessionHandler) SelectHistory(c *gin.Context) {
	var req model.SelectHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.SelectHistory(c.Request.Context(), c.Param("session_id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

func (h *SessionHandler) NewChat(c *gin.Context) {
	session, err := h.sessionService.NewChat(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSessionResponse(session))
}

// RegisterRoutes 注册 /api 下的会话接口
func (h *SessionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/languages", h.Languages)
	api.GET("/sessions", h.ListSessions)
	api.POST("/session", h.CreateSession)

	session := api.Group("/session/:session_id")
	{
		session.GET("", h.GetSession)
		session.DELETE("", h.DeleteSession)
		session.POST("/api-key", h.SetAPIKey)
		session.PUT("/language", h.SetLanguage)
		session.POST("/summarize", h.Summarize)
		session.POST("/summarize/stream", h.SummarizeStream)
		session.POST("/followup", h.FollowUp)
		session.GET("/history", h.History)
		session.POST("/history/select", h.SelectHistory)
		session.POST("/new-chat", h.NewChat)
	}
}
