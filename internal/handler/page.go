package handler

import (
	"embed"
	"html/template"
	"net/http"

	"yt-summarizer/internal/config"
	"yt-summarizer/internal/model"
	"yt-summarizer/internal/service"
	"yt-summarizer/pkg/logger"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates 解析内嵌的页面模板，供 gin 的 SetHTMLTemplate 使用
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type pageData struct {
	Session   model.SessionResponse
	Languages []model.Language
}

// PageHandler 提供单页界面，会话通过 cookie 绑定
type PageHandler struct {
	sessionService *service.SessionService
	config         config.SessionConfig
}

func NewPageHandler(sessionService *service.SessionService, cfg config.SessionConfig) *PageHandler {
	return &PageHandler{
		sessionService: sessionService,
		config:         cfg,
	}
}

// session 读取 cookie 中的会话，不存在或已过期时新建
func (h *PageHandler) session(c *gin.Context) (*model.Session, error) {
	ctx := c.Request.Context()
	if id, err := c.Cookie(h.config.CookieName); err == nil && id != "" {
		session, err := h.sessionService.GetSession(ctx, id)
		if err == nil {
			return session, nil
		}
		if !service.IsNotFound(err) {
			return nil, err
		}
	}

	session, err := h.sessionService.CreateSession(ctx)
	if err != nil {
		return nil, err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.CookieName, session.ID, int(h.config.TTL.Seconds()), "/", "", false, true)
	return session, nil
}

func (h *PageHandler) Index(c *gin.Context) {
	session, err := h.session(c)
	if err != nil {
		logger.Errorf("Failed to load page session: %v", err)
		c.String(http.StatusInternalServerError, "session unavailable")
		return
	}

	c.HTML(http.StatusOK, "index.html", pageData{
		Session:   model.NewSessionResponse(session),
		Languages: model.Languages,
	})
}

// form 包装表单动作：解析会话、执行动作，然后重定向回首页
func (h *PageHandler) form(action func(c *gin.Context, sessionID string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.session(c)
		if err != nil {
			logger.Errorf("Failed to load page session: %v", err)
			c.String(http.StatusInternalServerError, "session unavailable")
			return
		}
		if err := action(c, session.ID); err != nil {
			logger.WithSession(session.ID).Warnf("Form action %s failed: %v", c.Request.URL.Path, err)
		}
		c.Redirect(http.StatusSeeOther, "/")
	}
}

func (h *PageHandler) setAPIKey(c *gin.Context, sessionID string) error {
	var req model.SetAPIKeyRequest
	if err := c.ShouldBind(&req); err != nil {
		return err
	}
	_, err := h.sessionService.SetAPIKey(c.Request.Context(), sessionID, req.APIKey)
	return err
}

func (h *PageHandler) setLanguage(c *gin.Context, sessionID string) error {
	var req model.SetLanguageRequest
	if err := c.ShouldBind(&req); err != nil {
		return err
	}
	_, err := h.sessionService.SetLanguage(c.Request.Context(), sessionID, req.Language)
	return err
}

func (h *PageHandler) summarize(c *gin.Context, sessionID string) error {
	var req model.SummarizeRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil
	}
	// 失败信息已写入会话横幅
	_, err := h.sessionService.SubmitVideo(c.Request.Context(), sessionID, req.URL, nil)
	return err
}

func (h *PageHandler) followUp(c *gin.Context, sessionID string) error {
	var req model.FollowUpRequest
	if err := c.ShouldBind(&req); err != nil {
		return err
	}
	_, err := h.sessionService.FollowUp(c.Request.Context(), sessionID, req.Question, nil)
	return err
}

func (h *PageHandler) selectHistory(c *gin.Context, sessionID string) error {
	var req model.SelectHistoryRequest
	if err := c.ShouldBind(&req); err != nil {
		return err
	}
	_, err := h.sessionService.SelectHistory(c.Request.Context(), sessionID, req.Title)
	return err
}

func (h *PageHandler) newChat(c *gin.Context, sessionID string) error {
	_, err := h.sessionService.NewChat(c.Request.Context(), sessionID)
	return err
}

func (h *PageHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Index)

	form := router.Group("/form")
	{
		form.POST("/api-key", h.form(h.setAPIKey))
		form.POST("/language", h.form(h.setLanguage))
		form.POST("/summarize", h.form(h.summarize))
		form.POST("/followup", h.form(h.followUp))
		form.POST("/history", h.form(h.selectHistory))
		form.POST("/new-chat", h.form(h.newChat))
	}
}
