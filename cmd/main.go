package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-summarizer/internal/config"
	"yt-summarizer/internal/handler"
	"yt-summarizer/internal/llm"
	"yt-summarizer/internal/middleware"
	"yt-summarizer/internal/service"
	"yt-summarizer/internal/storage"
	"yt-summarizer/internal/summarizer"
	"yt-summarizer/internal/transcript"
	"yt-summarizer/internal/youtube"
	"yt-summarizer/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx := context.Background()

	store, err := newStorage(ctx, cfg.Storage, cfg.Session)
	if err != nil {
		logger.Fatalf("Failed to init storage: %v", err)
	}
	defer store.Close()

	titles, err := youtube.NewTitleFetcher(ctx, cfg.YouTube)
	if err != nil {
		logger.Fatalf("Failed to init YouTube client: %v", err)
	}
	if cfg.YouTube.APIKey == "" {
		logger.Warn("YOUR_YOUTUBE_API_KEY 未设置，视频标题将显示为提示文本")
	}
	if cfg.Transcript.ScraperAPIKey == "" {
		logger.Warn("SCRAPERAPI_KEY 未设置，字幕获取将失败")
	}
	transcripts := transcript.NewFetcher(cfg.Transcript)

	factory := llm.NewFactory(cfg.LLM)
	assistants := func(ctx context.Context, apiKey string) (service.Assistant, error) {
		s, err := summarizer.Open(ctx, factory, apiKey)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	logger.Infof("LLM provider: %s, model: %s", factory.Provider(), cfg.LLM.Model)

	// 初始化服务
	sessionService := service.NewSessionService(store, titles, transcripts, assistants, cfg.Session)
	if err := sessionService.StartCleanup(); err != nil {
		logger.Fatalf("Failed to schedule session cleanup: %v", err)
	}
	defer sessionService.StopCleanup()

	// 创建路由
	router := setupRouter(cfg, sessionService)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func newStorage(ctx context.Context, cfg config.StorageConfig, sessionCfg config.SessionConfig) (storage.Storage, error) {
	var store storage.Storage
	switch cfg.Type {
	case "redis":
		rs, err := storage.NewRedisStorage(cfg.RedisURL, cfg.KeyPrefix, sessionCfg.TTL)
		if err != nil {
			return nil, err
		}
		store = rs
	default:
		store = storage.NewMemoryStorage()
	}

	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	logger.Infof("Session storage: %s", cfg.Type)
	return store, nil
}

func setupRouter(cfg *config.Config, sessionService *service.SessionService) *gin.Engine {
	// 设置gin模式
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RateLimit(cfg.RateLimit))

	router.SetHTMLTemplate(handler.Templates())

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// 页面
	handler.NewPageHandler(sessionService, cfg.Session).RegisterRoutes(router)

	// API路由
	handler.NewSessionHandler(sessionService).RegisterRoutes(router.Group("/api"))

	return router
}
