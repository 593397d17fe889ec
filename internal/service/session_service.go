package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-summarizer/internal/config"
	"yt-summarizer/internal/model"
	"yt-summarizer/internal/storage"
	"yt-summarizer/internal/youtube"
	"yt-summarizer/pkg/logger"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type TitleFetcher interface {
	VideoTitle(ctx context.Context, videoID string) string
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (model.Transcript, error)
}

// Assistant 封装摘要、追问与翻译三类模型调用
type Assistant interface {
	Summarize(ctx context.Context, text, title string) (model.Summary, error)
	Answer(ctx context.Context, question, title string) (model.Summary, error)
	Translate(ctx context.Context, summary model.Summary, code string) (model.Summary, error)
}

// AssistantFactory 用会话的 API Key 创建 Assistant
type AssistantFactory func(ctx context.Context, apiKey string) (Assistant, error)

// ProgressFunc 接收阶段变化（忙碌提示），可为 nil
type ProgressFunc func(stage model.Stage, message string)

// SubmitResult 是一次视频提交的结果；Ignored 表示链接无法识别，未做任何操作
type SubmitResult struct {
	Ignored bool
	VideoID string
	Title   string
	Summary *model.Summary
	Error   string
}

type FollowUpResult struct {
	Ignored bool
	Title   string
	Answer  *model.Summary
	Error   string
}

type SessionService struct {
	storage     storage.Storage
	titles      TitleFetcher
	transcripts TranscriptFetcher
	assistants  AssistantFactory
	config      config.SessionConfig
	locks       *keyedMutex
	cron        *cron.Cron
	now         func() time.Time
}

func NewSessionService(store storage.Storage, titles TitleFetcher, transcripts TranscriptFetcher,
	assistants AssistantFactory, cfg config.SessionConfig) *SessionService {
	return &SessionService{
		storage:     store,
		titles:      titles,
		transcripts: transcripts,
		assistants:  assistants,
		config:      cfg,
		locks:       newKeyedMutex(),
		now:         time.Now,
	}
}

// StartCleanup 按 cron 表达式定期清理过期会话
func (s *SessionService) StartCleanup() error {
	if s.config.CleanupSchedule == "" || s.config.TTL <= 0 {
		return nil
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(s.config.CleanupSchedule, func() {
		if _, err := s.CleanupExpired(context.Background()); err != nil {
			logger.Errorf("Failed to clean up expired sessions: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cleanup schedule %q: %w", s.config.CleanupSchedule, err)
	}

	s.cron = c
	c.Start()
	logger.Infof("Session cleanup scheduled: %s (ttl %s)", s.config.CleanupSchedule, s.config.TTL)
	return nil
}

func (s *SessionService) StopCleanup() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// CleanupExpired 删除超过 TTL 未活动的会话
func (s *SessionService) CleanupExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.config.TTL)
	removed, err := s.storage.DeleteExpired(ctx, cutoff)
	if err != nil {
		return removed, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	if removed > 0 {
		logger.Infof("Cleaned up %d expired sessions", removed)
	}
	return removed, nil
}

func (s *SessionService) CreateSession(ctx context.Context) (*model.Session, error) {
	session := model.NewSession(uuid.NewString(), s.now())
	if err := s.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logger.WithSession(session.ID).Info("Session created")
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.storage.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logger.WithSession(sessionID).Info("Session deleted")
	return nil
}

// update 在会话锁内加载、修改并保存会话
func (s *SessionService) update(ctx context.Context, sessionID string, fn func(*model.Session) error) (*model.Session, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *SessionService) save(ctx context.Context, session *model.Session) error {
	session.UpdatedAt = s.now()
	if err := s.storage.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// SetAPIKey 每个会话只能设置一次
func (s *SessionService) SetAPIKey(ctx context.Context, sessionID, apiKey string) (*model.Session, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	return s.update(ctx, sessionID, func(session *model.Session) error {
		if session.HasAPIKey() {
			return ErrAPIKeyAlreadySet
		}
		session.APIKey = apiKey
		if session.LastError == bannerAPIKeyMissing {
			session.LastError = ""
		}
		logger.WithSession(sessionID).Info("API key set")
		return nil
	})
}

func (s *SessionService) SetLanguage(ctx context.Context, sessionID, language string) (*model.Session, error) {
	if _, ok := model.LanguageCode(language); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, language)
	}
	return s.update(ctx, sessionID, func(session *model.Session) error {
		session.Language = language
		return nil
	})
}

// NewChat 只清空当前展示，历史保留
func (s *SessionService) NewChat(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.update(ctx, sessionID, func(session *model.Session) error {
		session.ClearDisplay()
		return nil
	})
}

// SelectHistory 直接展示已保存的摘要，不发起任何外部调用
func (s *SessionService) SelectHistory(ctx context.Context, sessionID, title string) (*model.Session, error) {
	return s.update(ctx, sessionID, func(session *model.Session) error {
		entry, ok := session.FindEntry(title)
		if !ok {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, title)
		}
		session.Display(entry)
		session.LastError = ""
		return nil
	})
}

func (s *SessionService) History(ctx context.Context, sessionID string) ([]model.ChatEntry, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.History, nil
}

func report(progress ProgressFunc, stage model.Stage, language string) {
	if progress != nil {
		progress(stage, model.StageMessage(stage, language))
	}
}

// SubmitVideo 依次获取标题、字幕，生成摘要并在需要时翻译，成功后写入历史并设为当前展示。
// 字幕或模型失败时结果中携带提示文本，会话中的历史与当前展示保持不变。
func (s *SessionService) SubmitVideo(ctx context.Context, sessionID, url string, progress ProgressFunc) (*SubmitResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	log := logger.WithSession(sessionID)

	videoID, ok := youtube.ExtractVideoID(url)
	if !ok {
		log.Debugf("Ignoring unrecognized URL %q", url)
		return &SubmitResult{Ignored: true}, nil
	}

	if !session.HasAPIKey() {
		session.LastError = bannerAPIKeyMissing
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return nil, ErrAPIKeyMissing
	}

	result := &SubmitResult{VideoID: videoID}
	fail := func(msg string) (*SubmitResult, error) {
		result.Error = msg
		session.LastError = msg
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return result, nil
	}

	report(progress, model.StageFetchingTitle, session.Language)
	result.Title = s.titles.VideoTitle(ctx, videoID)
	log.Infof("Submitting video %s (%q)", videoID, result.Title)

	report(progress, model.StageFetchingTranscript, session.Language)
	transcript, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		log.Warnf("Transcript unavailable for %s: %v", videoID, err)
		return fail(err.Error())
	}

	assistant, err := s.assistants(ctx, session.APIKey)
	if err != nil {
		return fail(describeLLMError("Summarization", err))
	}

	report(progress, model.StageSummarizing, session.Language)
	summary, err := assistant.Summarize(ctx, transcript.Render(), result.Title)
	if err != nil {
		log.Errorf("Summarization failed for %s: %v", videoID, err)
		return fail(describeLLMError("Summarization", err))
	}

	if session.Language != model.DefaultLanguage {
		code, ok := model.LanguageCode(session.Language)
		if !ok {
			return fail(fmt.Sprintf("⚠️ %v: %s", ErrUnknownLanguage, session.Language))
		}
		report(progress, model.StageTranslating, session.Language)
		summary, err = assistant.Translate(ctx, summary, code)
		if err != nil {
			log.Errorf("Translation to %s failed for %s: %v", code, videoID, err)
			return fail(describeLLMError("Translation", err))
		}
	}

	entry := model.ChatEntry{VideoTitle: result.Title, Summary: summary}
	session.Record(entry)
	session.Display(entry)
	session.LastError = ""
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	report(progress, model.StageDone, session.Language)
	result.Summary = session.CurrentSummary
	return result, nil
}

// FollowUp 回答关于当前视频的追问，结果只作为 Clarification 展示，不写入历史
func (s *SessionService) FollowUp(ctx context.Context, sessionID, question string, progress ProgressFunc) (*FollowUpResult, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	question = strings.TrimSpace(question)
	if !session.HasDisplay() || question == "" {
		return &FollowUpResult{Ignored: true}, nil
	}
	if !session.HasAPIKey() {
		return nil, ErrAPIKeyMissing
	}

	result := &FollowUpResult{Title: session.CurrentTitle}
	fail := func(msg string) (*FollowUpResult, error) {
		result.Error = msg
		session.LastError = msg
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return result, nil
	}

	assistant, err := s.assistants(ctx, session.APIKey)
	if err != nil {
		return fail(describeLLMError("Answer", err))
	}

	report(progress, model.StageAnswering, session.Language)
	answer, err := assistant.Answer(ctx, question, session.CurrentTitle)
	if err != nil {
		logger.WithSession(sessionID).Errorf("Follow-up failed: %v", err)
		return fail(describeLLMError("Answer", err))
	}

	session.Clarification = &answer
	session.LastError = ""
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	report(progress, model.StageDone, session.Language)

	result.Answer = &answer
	return result, nil
}

// IsNotFound 判断错误是否表示会话不存在
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrSessionNotFound)
}
