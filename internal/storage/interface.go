package storage

import (
	"context"
	"time"

	"yt-summarizer/internal/model"
)

// Storage 保存会话状态；实现需并发安全，读写均为副本
type Storage interface {
	// 会话管理
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]*model.Session, error)

	// DeleteExpired 删除 UpdatedAt 早于 cutoff 的会话，返回删除数量
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)

	// 存储管理
	Init(ctx context.Context) error
	Close() error
}
