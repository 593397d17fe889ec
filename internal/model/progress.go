package model

import "fmt"

// Stage 是一次提交或追问过程中的进度阶段（页面上的忙碌提示）
type Stage string

const (
	StageFetchingTitle      Stage = "fetching_title"
	StageFetchingTranscript Stage = "fetching_transcript"
	StageSummarizing        Stage = "summarizing"
	StageTranslating        Stage = "translating"
	StageAnswering          Stage = "answering"
	StageDone               Stage = "done"
)

// StageMessage 返回阶段对应的提示文本
func StageMessage(stage Stage, language string) string {
	switch stage {
	case StageFetchingTitle:
		return "🔍 Fetching video title..."
	case StageFetchingTranscript:
		return "🎙️ Fetching transcript..."
	case StageSummarizing:
		return "📝 Generating Summary..."
	case StageTranslating:
		return fmt.Sprintf("🌎 Translating Summary to %s...", language)
	case StageAnswering:
		return "🤔 Thinking..."
	case StageDone:
		return "✅ Done"
	default:
		return string(stage)
	}
}

type ProgressEvent struct {
	Stage     Stage  `json:"stage"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}
