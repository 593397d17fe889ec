package model

import (
	"fmt"
	"strings"
)

type TranscriptLine struct {
	Start float64 `json:"start"`
	Text  string  `json:"text"`
}

// Transcript 按视频中出现的时间顺序排列
type Transcript []TranscriptLine

// Render 每行格式为 "[<start>s] <text>"，start 保留两位小数
func (t Transcript) Render() string {
	lines := make([]string, 0, len(t))
	for _, line := range t {
		lines = append(lines, fmt.Sprintf("[%.2fs] %s", line.Start, line.Text))
	}
	return strings.Join(lines, "\n")
}
