package youtube

import "strings"

// ExtractVideoID 从 watch 链接或 youtu.be 短链中取出视频 ID，不校验 ID 格式
func ExtractVideoID(url string) (id string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			id, ok = "", false
		}
	}()

	switch {
	case strings.Contains(url, "youtube.com/watch?v="):
		_, rest, _ := strings.Cut(url, "v=")
		id, _, _ = strings.Cut(rest, "&")
	case strings.Contains(url, "youtu.be/"):
		_, rest, _ := strings.Cut(url, "youtu.be/")
		id, _, _ = strings.Cut(rest, "?")
	default:
		return "", false
	}

	if id == "" {
		return "", false
	}
	return id, true
}
