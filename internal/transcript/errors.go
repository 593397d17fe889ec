package transcript

import "fmt"

// Kind 区分字幕获取失败的原因
type Kind int

const (
	KindProxyKeyMissing Kind = iota + 1
	KindDisabled
	KindNotFound
	KindUnavailable
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindProxyKeyMissing:
		return "proxy_key_missing"
	case KindDisabled:
		return "disabled"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "other"
	}
}

// Error 是 Fetch 返回的唯一错误类型，Error() 即展示给用户的提示文本
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindProxyKeyMissing:
		return "⚠️ ScraperAPI key missing. Set SCRAPERAPI_KEY in the environment."
	case KindDisabled:
		return "⚠️ Transcripts are disabled for this video."
	case KindNotFound:
		return "⚠️ No transcript available for this video."
	case KindUnavailable:
		return "⚠️ This video is unavailable."
	default:
		return fmt.Sprintf("⚠️ Error fetching transcript: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}
