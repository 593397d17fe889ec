package transcript

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"yt-summarizer/internal/model"

	"golang.org/x/net/html"
)

const playerResponseMarker = "ytInitialPlayerResponse"

// playerResponse 只保留需要的字段
type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer *struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" 为自动生成
}

func (p *playerResponse) tracks() []captionTrack {
	if p.Captions == nil || p.Captions.Renderer == nil {
		return nil
	}
	return p.Captions.Renderer.CaptionTracks
}

var errPlayerResponseMissing = errors.New("player response not found in watch page")

// extractPlayerResponse 遍历 HTML，找到包含 ytInitialPlayerResponse 的 script 并解码其中的 JSON
func extractPlayerResponse(r io.Reader) (*playerResponse, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var found *playerResponse
	var decodeErr error
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			text := n.FirstChild.Data
			if idx := strings.Index(text, playerResponseMarker); idx >= 0 {
				pr, err := decodePlayerResponse(text[idx:])
				if err == nil {
					found = pr
					return
				}
				decodeErr = err
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if found != nil {
		return found, nil
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return nil, errPlayerResponseMissing
}

// decodePlayerResponse 从 "ytInitialPlayerResponse = {...};" 中解出第一个 JSON 对象
func decodePlayerResponse(s string) (*playerResponse, error) {
	start := strings.Index(s, "{")
	if start < 0 {
		return nil, errPlayerResponseMissing
	}
	var pr playerResponse
	if err := json.NewDecoder(strings.NewReader(s[start:])).Decode(&pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// pickTrack 在偏好语言中优先选择人工字幕，其次自动生成字幕
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	return captionTrack{}, false
}

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

var tagRE = regexp.MustCompile(`<[^>]*>`)

// parseTimedText 解析 timedtext XML，去掉空行与内嵌标签
func parseTimedText(r io.Reader) (model.Transcript, error) {
	var tt timedText
	if err := xml.NewDecoder(r).Decode(&tt); err != nil {
		return nil, err
	}

	out := make(model.Transcript, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.TrimSpace(tagRE.ReplaceAllString(html.UnescapeString(line.Text), ""))
		if text == "" {
			continue
		}
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil {
			start = 0
		}
		out = append(out, model.TranscriptLine{Start: start, Text: text})
	}
	return out, nil
}
