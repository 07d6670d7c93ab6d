// Package normalize extracts canonical results out of the idiosyncratic
// payload shapes each provider returns.
package normalize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/fashbot/fashbot/pkg/models"
)

var (
	imageDataURIRe = regexp.MustCompile(`^data:image/`)
	imageURLRe     = regexp.MustCompile(`(?i)^https?://.+\.(png|jpg|jpeg|webp|gif)(\?|$)`)
	videoDataURIRe = regexp.MustCompile(`^data:video/`)
	videoURLRe     = regexp.MustCompile(`(?i)^https?://.+\.(mp4|webm|mov)(\?|$)`)
	bareBase64Re   = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)
)

// completionEnvelope covers the known completion shapes across the
// OpenAI-compatible, Qwen, Anthropic and FAL response families.
type completionEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
	Completion string `json:"completion"`
	Text       string `json:"text"`
	Result     string `json:"result"`
	Output     []struct {
		Text    string `json:"text"`
		Content string `json:"content"`
		URL     string `json:"url"`
		B64     string `json:"b64"`
	} `json:"output"`
}

// CompletionText locates the first non-empty completion text among the known
// provider shapes and returns it trimmed.
func CompletionText(body []byte) (string, bool) {
	var env completionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false
	}

	candidates := []string{}
	if len(env.Choices) > 0 {
		candidates = append(candidates, env.Choices[0].Message.Content, env.Choices[0].Text)
	}
	candidates = append(candidates, env.Completion, env.Text, env.Result)
	if len(env.Output) > 0 {
		candidates = append(candidates, env.Output[0].Text, env.Output[0].Content, env.Output[0].URL)
	}

	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s, true
		}
	}
	return "", false
}

// GeminiResponse is the nested candidates/content/parts shape of the primary
// provider.
type GeminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []GeminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiPart is one part of a Gemini candidate: either text or inline bytes.
type GeminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

// GeminiText joins the text parts of the first candidate, newline-separated
// and trimmed.
func GeminiText(body []byte) (string, bool) {
	var resp GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", false
	}
	if len(resp.Candidates) == 0 {
		return "", false
	}
	parts := resp.Candidates[0].Content.Parts
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		texts = append(texts, p.Text)
	}
	joined := strings.TrimSpace(strings.Join(texts, "\n"))
	return joined, joined != ""
}

// FirstGeminiPart returns the first part of the first candidate, if any.
func FirstGeminiPart(body []byte) (GeminiPart, bool) {
	var resp GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return GeminiPart{}, false
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return GeminiPart{}, false
	}
	return resp.Candidates[0].Content.Parts[0], true
}

// IsImagePayload reports whether a provider's text answer is actually image
// media: an image data URI or an https URL with a known image extension.
// Conversational refusals fail this guard and must be recorded as errors.
func IsImagePayload(s string) bool {
	s = strings.TrimSpace(s)
	return imageDataURIRe.MatchString(s) || imageURLRe.MatchString(s)
}

// IsVideoPayload is the video variant of the media guard.
func IsVideoPayload(s string) bool {
	s = strings.TrimSpace(s)
	return videoDataURIRe.MatchString(s) || videoURLRe.MatchString(s)
}

// IsBareBase64 reports whether s looks like a raw base64 blob with no data
// URI framing, as some providers return for image bytes.
func IsBareBase64(s string) bool {
	return s != "" && bareBase64Re.MatchString(s)
}

// TextResult wraps trimmed completion text as a canonical result.
func TextResult(text string) models.CanonicalResult {
	return models.CanonicalResult{Kind: models.KindText, Value: strings.TrimSpace(text)}
}

// ImageResult wraps an image payload (data URI or URL) as a canonical result.
func ImageResult(value, mime string) models.CanonicalResult {
	return models.CanonicalResult{Kind: models.KindImageDataURI, Value: value, MimeType: mime}
}

// VideoResult wraps a video payload (data URI or URL) as a canonical result.
func VideoResult(value string) models.CanonicalResult {
	return models.CanonicalResult{Kind: models.KindVideoURI, Value: value}
}

// ── Data URIs ────────────────────────────────────────────────

// DataURI is a parsed data: URI.
type DataURI struct {
	MimeType string
	Base64   bool
	// Payload is the raw portion after the comma, still encoded.
	Payload string
}

// ParseDataURI splits a data URI into its MIME declaration and payload.
func ParseDataURI(s string) (*DataURI, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URI")
	}
	d := &DataURI{Payload: payload}
	for i, f := range strings.Split(meta, ";") {
		if i == 0 {
			d.MimeType = f
			continue
		}
		if f == "base64" {
			d.Base64 = true
		}
	}
	return d, nil
}

// Bytes decodes the payload: base64 when declared, percent-decoding
// otherwise (SVG data URIs are commonly URI-encoded rather than base64).
func (d *DataURI) Bytes() ([]byte, error) {
	if d.Base64 {
		raw, err := base64.StdEncoding.DecodeString(d.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		return raw, nil
	}
	decoded, err := url.PathUnescape(d.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return []byte(decoded), nil
}

// BuildDataURI encodes raw bytes as a base64 data URI with the given MIME.
func BuildDataURI(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
