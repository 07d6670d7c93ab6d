package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/httpclient"
	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
)

// ── Gemini (primary) ─────────────────────────────────────────

type geminiContent struct {
	Role  string                 `json:"role"`
	Parts []normalize.GeminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

var chatGenerationConfig = geminiGenerationConfig{
	Temperature:     0.65,
	TopP:            0.9,
	TopK:            32,
	MaxOutputTokens: 2048,
}

var generateGenerationConfig = geminiGenerationConfig{
	Temperature:     0.7,
	MaxOutputTokens: 1600,
}

// buildGeminiContents converts the conversation history into Gemini's
// role/parts shape and inlines attachments into the last user turn.
// Image, audio and video attachments ride as inlineData; anything else is
// summarized as a text part.
func buildGeminiContents(messages []models.ConversationMessage, attachments []models.Attachment) []geminiContent {
	contents := make([]geminiContent, len(messages))
	for i, m := range messages {
		role := "model"
		if m.Role == models.RoleUser {
			role = "user"
		}
		contents[i] = geminiContent{Role: role, Parts: []normalize.GeminiPart{{Text: m.Content}}}
	}

	if len(attachments) == 0 {
		return contents
	}

	lastUser := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			lastUser = i
			break
		}
	}
	if lastUser == -1 {
		return contents
	}

	for _, att := range attachments {
		supported := strings.HasPrefix(att.MimeType, "image/") ||
			strings.HasPrefix(att.MimeType, "audio/") ||
			strings.HasPrefix(att.MimeType, "video/")
		if supported && att.DataBase64 != "" {
			part := normalize.GeminiPart{}
			part.InlineData = &struct {
				MimeType string `json:"mimeType"`
				Data     string `json:"data"`
			}{MimeType: att.MimeType, Data: att.DataBase64}
			contents[lastUser].Parts = append(contents[lastUser].Parts, part)
		} else {
			approxBytes := len(att.DataBase64) * 3 / 4
			contents[lastUser].Parts = append(contents[lastUser].Parts, normalize.GeminiPart{
				Text: fmt.Sprintf("Attachment: %s (%d bytes)", att.MimeType, approxBytes),
			})
		}
	}
	return contents
}

func (o *Orchestrator) callGemini(ctx context.Context, version, model string, contents []geminiContent, genCfg geminiGenerationConfig) (*httpclient.Result, error) {
	p := o.catalog.Providers()
	if p.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini key not configured")
	}
	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		p.GeminiEndpoint, version, model, url.QueryEscape(p.GeminiAPIKey))
	return o.client.PostJSON(ctx, endpoint, nil, geminiRequest{
		Contents:         contents,
		GenerationConfig: genCfg,
	})
}

// geminiSweep runs the version × model candidate sweep for a prompt-only
// request (image/document/video generation) and returns the first successful
// raw body.
func (o *Orchestrator) geminiSweep(ctx context.Context, prompt string) ([]byte, error) {
	contents := []geminiContent{{Role: "user", Parts: []normalize.GeminiPart{{Text: prompt}}}}
	return o.sweepGemini(ctx, catalog.CandidateSweep(""), contents, generateGenerationConfig)
}

// ── OpenAI ───────────────────────────────────────────────────

type openAIChatRequest struct {
	Model       string                `json:"model"`
	Messages    []openAIChatMessage   `json:"messages"`
	Temperature float64               `json:"temperature"`
	MaxTokens   int                   `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *Orchestrator) callOpenAIChat(ctx context.Context, prompt string) (string, error) {
	p := o.catalog.Providers()
	if p.OpenAIAPIKey == "" {
		return "", fmt.Errorf("OpenAI key not configured")
	}
	res, err := o.client.PostJSON(ctx, p.OpenAIEndpoint+"/v1/chat/completions",
		bearer(p.OpenAIAPIKey), openAIChatRequest{
			Model:       "gpt-4o-mini",
			Messages:    []openAIChatMessage{{Role: "user", Content: prompt}},
			Temperature: 0.6,
			MaxTokens:   1400,
		})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("OpenAI failed %d", res.Status)
	}
	text, ok := normalize.CompletionText(res.Body)
	if !ok {
		return "", fmt.Errorf("OpenAI returned no content")
	}
	return text, nil
}

func (o *Orchestrator) callOpenAIDocument(ctx context.Context, prompt string) (string, error) {
	p := o.catalog.Providers()
	if p.OpenAIAPIKey == "" {
		return "", fmt.Errorf("OpenAI key not configured")
	}
	res, err := o.client.PostJSON(ctx, p.OpenAIEndpoint+"/v1/chat/completions",
		bearer(p.OpenAIAPIKey), openAIChatRequest{
			Model: "gpt-4o-mini",
			Messages: []openAIChatMessage{
				{Role: "system", Content: "You are a helpful assistant that generates structured documents. Output in markdown when appropriate."},
				{Role: "user", Content: prompt},
			},
			Temperature: 0.7,
			MaxTokens:   1600,
		})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("OpenAI failed %d", res.Status)
	}
	text, ok := normalize.CompletionText(res.Body)
	if !ok {
		return "", fmt.Errorf("OpenAI did not return a document")
	}
	return text, nil
}

type openAIImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	N              int    `json:"n"`
	ResponseFormat string `json:"response_format"`
}

func (o *Orchestrator) callOpenAIImage(ctx context.Context, prompt, size string) (string, error) {
	p := o.catalog.Providers()
	if p.OpenAIAPIKey == "" {
		return "", fmt.Errorf("OpenAI key not configured")
	}
	if size == "" {
		size = "1024x1024"
	}
	res, err := o.client.PostJSON(ctx, p.OpenAIEndpoint+"/v1/images/generations",
		bearer(p.OpenAIAPIKey), openAIImageRequest{
			Model:          "gpt-image-1",
			Prompt:         prompt,
			Size:           size,
			N:              1,
			ResponseFormat: "b64_json",
		})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("OpenAI failed %d", res.Status)
	}
	var body struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := res.DecodeJSON(&body); err != nil {
		return "", err
	}
	if len(body.Data) == 0 || body.Data[0].B64JSON == "" {
		return "", fmt.Errorf("OpenAI did not return image data")
	}
	return "data:image/png;base64," + body.Data[0].B64JSON, nil
}

// ── Qwen ─────────────────────────────────────────────────────

type qwenChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

func (o *Orchestrator) callQwenChat(ctx context.Context, prompt string) (string, error) {
	p := o.catalog.Providers()
	if p.QwenAPIKey == "" {
		return "", fmt.Errorf("Qwen key not configured")
	}
	res, err := o.client.PostJSON(ctx, p.QwenEndpoint+"/v1/chat/completions",
		bearer(p.QwenAPIKey), qwenChatRequest{
			Model:       "qwen-quasi",
			Messages:    []openAIChatMessage{{Role: "user", Content: prompt}},
			Temperature: 0.7,
		})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("Qwen failed %d", res.Status)
	}
	text, ok := normalize.CompletionText(res.Body)
	if !ok {
		return "", fmt.Errorf("Qwen did not return content")
	}
	return text, nil
}

// ── Anthropic ────────────────────────────────────────────────

type anthropicCompleteRequest struct {
	Model             string  `json:"model"`
	Prompt            string  `json:"prompt"`
	MaxTokensToSample int     `json:"max_tokens_to_sample"`
	Temperature       float64 `json:"temperature"`
}

func (o *Orchestrator) callAnthropicComplete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	p := o.catalog.Providers()
	if p.AnthropicAPIKey == "" {
		return "", fmt.Errorf("Anthropic key not configured")
	}
	res, err := o.client.PostJSON(ctx, p.AnthropicEndpoint+"/v1/complete",
		bearer(p.AnthropicAPIKey), anthropicCompleteRequest{
			Model:             "claude-2.1",
			Prompt:            "\n\nHuman: " + prompt + "\n\nAssistant:",
			MaxTokensToSample: maxTokens,
			Temperature:       0.7,
		})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("Anthropic failed %d", res.Status)
	}
	text, ok := normalize.CompletionText(res.Body)
	if !ok {
		return "", fmt.Errorf("Anthropic did not return content")
	}
	return text, nil
}

// ── FAL ──────────────────────────────────────────────────────

type falRequest struct {
	Model       string `json:"model"`
	Instruction string `json:"instruction"`
}

func (o *Orchestrator) callFal(ctx context.Context, model, prompt string) (string, error) {
	p := o.catalog.Providers()
	if p.FalAPIKey == "" {
		return "", fmt.Errorf("FAL.ai key not configured")
	}
	res, err := o.client.PostJSON(ctx, p.FalEndpoint+"/generate",
		bearer(p.FalAPIKey), falRequest{Model: model, Instruction: prompt})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("FAL.ai failed %d", res.Status)
	}
	text, ok := normalize.CompletionText(res.Body)
	if !ok {
		return "", fmt.Errorf("FAL.ai returned no content")
	}
	return text, nil
}

// ── Unsplash ─────────────────────────────────────────────────

func (o *Orchestrator) unsplashSearch(ctx context.Context, query string) (string, error) {
	p := o.catalog.Providers()
	if p.UnsplashKey == "" {
		return "", fmt.Errorf("Unsplash key not configured")
	}
	q := url.QueryEscape(truncate(query, 200))
	res, err := o.client.Get(ctx, p.UnsplashEndpoint+"/search/photos?query="+q+"&per_page=1",
		map[string]string{"Authorization": "Client-ID " + p.UnsplashKey})
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("Unsplash failed %d", res.Status)
	}
	var body struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
				Full    string `json:"full"`
			} `json:"urls"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"results"`
	}
	if err := res.DecodeJSON(&body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 {
		return "", fmt.Errorf("Unsplash returned no results")
	}
	hit := body.Results[0]
	for _, u := range []string{hit.URLs.Regular, hit.URLs.Full, hit.Links.HTML} {
		if u != "" {
			return u, nil
		}
	}
	return "", fmt.Errorf("Unsplash result had no URL")
}

// fetchImageAsDataURI downloads image bytes and re-encodes them inline.
func (o *Orchestrator) fetchImageAsDataURI(ctx context.Context, imageURL string) (string, error) {
	res, err := o.client.Get(ctx, imageURL, nil)
	if err != nil {
		return "", err
	}
	if !res.OK {
		return "", fmt.Errorf("image fetch failed %d", res.Status)
	}
	mime := res.ContentType
	if mime == "" {
		mime = "image/jpeg"
	}
	return normalize.BuildDataURI(mime, res.Body), nil
}

func bearer(key string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + key}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
