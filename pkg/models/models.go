// Package models defines the shared types of the FashBot generation gateway:
// conversation payloads, provider candidates, attempt outcomes, and the
// canonical results returned by every capability regardless of which provider
// produced them.
package models

import "fmt"

// ── Conversation ─────────────────────────────────────────────

// RoleUser and RoleAssistant are the only roles accepted from clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationMessage is a single turn of the chat history. The history is
// append-only from the caller's side; the orchestrator never mutates it.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Attachment is an inbound file carried by a single chat request. It lives
// only for the duration of that request: it is either inlined into the
// provider payload or summarized as text when the provider can't take it.
type Attachment struct {
	MimeType   string `json:"mimeType"`
	DataBase64 string `json:"dataBase64"`
}

// ── Provider sweep bookkeeping ───────────────────────────────

// ProviderCandidate is one concrete (provider, model, API version) triple the
// orchestrator may attempt. Candidates are generated per request by expanding
// a model alias; they are never persisted.
type ProviderCandidate struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	APIVersion string `json:"apiVersion,omitempty"`
}

func (c ProviderCandidate) String() string {
	if c.APIVersion == "" {
		return c.Provider + "/" + c.Model
	}
	return fmt.Sprintf("%s/%s@%s", c.Provider, c.Model, c.APIVersion)
}

// AttemptOutcome classifies a single provider attempt.
type AttemptOutcome string

const (
	OutcomeSuccess          AttemptOutcome = "success"
	OutcomeRetryableFailure AttemptOutcome = "retryableFailure"
	OutcomeFatalFailure     AttemptOutcome = "fatalFailure"
)

// AttemptResult records one attempt inside a sweep. It is consumed
// immediately to decide whether the sweep continues; only the last failure
// and the tried-provider list survive the loop.
type AttemptResult struct {
	Provider   string         `json:"provider"`
	Model      string         `json:"model"`
	Outcome    AttemptOutcome `json:"outcome"`
	HTTPStatus int            `json:"httpStatus,omitempty"`
	RawBody    string         `json:"rawBody,omitempty"`
}

// ── Canonical results ────────────────────────────────────────

// ResultKind enumerates the provider-agnostic result shapes.
type ResultKind string

const (
	KindText            ResultKind = "text"
	KindImageDataURI    ResultKind = "imageDataUri"
	KindDocumentDataURI ResultKind = "documentDataUri"
	KindVideoURI        ResultKind = "videoUri"
)

// CanonicalResult is the only representation that crosses back to the caller.
// It erases every provider-specific payload shape.
type CanonicalResult struct {
	Kind     ResultKind `json:"kind"`
	Value    string     `json:"value"`
	MimeType string     `json:"mimeType,omitempty"`
	Filename string     `json:"filename,omitempty"`
}

// ── Explanation ──────────────────────────────────────────────

// ExplanationSegment is a labelled slice of the reasoning trace shown next to
// a chat answer. Derived, never stored; recomputed per response.
type ExplanationSegment struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Detail     string  `json:"detail"`
	Confidence float64 `json:"confidence"`
}

// ── HTTP surface types ───────────────────────────────────────

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Model       string                `json:"model"`
	Messages    []ConversationMessage `json:"messages"`
	Attachments []Attachment          `json:"attachments,omitempty"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Message     string               `json:"message"`
	Explanation []ExplanationSegment `json:"explanation"`
	Provider    string               `json:"provider,omitempty"`
}

// ImageRequest is the body of POST /api/generate/image.
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size,omitempty"` // "WxH"
	Local  bool   `json:"local,omitempty"`
}

// DocumentRequest is the body of POST /api/generate/document.
type DocumentRequest struct {
	Prompt    string `json:"prompt"`
	Format    string `json:"format,omitempty"`
	Engine    string `json:"engine,omitempty"`
	UsePython bool   `json:"usePython,omitempty"`
}

// VideoRequest is the body of POST /api/generate/video.
type VideoRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateResponse is the success body shared by the image, document and
// video endpoints. Tried/Errors are populated on best-effort terminal tiers
// for observability.
type GenerateResponse struct {
	Content  string            `json:"content"`
	Provider string            `json:"provider"`
	Filename string            `json:"filename,omitempty"`
	Mime     string            `json:"mime,omitempty"`
	Saved    string            `json:"saved,omitempty"`
	Tried    []string          `json:"tried,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// SweepError is the structured terminal failure of a provider sweep: the
// ordered list of provider names attempted and the captured message per
// provider. It never drops diagnostic context.
type SweepError struct {
	Message string
	Tried   []string
	Errors  map[string]string
}

func (e *SweepError) Error() string {
	return fmt.Sprintf("%s (tried %v)", e.Message, e.Tried)
}
