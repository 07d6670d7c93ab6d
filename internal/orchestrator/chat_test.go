package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fashbot/fashbot/internal/assets"
	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/config"
	"github.com/fashbot/fashbot/internal/localgen"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T, providers config.ProviderConfig) *Orchestrator {
	t.Helper()
	store, err := assets.NewStore(t.TempDir())
	require.NoError(t, err)
	return New(catalog.New(providers), localgen.NewScriptRunner("python3"), store)
}

func geminiTextBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	})
	return string(b)
}

func helloHistory() []models.ConversationMessage {
	return []models.ConversationMessage{{Role: models.RoleUser, Content: "hello"}}
}

func TestChatPrimary_FirstSuccessWins(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.Write([]byte(geminiTextBody("Halo!")))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: srv.URL})

	result, err := o.ChatPrimary(context.Background(), "FashBot-GM-VRS-25F", helloHistory(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.KindText, result.Kind)
	assert.Equal(t, "Halo!", result.Value)
	assert.EqualValues(t, 1, calls, "first success must stop the sweep")
}

func TestChatPrimary_404AdvancesToNextCandidate(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if len(paths) == 1 {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"model not found"}}`))
			return
		}
		w.Write([]byte(geminiTextBody("dari kandidat kedua")))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: srv.URL})

	result, err := o.ChatPrimary(context.Background(), "FashBot-GM-VRS-25F", helloHistory(), nil)
	require.NoError(t, err)
	assert.Equal(t, "dari kandidat kedua", result.Value)
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "gemini-2.0-flash")
	assert.Contains(t, paths[1], "gemini-1.5-flash")
}

func TestChatPrimary_NonRetryableStopsSweep(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: srv.URL})

	_, err := o.ChatPrimary(context.Background(), "", helloHistory(), nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls, "a fatal failure must abort the sweep at the failing candidate")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.Status)
	assert.Contains(t, provErr.Details, "quota exceeded")
}

func TestChatPrimary_AllCandidatesExhausted(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`model is not supported`))
	}))
	defer srv.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: srv.URL})

	_, err := o.ChatPrimary(context.Background(), "FashBot-GM-VRS-25F", helloHistory(), nil)
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusNotFound, provErr.Status)

	// Both API versions sweep every model candidate.
	candidates := catalog.ExpandModelCandidates("gemini-2.0-flash")
	assert.Len(t, paths, len(candidates)*len(catalog.APIVersions()))
	for _, version := range catalog.APIVersions() {
		for _, model := range candidates {
			assert.Contains(t, paths, "/"+version+"/models/"+model+":generateContent")
		}
	}
}

func TestTriggersCrossProviderFallback(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"403", &ProviderError{Status: 403, Details: "PERMISSION_DENIED"}, true},
		{"service disabled text", &ProviderError{Status: 400, Details: "Generative Language API is disabled"}, true},
		{"not configured text", &ProviderError{Status: 500, Details: "API key is not configured"}, true},
		{"plain 500", &ProviderError{Status: 500, Details: "internal"}, false},
		{"404", &ProviderError{Status: 404, Details: "model not found"}, false},
		{"non-provider error", context.Canceled, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TriggersCrossProviderFallback(tc.err))
		})
	}
}

func TestChatFallback_OrderAndFirstSuccess(t *testing.T) {
	var openaiCalls, qwenCalls, anthropicCalls, falCalls int64

	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&openaiCalls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer openai.Close()

	qwen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&qwenCalls, 1)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "jawaban qwen"}}},
		})
	}))
	defer qwen.Close()

	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&anthropicCalls, 1)
		atomic.AddInt64(&falCalls, 1)
	}))
	defer sink.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{
		OpenAIAPIKey: "k", OpenAIEndpoint: openai.URL,
		QwenAPIKey: "k", QwenEndpoint: qwen.URL,
		AnthropicAPIKey: "k", AnthropicEndpoint: sink.URL,
		FalAPIKey: "k", FalEndpoint: sink.URL,
	})

	reply, provider, err := o.ChatFallback(context.Background(), helloHistory())
	require.NoError(t, err)
	assert.Equal(t, models.KindText, reply.Kind)
	assert.Equal(t, "jawaban qwen", reply.Value)
	assert.Equal(t, catalog.ProviderQwen, provider)

	assert.EqualValues(t, 1, openaiCalls, "openai is tried first")
	assert.EqualValues(t, 1, qwenCalls)
	assert.EqualValues(t, 0, anthropicCalls, "sweep must stop at first success")
	assert.EqualValues(t, 0, falCalls)
}

func TestChatFallback_AllFailListsTriedProviders(t *testing.T) {
	// No keys configured: every alternate fails before any network call.
	o := newTestOrchestrator(t, config.ProviderConfig{})

	_, _, err := o.ChatFallback(context.Background(), helloHistory())
	require.Error(t, err)

	var sweepErr *models.SweepError
	require.ErrorAs(t, err, &sweepErr)
	assert.Equal(t, catalog.ChatFallbackOrder(), sweepErr.Tried)
}
