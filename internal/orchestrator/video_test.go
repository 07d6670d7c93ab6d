package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fashbot/fashbot/internal/config"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVideo_GeminiURLAnswer(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextBody("https://cdn.example.com/clip.mp4")))
	}))
	defer gemini.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: gemini.URL})

	resp, err := o.GenerateVideo(context.Background(), models.VideoRequest{Prompt: "a clip"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "https://cdn.example.com/clip.mp4", resp.Content)
}

func TestGenerateVideo_NonMediaFallsToFal(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextBody("I cannot generate videos.")))
	}))
	defer gemini.Close()

	fal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"output":[{"url":"https://cdn.fal.example/v.mp4"}]}`))
	}))
	defer fal.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{
		GeminiAPIKey: "k", GeminiEndpoint: gemini.URL,
		FalAPIKey: "k", FalEndpoint: fal.URL,
	})

	resp, err := o.GenerateVideo(context.Background(), models.VideoRequest{Prompt: "a clip"})
	require.NoError(t, err)
	assert.Equal(t, "fal.ai", resp.Provider)
	assert.Equal(t, "https://cdn.fal.example/v.mp4", resp.Content)
}

func TestGenerateVideo_AllFail(t *testing.T) {
	o := newTestOrchestrator(t, config.ProviderConfig{})

	_, err := o.GenerateVideo(context.Background(), models.VideoRequest{Prompt: "a clip"})
	require.Error(t, err)

	var sweepErr *models.SweepError
	require.ErrorAs(t, err, &sweepErr)
	assert.Equal(t, []string{"gemini", "fal.ai"}, sweepErr.Tried)
	assert.Len(t, sweepErr.Errors, 2)
}
