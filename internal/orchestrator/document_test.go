package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/config"
	"github.com/fashbot/fashbot/internal/localgen"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIChatBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func TestGenerateDocument_GeminiDefaultDocx(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextBody("Laporan Penjualan\n\nRingkasan triwulan pertama.")))
	}))
	defer gemini.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: gemini.URL})

	resp, err := o.GenerateDocument(context.Background(), models.DocumentRequest{Prompt: "buat laporan penjualan"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, localgen.MimeDocx, resp.Mime)
	assert.Equal(t, "document.docx", resp.Filename)
	assert.True(t, strings.HasPrefix(resp.Content, "data:"+localgen.MimeDocx+";base64,"))
}

func TestGenerateDocument_FallsBackToOpenAI(t *testing.T) {
	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIChatBody("name,qty\nwidget,3")))
	}))
	defer openai.Close()

	// No Gemini key, so the first provider errors and the sweep moves on.
	o := newTestOrchestrator(t, config.ProviderConfig{OpenAIAPIKey: "k", OpenAIEndpoint: openai.URL})

	resp, err := o.GenerateDocument(context.Background(), models.DocumentRequest{Prompt: "inventory", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, localgen.MimeCSV, resp.Mime)
	assert.Equal(t, "spreadsheet.csv", resp.Filename)
}

func TestGenerateDocument_AllProvidersFail(t *testing.T) {
	o := newTestOrchestrator(t, config.ProviderConfig{})

	_, err := o.GenerateDocument(context.Background(), models.DocumentRequest{Prompt: "anything"})
	require.Error(t, err)

	var sweepErr *models.SweepError
	require.ErrorAs(t, err, &sweepErr)
	assert.Equal(t, catalog.DocumentProviderOrder(), sweepErr.Tried)
	assert.NotEmpty(t, sweepErr.Errors)
}

func TestGenerateDocument_PythonEngineSuffix(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiTextBody("isi dokumen")))
	}))
	defer gemini.Close()

	o := newTestOrchestrator(t, config.ProviderConfig{GeminiAPIKey: "k", GeminiEndpoint: gemini.URL})

	// The packager script does not exist here, so packaging falls back to the
	// built-in path but still reports the requested engine.
	resp, err := o.GenerateDocument(context.Background(), models.DocumentRequest{Prompt: "dokumen", Engine: "python"})
	require.NoError(t, err)
	assert.Equal(t, "gemini+python", resp.Provider)
	assert.Equal(t, localgen.MimeDocx, resp.Mime)
}
