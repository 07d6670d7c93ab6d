package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/localgen"
	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

const documentInstruction = "Generate a structured document for the following prompt. Return the document content in plain text or markdown. Prompt:\n"

// GenerateDocument sweeps the content-producing providers in order, then
// packages the first successful raw text into the requested container.
// Packaging failures count against the provider and the sweep continues.
func (o *Orchestrator) GenerateDocument(ctx context.Context, req models.DocumentRequest) (*models.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "document.sweep")
	defer span.End()

	preferPython := req.UsePython || strings.EqualFold(req.Engine, "python")
	format := req.Format
	if format == "" {
		format = localgen.GuessFormat(req.Prompt)
	}

	var tried []string
	errs := map[string]string{}

	for _, provider := range catalog.DocumentProviderOrder() {
		tried = append(tried, provider)
		text, err := o.tryDocumentText(ctx, provider, req.Prompt)
		if err != nil {
			errs[provider] = err.Error()
			log.Warn().Str("provider", provider).Err(err).Msg("document provider failed")
			continue
		}

		packed, packedProvider, err := o.packageText(ctx, text, format, provider, preferPython)
		if err != nil {
			errs["packager"] = err.Error()
			continue
		}

		span.SetAttributes(attribute.String("document.provider", packedProvider))
		return &models.GenerateResponse{
			Content:  packed.Value,
			Filename: packed.Filename,
			Mime:     packed.MimeType,
			Provider: packedProvider,
		}, nil
	}

	return nil, &models.SweepError{
		Message: "All providers failed to generate document",
		Tried:   tried,
		Errors:  errs,
	}
}

func (o *Orchestrator) tryDocumentText(ctx context.Context, provider, prompt string) (string, error) {
	switch provider {
	case catalog.ProviderGemini:
		body, err := o.geminiSweep(ctx, documentInstruction+prompt)
		if err != nil {
			return "", err
		}
		text, ok := normalize.GeminiText(body)
		if !ok {
			return "", fmt.Errorf("gemini did not return content")
		}
		return text, nil
	case catalog.ProviderOpenAI:
		return o.callOpenAIDocument(ctx, prompt)
	case catalog.ProviderQwen:
		return o.callQwenChat(ctx, prompt)
	case catalog.ProviderAnthropic:
		return o.callAnthropicComplete(ctx, prompt, 1200)
	default:
		return "", fmt.Errorf("unknown document provider %q", provider)
	}
}

// packageText converts raw text into the target container. When the caller
// asked for the python packager it runs first with a tight deadline; any
// failure there falls back silently to the built-in packagers.
func (o *Orchestrator) packageText(ctx context.Context, text, format, provider string, preferPython bool) (models.CanonicalResult, string, error) {
	if preferPython {
		result, err := o.scripts.RunPackager(ctx, packagerScript, text, format, packagerTimeout)
		if err == nil {
			return models.CanonicalResult{
				Kind:     models.KindDocumentDataURI,
				Value:    result.DataURI,
				MimeType: result.Mime,
				Filename: result.Filename,
			}, provider + "+python", nil
		}
		log.Debug().Err(err).Msg("python packager unavailable, using built-in packaging")
	}

	packed, err := localgen.PackageDocument(text, format)
	if err != nil {
		return models.CanonicalResult{}, "", err
	}
	if preferPython {
		provider += "+python"
	}
	return packed, provider, nil
}
