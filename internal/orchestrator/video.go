package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// GenerateVideo sweeps the video-capable providers: the primary (accepting
// inline video bytes or a video URL/data-URI text answer), then FAL. There
// is no local tier for video.
func (o *Orchestrator) GenerateVideo(ctx context.Context, req models.VideoRequest) (*models.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "video.sweep")
	defer span.End()

	var tried []string
	errs := map[string]string{}

	tried = append(tried, catalog.ProviderGemini)
	if result, err := o.tryGeminiVideo(ctx, req.Prompt); err == nil {
		span.SetAttributes(attribute.String("video.provider", catalog.ProviderGemini))
		return &models.GenerateResponse{Content: result.Value, Provider: catalog.ProviderGemini}, nil
	} else {
		errs[catalog.ProviderGemini] = err.Error()
		log.Warn().Str("provider", catalog.ProviderGemini).Err(err).Msg("video provider failed")
	}

	tried = append(tried, catalog.ProviderFal)
	if result, err := o.tryFalVideo(ctx, req.Prompt); err == nil {
		span.SetAttributes(attribute.String("video.provider", catalog.ProviderFal))
		return &models.GenerateResponse{Content: result.Value, Provider: catalog.ProviderFal}, nil
	} else {
		errs[catalog.ProviderFal] = err.Error()
		log.Warn().Str("provider", catalog.ProviderFal).Err(err).Msg("video provider failed")
	}

	return nil, &models.SweepError{
		Message: "All providers failed to generate video",
		Tried:   tried,
		Errors:  errs,
	}
}

func (o *Orchestrator) tryGeminiVideo(ctx context.Context, prompt string) (models.CanonicalResult, error) {
	none := models.CanonicalResult{}
	body, err := o.geminiSweep(ctx,
		"Generate a short video or provide a link for the following prompt. If possible, return a URL to a generated video or a base64 data URI. Prompt:\n"+prompt)
	if err != nil {
		return none, err
	}
	part, ok := normalize.FirstGeminiPart(body)
	if !ok {
		return none, fmt.Errorf("gemini returned no candidates")
	}
	if part.InlineData != nil && strings.HasPrefix(part.InlineData.MimeType, "video/") && part.InlineData.Data != "" {
		return normalize.VideoResult("data:" + part.InlineData.MimeType + ";base64," + part.InlineData.Data), nil
	}
	if text := strings.TrimSpace(part.Text); normalize.IsVideoPayload(text) {
		return normalize.VideoResult(text), nil
	}
	return none, fmt.Errorf("non-media response")
}

func (o *Orchestrator) tryFalVideo(ctx context.Context, prompt string) (models.CanonicalResult, error) {
	out, err := o.callFal(ctx, "vision-video-1", prompt)
	if err != nil {
		return models.CanonicalResult{}, err
	}
	return normalize.VideoResult(out), nil
}
