package orchestrator

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/localgen"
	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

var sizeRe = regexp.MustCompile(`^\d+x\d+$`)

var catPromptRe = regexp.MustCompile(`(?i)kucing|cat|kitty|meong`)

// GenerateImage runs the tiered image sweep: local model scripts, the
// procedural generator, remote providers, and finally a themed placeholder
// that never fails. The response always names the provider that produced the
// content; terminal-tier responses also carry the tried list and per-source
// errors for observability.
func (o *Orchestrator) GenerateImage(ctx context.Context, req models.ImageRequest) (*models.GenerateResponse, error) {
	ctx, span := tracer.Start(ctx, "image.sweep")
	defer span.End()

	width, height := parseSize(req.Size)
	tried := []string{}
	errs := map[string]string{}

	// Tier 1: heavy local model scripts. Missing scripts are skipped
	// silently; present ones get the generous timeout and their output is
	// accepted only when it parses as a recognized image payload.
	for _, script := range o.localScripts {
		if !o.scripts.ScriptExists(script) {
			continue
		}
		source := "python:" + script
		tried = append(tried, source)

		result, err := o.scripts.RunImageScript(ctx, script, req.Prompt, width, height, imageScriptTimeout)
		if err != nil {
			errs[script] = err.Error()
			log.Warn().Str("script", script).Err(err).Msg("local model script failed")
			continue
		}

		payload, bareBase64 := result.Payload()
		if payload == "" {
			errs[script] = "no recognizable image payload"
			continue
		}
		if bareBase64 {
			// Raw base64 PNG bytes from demo scripts.
			payload = "data:image/png;base64," + payload
		}
		if strings.HasPrefix(payload, "data:image/") {
			if publicURL, err := o.assets.SaveDataURI(payload); err == nil {
				span.SetAttributes(attribute.String("image.provider", source))
				return &models.GenerateResponse{Content: publicURL, Provider: source, Saved: publicURL}, nil
			} else {
				log.Error().Err(err).Msg("failed to save generated image")
				return &models.GenerateResponse{Content: payload, Provider: source}, nil
			}
		}
		// Bare https URL.
		return &models.GenerateResponse{Content: payload, Provider: source}, nil
	}

	// Tier 2: deterministic procedural generator. Terminal when the caller
	// demanded local-only generation and it fails.
	if dataURI, err := o.proceduralSVG(req.Prompt, width, height); err == nil {
		span.SetAttributes(attribute.String("image.provider", "local-proc"))
		return &models.GenerateResponse{Content: dataURI, Provider: "local-proc"}, nil
	} else {
		errs["local"] = err.Error()
		if req.Local {
			return nil, &models.SweepError{
				Message: "Local generation failed and local-only requested",
				Tried:   tried,
				Errors:  errs,
			}
		}
	}

	// Tier 3: remote providers, swallow-and-continue.
	if resp := o.remoteImageTier(ctx, req, &tried, errs); resp != nil {
		span.SetAttributes(attribute.String("image.provider", resp.Provider))
		return resp, nil
	}

	// Tier 4: themed placeholder. Never raises.
	return o.placeholderImage(ctx, req.Prompt, width, height, tried, errs), nil
}

func (o *Orchestrator) remoteImageTier(ctx context.Context, req models.ImageRequest, tried *[]string, errs map[string]string) *models.GenerateResponse {
	for _, provider := range catalog.ImageRemoteOrder() {
		*tried = append(*tried, provider)
		result, err := o.tryRemoteImage(ctx, provider, req)
		if err != nil {
			errs[provider] = err.Error()
			log.Warn().Str("provider", provider).Err(err).Msg("image provider failed")
			continue
		}
		resp := &models.GenerateResponse{Content: result.Value, Provider: provider, Mime: result.MimeType}
		if provider == catalog.ProviderUnsplash {
			// Stock photos surface their sweep trail like the placeholder tier.
			resp.Tried = *tried
			resp.Errors = errs
			if !strings.HasPrefix(result.Value, "data:") {
				resp.Provider = "unsplash-url"
			}
		}
		return resp
	}
	return nil
}

// tryRemoteImage runs one remote provider and wraps whatever media payload it
// produced as an image-kind canonical result, erasing the provider's own
// response shape.
func (o *Orchestrator) tryRemoteImage(ctx context.Context, provider string, req models.ImageRequest) (models.CanonicalResult, error) {
	none := models.CanonicalResult{}
	switch provider {
	case catalog.ProviderGemini:
		body, err := o.geminiSweep(ctx,
			"Generate an image for the following prompt. Return either a data URL (base64) or an https image URL. Prompt:\n"+req.Prompt)
		if err != nil {
			return none, err
		}
		part, ok := normalize.FirstGeminiPart(body)
		if !ok {
			return none, fmt.Errorf("gemini returned no candidates")
		}
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MimeType, "image/") && part.InlineData.Data != "" {
			return normalize.ImageResult("data:"+part.InlineData.MimeType+";base64,"+part.InlineData.Data, part.InlineData.MimeType), nil
		}
		if text := strings.TrimSpace(part.Text); normalize.IsImagePayload(text) {
			return normalize.ImageResult(text, ""), nil
		}
		return none, fmt.Errorf("non-media response: %s", strings.TrimSpace(part.Text))

	case catalog.ProviderOpenAI:
		out, err := o.callOpenAIImage(ctx, req.Prompt, req.Size)
		if err != nil {
			return none, err
		}
		return normalize.ImageResult(out, "image/png"), nil

	case catalog.ProviderFal:
		out, err := o.callFal(ctx, "vision-image-1", req.Prompt)
		if err != nil {
			return none, err
		}
		if normalize.IsBareBase64(out) {
			return normalize.ImageResult("data:image/png;base64,"+out, "image/png"), nil
		}
		return normalize.ImageResult(out, ""), nil

	case catalog.ProviderQwen:
		out, err := o.callQwenChat(ctx, req.Prompt)
		if err != nil {
			return none, err
		}
		if !normalize.IsImagePayload(out) {
			return none, fmt.Errorf("non-media response: %s", out)
		}
		return normalize.ImageResult(out, ""), nil

	case catalog.ProviderAnthropic:
		out, err := o.callAnthropicComplete(ctx, req.Prompt, 1200)
		if err != nil {
			return none, err
		}
		if !normalize.IsImagePayload(out) {
			return none, fmt.Errorf("non-media response: %s", out)
		}
		return normalize.ImageResult(out, ""), nil

	case catalog.ProviderUnsplash:
		hitURL, err := o.unsplashSearch(ctx, req.Prompt)
		if err != nil {
			return none, err
		}
		if dataURI, err := o.fetchImageAsDataURI(ctx, hitURL); err == nil {
			return normalize.ImageResult(dataURI, ""), nil
		}
		return normalize.ImageResult(hitURL, ""), nil

	default:
		return none, fmt.Errorf("unknown image provider %q", provider)
	}
}

// placeholderURLFor picks a themed placeholder source by content heuristic.
func placeholderURLFor(prompt string, width, height int) (placeholderURL, provider string) {
	if catPromptRe.MatchString(prompt) {
		return fmt.Sprintf("https://placekitten.com/%d/%d", width, height), "placekitten"
	}
	keywords := strings.Fields(prompt)
	if len(keywords) > 4 {
		keywords = keywords[:4]
	}
	return fmt.Sprintf("https://source.unsplash.com/%dx%d/?%s",
		width, height, url.QueryEscape(strings.Join(keywords, ","))), "unsplash-source"
}

// placeholderImage fetches the themed placeholder and falls back to the plain
// procedural variant if even that network call fails. It always returns
// something displayable.
func (o *Orchestrator) placeholderImage(ctx context.Context, prompt string, width, height int, tried []string, errs map[string]string) *models.GenerateResponse {
	placeholderURL, provider := placeholderURLFor(prompt, width, height)

	if dataURI, err := o.fetchImageAsDataURI(ctx, placeholderURL); err == nil {
		return &models.GenerateResponse{Content: dataURI, Provider: provider, Tried: tried, Errors: errs}
	}

	return &models.GenerateResponse{
		Content:  localgen.PlainSVG(prompt, width, height),
		Provider: "placeholder-svg",
		Tried:    tried,
		Errors:   errs,
	}
}

func parseSize(size string) (int, int) {
	if !sizeRe.MatchString(size) {
		return 1024, 768
	}
	w, h, _ := strings.Cut(size, "x")
	width, _ := strconv.Atoi(w)
	height, _ := strconv.Atoi(h)
	return width, height
}
