package orchestrator

import (
	"context"
	"strings"

	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/fashbot/fashbot/pkg/models"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
)

// ChatPrimary resolves the FashBot alias and sweeps the primary provider's
// (API version × model candidate) space. First success wins and comes back
// as a text-kind canonical result. Failures are returned as *ProviderError
// so the route layer can decide whether the cross-provider fallback applies.
func (o *Orchestrator) ChatPrimary(ctx context.Context, alias string, messages []models.ConversationMessage, attachments []models.Attachment) (models.CanonicalResult, error) {
	model := o.catalog.ResolveAlias(alias)
	contents := buildGeminiContents(messages, attachments)

	body, err := o.sweepGemini(ctx, catalog.CandidateSweep(model), contents, chatGenerationConfig)
	if err != nil {
		return models.CanonicalResult{}, err
	}

	text, ok := normalize.GeminiText(body)
	if !ok {
		return models.CanonicalResult{}, &ProviderError{Provider: catalog.ProviderGemini, Status: 502, Details: "response did not include text"}
	}
	return normalize.TextResult(text), nil
}

// sweepGemini is the candidate sweep state machine. Each attempt either
// succeeds (sweep stops, content returned), fails retryably (model missing
// at this API surface, advance to the next candidate), or fails fatally
// (abort the whole sweep and surface that failure). Exhausting every
// candidate surfaces the last-seen failure.
func (o *Orchestrator) sweepGemini(ctx context.Context, candidates []models.ProviderCandidate, contents []geminiContent, genCfg geminiGenerationConfig) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "gemini.sweep")
	defer span.End()

	lastErr := &ProviderError{Provider: catalog.ProviderGemini, Status: 500, Details: "Unknown error"}

	for _, c := range candidates {
		res, err := o.callGemini(ctx, c.APIVersion, c.Model, contents, genCfg)
		if err != nil {
			// Transport-level failure (or missing key): nothing model-specific
			// to retry against, abort the sweep.
			span.SetAttributes(attribute.String("gemini.fatal", err.Error()))
			return nil, &ProviderError{Provider: catalog.ProviderGemini, Status: 502, Details: err.Error()}
		}
		if res.OK {
			span.SetAttributes(attribute.String("gemini.candidate", c.String()))
			return res.Body, nil
		}

		attempt := models.AttemptResult{
			Provider:   c.Provider,
			Model:      c.Model,
			Outcome:    models.OutcomeFatalFailure,
			HTTPStatus: res.Status,
			RawBody:    string(res.Body),
		}
		if retryableWithinSweep(res.Status, string(res.Body)) {
			attempt.Outcome = models.OutcomeRetryableFailure
		}
		lastErr = &ProviderError{Provider: c.Provider, Status: res.Status, Details: string(res.Body)}

		if attempt.Outcome == models.OutcomeRetryableFailure {
			log.Warn().
				Str("candidate", c.String()).
				Int("status", res.Status).
				Msg("model candidate unavailable, trying next")
			continue
		}

		log.Warn().
			Str("candidate", c.String()).
			Int("status", res.Status).
			Msg("fatal provider failure, aborting sweep")
		return nil, lastErr
	}

	return nil, lastErr
}

// ChatFallback attempts the fixed ordered list of alternate chat providers.
// Each alternate gets a single model and no inner candidate sweep; failures
// are logged and swallowed so the sweep continues. The returned SweepError
// lists every provider name that was tried.
func (o *Orchestrator) ChatFallback(ctx context.Context, messages []models.ConversationMessage) (models.CanonicalResult, string, error) {
	ctx, span := tracer.Start(ctx, "chat.fallback")
	defer span.End()

	// Alternates take a flat prompt assembled from the user turns.
	var userTurns []string
	for _, m := range messages {
		if m.Role == models.RoleUser {
			userTurns = append(userTurns, m.Content)
		}
	}
	prompt := strings.Join(userTurns, "\n\n")

	calls := map[string]func(context.Context, string) (string, error){
		catalog.ProviderOpenAI:    o.callOpenAIChat,
		catalog.ProviderQwen:      o.callQwenChat,
		catalog.ProviderAnthropic: func(ctx context.Context, p string) (string, error) { return o.callAnthropicComplete(ctx, p, 800) },
		catalog.ProviderFal:       func(ctx context.Context, p string) (string, error) { return o.callFal(ctx, "gpt-1", p) },
	}

	var tried []string
	for _, name := range catalog.ChatFallbackOrder() {
		tried = append(tried, name)
		reply, err := calls[name](ctx, prompt)
		if err != nil {
			log.Warn().Str("provider", name).Err(err).Msg("fallback provider failed")
			continue
		}
		span.SetAttributes(attribute.String("chat.provider", name))
		return normalize.TextResult(reply), name, nil
	}

	return models.CanonicalResult{}, "", &models.SweepError{Message: "All fallback providers failed", Tried: tried}
}
