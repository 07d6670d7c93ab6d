// Package catalog is the static provider catalog: the FashBot model alias
// registry, the model-candidate expansion used by the primary sweep, and the
// ordered provider lists each capability falls back through.
package catalog

import (
	"strings"

	"github.com/fashbot/fashbot/internal/config"
	"github.com/fashbot/fashbot/pkg/models"
)

// Provider names used in tried-lists, logs and response metadata.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderQwen      = "qwen"
	ProviderAnthropic = "anthropic"
	ProviderFal       = "fal.ai"
	ProviderUnsplash  = "unsplash"
)

// modelRegistry maps the branded FashBot model aliases to the concrete
// Gemini model each one rides on.
var modelRegistry = map[string]string{
	"FashBot-GM-VRS-25F": "gemini-2.0-flash",
	"FashBot-2024":       "gemini-1.5-flash",
	"FashBot-Lite":       "gemini-1.5-flash-8b",
}

// genericFallbacks are the known-good Gemini models every sweep ends with,
// most capable first.
var genericFallbacks = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

// apiVersions is the ordered list of Gemini API surfaces, newest first.
var apiVersions = []string{"v1beta", "v1"}

// Catalog resolves aliases and candidate orderings against the configured
// provider endpoints and credentials.
type Catalog struct {
	cfg config.ProviderConfig
}

// New builds a Catalog from provider configuration.
func New(cfg config.ProviderConfig) *Catalog {
	return &Catalog{cfg: cfg}
}

// Providers exposes the raw provider configuration (endpoints, credentials).
func (c *Catalog) Providers() config.ProviderConfig { return c.cfg }

// ResolveAlias maps a FashBot model alias to its concrete model id. Unknown
// or empty aliases resolve to the default flagship model.
func (c *Catalog) ResolveAlias(alias string) string {
	if m, ok := modelRegistry[alias]; ok {
		return m
	}
	return genericFallbacks[0]
}

// ExpandModelCandidates produces the deduplicated ordered list of model ids
// to attempt for a requested model: the request verbatim, the request with a
// trailing "-latest" stripped, then the generic fallbacks. Empty entries are
// dropped; first-seen order wins.
func ExpandModelCandidates(requested string) []string {
	raw := []string{
		requested,
		strings.TrimSuffix(requested, "-latest"),
	}
	raw = append(raw, genericFallbacks...)

	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// APIVersions returns the ordered API surface versions to sweep, newest
// first. For each version every model candidate is tried before the sweep
// moves on.
func APIVersions() []string {
	out := make([]string, len(apiVersions))
	copy(out, apiVersions)
	return out
}

// CandidateSweep flattens the (API version × model candidate) space for a
// requested model into the ordered attempt list the primary sweep walks.
func CandidateSweep(requested string) []models.ProviderCandidate {
	candidates := ExpandModelCandidates(requested)
	out := make([]models.ProviderCandidate, 0, len(apiVersions)*len(candidates))
	for _, version := range apiVersions {
		for _, model := range candidates {
			out = append(out, models.ProviderCandidate{
				Provider:   ProviderGemini,
				Model:      model,
				APIVersion: version,
			})
		}
	}
	return out
}

// ChatFallbackOrder is the fixed ordered list of alternate chat providers
// engaged when the primary provider reports a disabled/unauthorized failure.
// Each alternate runs a single model with no inner candidate sweep.
func ChatFallbackOrder() []string {
	return []string{ProviderOpenAI, ProviderQwen, ProviderAnthropic, ProviderFal}
}

// DocumentProviderOrder is the content-producing sweep for documents,
// primary first.
func DocumentProviderOrder() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderQwen, ProviderAnthropic}
}

// ImageRemoteOrder is the remote tier of the image sweep, primary first,
// ending with the stock-photo search provider.
func ImageRemoteOrder() []string {
	return []string{ProviderGemini, ProviderOpenAI, ProviderFal, ProviderQwen, ProviderAnthropic, ProviderUnsplash}
}

// LocalImageScripts is the fixed ordered list of heavy local model scripts
// attempted before any remote provider. Scripts not present on disk are
// skipped silently.
func LocalImageScripts() []string {
	return []string{
		"models/local/generate_cpu_image.py",
		"models/lima/gen_images.py",
		"models/tiga/src/examples/demo.py",
	}
}
