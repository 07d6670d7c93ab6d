// Package orchestrator implements the provider sweeps behind every FashBot
// capability: ordered candidate attempts against the primary provider,
// failure classification, cross-provider degradation, and the local
// generation tiers that keep image and document requests from ever failing
// outright.
package orchestrator

import (
	"time"

	"github.com/fashbot/fashbot/internal/assets"
	"github.com/fashbot/fashbot/internal/catalog"
	"github.com/fashbot/fashbot/internal/httpclient"
	"github.com/fashbot/fashbot/internal/localgen"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("fashbot-orchestrator")

// Timeouts per attempt class. Subprocess generators are bounded tighter on
// the packaging path because document requests block on them synchronously.
const (
	providerTimeout    = 120 * time.Second
	imageScriptTimeout = 90 * time.Second
	packagerTimeout    = 10 * time.Second
)

// packagerScript is the external python document packager, relative to the
// working directory like the local model scripts.
const packagerScript = "python/gen_doc.py"

// Orchestrator drives all capability sweeps. Each inbound request runs its
// sweep strictly sequentially; the only shared state is the asset store,
// which is collision-free by construction.
type Orchestrator struct {
	catalog *catalog.Catalog
	client  *httpclient.Client
	scripts *localgen.ScriptRunner
	assets  *assets.Store

	// localScripts and proceduralSVG are swappable for tests.
	localScripts  []string
	proceduralSVG func(prompt string, width, height int) (string, error)
}

// New wires an Orchestrator from its collaborators.
func New(cat *catalog.Catalog, scripts *localgen.ScriptRunner, store *assets.Store) *Orchestrator {
	return &Orchestrator{
		catalog:       cat,
		client:        httpclient.New(providerTimeout),
		scripts:       scripts,
		assets:        store,
		localScripts:  catalog.LocalImageScripts(),
		proceduralSVG: localgen.GenerateSVG,
	}
}
