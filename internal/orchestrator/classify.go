package orchestrator

import (
	"fmt"
	"net/http"
	"regexp"
)

// The upstream services report "model missing" and "service disabled"
// conditions partly through free-text error bodies, so classification has to
// regex-match message wording as well as status codes. Known fragility:
// upstream wording changes silently break these matches. The patterns are
// kept byte-for-byte compatible with observed provider responses and live
// only in this file.
var (
	modelMissingRe    = regexp.MustCompile(`(?i)not found|is not supported`)
	serviceDisabledRe = regexp.MustCompile(`(?i)service_disabled|not configured|is not configured|disabled`)
)

// ProviderError is a classified provider failure carrying the raw status and
// body so nothing diagnostic is lost on the way up.
type ProviderError struct {
	Provider string
	Status   int
	Details  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.Status, e.Details)
}

// retryableWithinSweep reports whether a failed attempt means "this model or
// endpoint does not exist at this API surface": the sweep advances to the
// next candidate instead of aborting.
func retryableWithinSweep(status int, body string) bool {
	return status == http.StatusNotFound || modelMissingRe.MatchString(body)
}

// TriggersCrossProviderFallback reports whether a primary-provider failure
// qualifies for the alternate-provider sweep: the service is disabled or the
// caller is unauthorized, rather than a transient or caller error.
func TriggersCrossProviderFallback(err error) bool {
	pe, ok := err.(*ProviderError)
	if !ok {
		return false
	}
	return pe.Status == http.StatusForbidden || serviceDisabledRe.MatchString(pe.Details)
}
