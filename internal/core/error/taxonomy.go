package errx

import "errors"

// Sentinel errors for the resolution pipeline. Only ErrValidationRejected and
// ErrSessionStateCorrupt abort a request; the remaining conditions degrade the
// pipeline input for downstream stages and surface as warnings on the result.
var (
	// ErrValidationRejected: composed SQL failed the whitelist/blocklist check.
	ErrValidationRejected = errors.New("validation rejected")
	// ErrSessionStateCorrupt: recorded turn history violates ordering invariants.
	ErrSessionStateCorrupt = errors.New("session state corrupt")
	// ErrTemplateNotFound: no catalog entry matched the intent; a default
	// template is used instead.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrFallbackUnavailable: the LLM fallback path was needed but no
	// translator is configured.
	ErrFallbackUnavailable = errors.New("llm fallback unavailable")
)

// Warning tags attached to a resolved query when a non-fatal condition occurred.
const (
	WarnClassificationAmbiguous = "classification_ambiguous"
	WarnTemplateNotFound        = "template_not_found"
	WarnCompositionDegraded     = "composition_degraded"
	WarnExtractionNoise         = "extraction_noise"
)
