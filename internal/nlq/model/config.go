package model

// ================ Config ================
//
// All scoring weights below are hand-tuned values carried over from the
// production rule set. They are configuration, not derived constants; treat
// them as candidates for recalibration against a labeled question set.

type ExtractorConfig struct {
	// CurrentYear anchors "N years back" expansion. Gregorian.
	CurrentYear int `envconfig:"NLQ_CURRENT_YEAR" default:"2025"`
	// MinYear/MaxYear bound accepted years; anything outside is noise.
	MinYear int `envconfig:"NLQ_MIN_YEAR" default:"2020"`
	MaxYear int `envconfig:"NLQ_MAX_YEAR" default:"2030"`
}

type ClassifierConfig struct {
	StrongWeight        float64 `envconfig:"NLQ_STRONG_WEIGHT" default:"10"`
	MediumWeight        float64 `envconfig:"NLQ_MEDIUM_WEIGHT" default:"5"`
	WeakWeight          float64 `envconfig:"NLQ_WEAK_WEIGHT" default:"2"`
	PatternWeight       float64 `envconfig:"NLQ_PATTERN_WEIGHT" default:"8"`
	StrongBoundaryBonus float64 `envconfig:"NLQ_STRONG_BOUNDARY_BONUS" default:"2"`
	MediumBoundaryBonus float64 `envconfig:"NLQ_MEDIUM_BOUNDARY_BONUS" default:"1"`
	NegativePenalty     float64 `envconfig:"NLQ_NEGATIVE_PENALTY" default:"3"`
	ContinuityBonus     float64 `envconfig:"NLQ_CONTINUITY_BONUS" default:"3"`

	// ConfidenceDivisor converts the best score into base confidence
	// (clamped to [0,1]); SeparationWeight rewards the margin over the
	// runner-up.
	ConfidenceDivisor float64 `envconfig:"NLQ_CONFIDENCE_DIVISOR" default:"30"`
	SeparationWeight  float64 `envconfig:"NLQ_SEPARATION_WEIGHT" default:"0.3"`
}

type ConversationSettings struct {
	// MaxTurns bounds the per-session ring buffer.
	MaxTurns int `envconfig:"NLQ_CONVERSATION_MAX_TURNS" default:"20"`
	// MergeLookback is how many prior turns entity backfill inspects.
	MergeLookback int `envconfig:"NLQ_CONVERSATION_MERGE_LOOKBACK" default:"3"`
	// ShortQueryTokens: questions at or under this token count are treated
	// as follow-ups unless they are yes/no terminators.
	ShortQueryTokens int `envconfig:"NLQ_CONVERSATION_SHORT_QUERY_TOKENS" default:"3"`
	// TTL is the idle lifetime of session state (parsed as time.Duration).
	TTL string `envconfig:"NLQ_CONVERSATION_TTL" default:"30m"`
}

type ComposerConfig struct {
	// DefaultLimit is the implicit LIMIT applied to row-level queries.
	DefaultLimit int `envconfig:"NLQ_DEFAULT_LIMIT" default:"100"`
	// MaxLimit caps any caller- or entity-driven LIMIT adjustment.
	MaxLimit int `envconfig:"NLQ_MAX_LIMIT" default:"500"`
}

type FallbackModelConfig struct {
	Enabled     bool    `envconfig:"NLQ_FALLBACK_ENABLED" default:"false"`
	Model       string  `envconfig:"NLQ_FALLBACK_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"NLQ_FALLBACK_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"NLQ_FALLBACK_TEMPERATURE" default:"0.1"`
	// ConfidenceThreshold: classifications below this route to the LLM
	// fallback SQL generator (output still passes the validator).
	ConfidenceThreshold float64 `envconfig:"NLQ_FALLBACK_CONFIDENCE_THRESHOLD" default:"0.4"`
}

// PipelineConfig aggregates everything the resolution graph needs.
type PipelineConfig struct {
	Extractor    ExtractorConfig
	Classifier   ClassifierConfig
	Conversation ConversationSettings
	Composer     ComposerConfig
	Fallback     FallbackModelConfig
}
