package model

// Tier governs how the composer may treat a template.
type Tier string

const (
	// TierExact templates are emitted verbatim; only literal filter values may
	// be substituted. Any structural change would silently alter semantics.
	TierExact Tier = "EXACT"
	// TierNormal templates permit year/customer/product filter substitution
	// and LIMIT adjustment, but no structural rewriting.
	TierNormal Tier = "NORMAL"
	// TierComplex templates require structural assembly, e.g. multi-year
	// UNION ALL blocks or exclusion subqueries.
	TierComplex Tier = "COMPLEX"
)

// YearAdjustment selects the year-handling policy during composition.
type YearAdjustment string

const (
	// YearSmart builds one UNION ALL arm per requested year over the yearly views.
	YearSmart YearAdjustment = "smart"
	// YearSimple substitutes the single most relevant year into the statement.
	YearSimple YearAdjustment = "simple"
	// YearNone applies no year handling at all.
	YearNone YearAdjustment = "none"
)

// TemplateMetadata describes one catalog entry. Immutable after process start
// and shared read-only across all sessions.
type TemplateMetadata struct {
	Name                    string
	Table                   string
	Tier                    Tier
	Keywords                []string
	RequiresSubquery        bool
	RequiresExclusionFilter bool
	YearAdjustment          YearAdjustment
	IntentAffinity          []string

	// SQL is the template body. NORMAL/COMPLEX bodies carry substitution
	// tokens ({TABLE}, {YEAR_LABEL}, {CUSTOMER_FILTER}, {PRODUCT_FILTER},
	// {MONTH_FILTER}, {LIMIT}); EXACT bodies are final text.
	SQL string

	// DefaultFor marks this entry as the per-intent fallback used when no
	// catalog candidate matches the question keywords.
	DefaultFor string
}

// HasAffinity reports whether the template serves the given intent.
func (t TemplateMetadata) HasAffinity(intent string) bool {
	for _, a := range t.IntentAffinity {
		if a == intent {
			return true
		}
	}
	return false
}

// ComposedQuery is produced fresh per request and never mutated after
// validation.
type ComposedQuery struct {
	SQL                 string    `json:"sql"`
	TemplateUsed        string    `json:"template_used"`
	SubstitutedEntities EntityBag `json:"substituted_entities"`
	Warnings            []string  `json:"warnings,omitempty"`
}
