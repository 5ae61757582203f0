// Package catalog owns the immutable SQL template inventory and the warehouse
// view whitelist. Selection is pure ranking; the catalog never mutates
// template SQL, that is the composer's job.
package catalog

import (
	"fmt"
	"regexp"
	"strings"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

var tokenRe = regexp.MustCompile(`\{[A-Z_]+\}`)

var knownTokens = map[string]bool{
	"{TABLE}":           true,
	"{YEAR_LABEL}":      true,
	"{CUSTOMER_FILTER}": true,
	"{PRODUCT_FILTER}":  true,
	"{MONTH_FILTER}":    true,
	"{LIMIT}":           true,
}

// Catalog is built once at startup and shared read-only across all sessions.
type Catalog struct {
	templates []model.TemplateMetadata
	byName    map[string]model.TemplateMetadata
	defaults  map[string]model.TemplateMetadata
	exactReqs map[string]exactReq
}

// New assembles the static and generated entries and verifies the catalog
// invariants: unique names, known tables, well-formed tokens and at most one
// default per intent. A violation is a programming error surfaced at startup.
func New() (*Catalog, error) {
	generated, reqs := generateExactTemplates()
	templates := make([]model.TemplateMetadata, 0, len(staticTemplates)+len(generated))
	templates = append(templates, staticTemplates...)
	templates = append(templates, generated...)

	c := &Catalog{
		templates: templates,
		byName:    make(map[string]model.TemplateMetadata, len(templates)),
		defaults:  map[string]model.TemplateMetadata{},
		exactReqs: reqs,
	}

	for _, tmpl := range templates {
		if err := checkTemplate(tmpl); err != nil {
			return nil, err
		}
		if _, dup := c.byName[tmpl.Name]; dup {
			return nil, catalogErr("duplicate template name %q", tmpl.Name)
		}
		c.byName[tmpl.Name] = tmpl

		if tmpl.DefaultFor != "" {
			if _, dup := c.defaults[tmpl.DefaultFor]; dup {
				return nil, catalogErr("intent %q has more than one default template", tmpl.DefaultFor)
			}
			c.defaults[tmpl.DefaultFor] = tmpl
		}
	}

	logx.Info().Int("templates", len(templates)).Msg("template catalog loaded")
	return c, nil
}

func checkTemplate(tmpl model.TemplateMetadata) error {
	if tmpl.Name == "" || tmpl.SQL == "" || len(tmpl.IntentAffinity) == 0 {
		return catalogErr("template %q is missing name, sql or intent affinity", tmpl.Name)
	}
	if tmpl.Table != "" {
		if _, ok := LookupView(tmpl.Table); !ok {
			return catalogErr("template %q targets unknown view %q", tmpl.Name, tmpl.Table)
		}
	}
	for _, token := range tokenRe.FindAllString(tmpl.SQL, -1) {
		if !knownTokens[token] {
			return catalogErr("template %q contains unknown token %s", tmpl.Name, token)
		}
	}
	switch tmpl.Tier {
	case model.TierExact:
		if tokenRe.MatchString(tmpl.SQL) {
			return catalogErr("exact template %q must not carry substitution tokens", tmpl.Name)
		}
	case model.TierNormal, model.TierComplex:
		if tmpl.YearAdjustment != model.YearNone && !strings.Contains(tmpl.SQL, "{TABLE}") {
			return catalogErr("template %q adjusts years but has no {TABLE} token", tmpl.Name)
		}
	default:
		return catalogErr("template %q has unknown tier %q", tmpl.Name, tmpl.Tier)
	}
	if tmpl.DefaultFor != "" && !tmpl.HasAffinity(tmpl.DefaultFor) {
		return catalogErr("template %q defaults for intent %q outside its affinity", tmpl.Name, tmpl.DefaultFor)
	}
	return nil
}

func catalogErr(format string, args ...any) error {
	return errx.New(fmt.Errorf(format, args...), 500, "template catalog invariant violated")
}

// SelectTemplate ranks catalog entries for the intent against the resolved
// question text and extracted entities. EXACT entries only qualify when the
// evidence pins them completely; otherwise ranking prefers the best keyword
// overlap and falls back to the per-intent default.
func (c *Catalog) SelectTemplate(intent string, entities model.EntityBag, text string) (model.TemplateMetadata, bool) {
	lower := strings.ToLower(text)

	var best model.TemplateMetadata
	bestScore := 0
	for _, tmpl := range c.templates {
		if !tmpl.HasAffinity(intent) {
			continue
		}
		score := c.score(tmpl, entities, lower)
		if score > bestScore || (score == bestScore && score > 0 && tmpl.Name < best.Name) {
			best = tmpl
			bestScore = score
		}
	}

	if bestScore > 0 {
		return best, true
	}

	fallback, ok := c.defaults[intent]
	if ok {
		logx.Debug().
			Str("intent", intent).
			Str("template", fallback.Name).
			Msg("no keyword match; using default template for intent")
	}
	return fallback, ok
}

func (c *Catalog) score(tmpl model.TemplateMetadata, entities model.EntityBag, lower string) int {
	matched := 0
	for _, kw := range tmpl.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			matched++
		}
	}

	if tmpl.Tier == model.TierExact {
		if matched == 0 || !c.exactEligible(tmpl, entities) {
			return 0
		}
		// A fully pinned exact entry beats any tokenized candidate.
		return matched*2 + 5
	}

	if matched == 0 {
		return 0
	}
	score := matched * 2
	if tmpl.YearAdjustment != model.YearNone && len(entities.Years) > 0 {
		score++
	}
	if strings.Contains(tmpl.SQL, "{CUSTOMER_FILTER}") && len(entities.Customers) > 0 {
		score++
	}
	if strings.Contains(tmpl.SQL, "{PRODUCT_FILTER}") && len(entities.Products) > 0 {
		score++
	}
	return score
}

// exactEligible demands that the question's entities are exactly what the
// pre-baked statement answers: the pinned year, the pinned month if any, and
// no filterable entities the verbatim SQL could not honor.
func (c *Catalog) exactEligible(tmpl model.TemplateMetadata, entities model.EntityBag) bool {
	req, ok := c.exactReqs[tmpl.Name]
	if !ok {
		return false
	}
	if len(entities.Years) != 1 || entities.Years[0] != req.Year {
		return false
	}
	if req.Month == 0 {
		if len(entities.Months) != 0 {
			return false
		}
	} else if len(entities.Months) != 1 || entities.Months[0] != req.Month {
		return false
	}
	if len(entities.Customers) > 0 || len(entities.Products) > 0 || entities.TopN > 0 {
		return false
	}
	return true
}

// ByName resolves a template, for observability and tests.
func (c *Catalog) ByName(name string) (model.TemplateMetadata, bool) {
	tmpl, ok := c.byName[name]
	return tmpl, ok
}

// Default returns the per-intent fallback entry.
func (c *Catalog) Default(intent string) (model.TemplateMetadata, bool) {
	tmpl, ok := c.defaults[intent]
	return tmpl, ok
}

// All returns the full inventory in load order. Callers must not mutate it.
func (c *Catalog) All() []model.TemplateMetadata {
	return c.templates
}

// Size reports the number of loaded templates.
func (c *Catalog) Size() int {
	return len(c.templates)
}
