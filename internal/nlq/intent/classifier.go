// Package intent scores a fixed set of named intents against resolved
// question text using weighted rule sets, domain bonuses and a
// previous-intent continuity bonus. Classification is deterministic and
// stateless; all tuning lives in ClassifierConfig and the rule table.
package intent

import (
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

type Classifier struct {
	cfg   model.ClassifierConfig
	rules []Rule
}

func New(cfg model.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg, rules: rules}
}

// Classify scores every rule row against the text and derives confidence from
// the top score and its margin over the runner-up. If no intent scores above
// zero the result is intent="unknown" with zero confidence — an intent is
// never fabricated.
func (c *Classifier) Classify(text string, previousIntent string, entities model.EntityBag) model.ClassificationResult {
	lower := strings.ToLower(text)

	if ov := matchOverride(lower); ov != nil {
		logx.Debug().Str("intent", ov.Intent).Msg("priority override matched; bypassing scored classifier")
		return model.ClassificationResult{
			Intent:     ov.Intent,
			Confidence: ov.Confidence,
			Entities:   entities,
			RawScores:  model.IntentScore{ov.Intent: c.cfg.StrongWeight * 3},
		}
	}

	scores := make(model.IntentScore, len(c.rules))
	for _, rule := range c.rules {
		score := c.scoreRule(lower, rule, entities)
		if rule.Intent == previousIntent && previousIntent != "" {
			score += c.cfg.ContinuityBonus
		}
		if score < 0 {
			score = 0
		}
		scores[rule.Intent] = score
	}

	bestIntent, best, _, second := scores.Best()
	if best <= 0 {
		return model.ClassificationResult{
			Intent:     model.IntentUnknown,
			Confidence: 0,
			Entities:   entities,
			RawScores:  scores,
		}
	}

	confidence := c.confidence(best, second)
	confidence = c.adjustForEntities(bestIntent, confidence, entities)

	return model.ClassificationResult{
		Intent:     bestIntent,
		Confidence: confidence,
		Entities:   entities,
		RawScores:  scores,
	}
}

func (c *Classifier) scoreRule(lower string, rule Rule, entities model.EntityBag) float64 {
	var score float64

	for _, kw := range rule.Strong {
		if hit, whole := matchKeyword(lower, kw); hit {
			score += c.cfg.StrongWeight
			if whole {
				score += c.cfg.StrongBoundaryBonus
			}
		}
	}
	for _, kw := range rule.Medium {
		if hit, whole := matchKeyword(lower, kw); hit {
			score += c.cfg.MediumWeight
			if whole {
				score += c.cfg.MediumBoundaryBonus
			}
		}
	}
	for _, kw := range rule.Weak {
		if hit, _ := matchKeyword(lower, kw); hit {
			score += c.cfg.WeakWeight
		}
	}
	for _, re := range rule.Patterns {
		if re.MatchString(lower) {
			score += c.cfg.PatternWeight
		}
	}
	if rule.DomainBonus != nil {
		score += rule.DomainBonus(entities)
	}
	for _, kw := range rule.Negative {
		if hit, _ := matchKeyword(lower, kw); hit {
			score -= c.cfg.NegativePenalty
		}
	}

	return score
}

// confidence converts the top two scores into [0,1]: absolute evidence
// (best/divisor) plus a separation bonus rewarding the margin over the
// runner-up. A tie yields no separation bonus, signalling ambiguity.
func (c *Classifier) confidence(best, second float64) float64 {
	base := best / c.cfg.ConfidenceDivisor
	if base > 1 {
		base = 1
	}
	if base < 0 {
		base = 0
	}

	var separation float64
	if second > 0 {
		separation = c.cfg.SeparationWeight * (best - second) / best
	} else {
		separation = c.cfg.SeparationWeight
	}

	conf := base + separation
	if conf > 1 {
		conf = 1
	}
	return conf
}

// adjustForEntities nudges confidence with entity evidence: expected entities
// for the intent raise it, a total absence of evidence on a weak result
// lowers it.
func (c *Classifier) adjustForEntities(intent string, confidence float64, entities model.EntityBag) float64 {
	switch intent {
	case model.IntentSalesAnalysis, model.IntentOverhaulReport:
		if len(entities.Years) > 0 {
			confidence += 0.1
		}
	case model.IntentSpareParts:
		if len(entities.Products) > 0 {
			confidence += 0.15
		}
	case model.IntentCustomerHistory:
		if len(entities.Customers) > 0 {
			confidence += 0.1
		}
	}

	if confidence < 0.5 && entities.IsEmpty() && intent != model.IntentGreeting {
		confidence -= 0.1
	}

	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

func matchOverride(lower string) *override {
	for i := range overrides {
		matched := true
		for _, re := range overrides[i].All {
			if !re.MatchString(lower) {
				matched = false
				break
			}
		}
		if matched {
			return &overrides[i]
		}
	}
	return nil
}

// matchKeyword reports whether kw occurs in the text, and whether the hit is
// a whole-word boundary match. Thai has no word boundaries, so the boundary
// bonus only applies to ASCII keywords.
func matchKeyword(lower, kw string) (hit bool, whole bool) {
	kw = strings.ToLower(kw)
	if !strings.Contains(lower, kw) {
		return false, false
	}
	re, ok := boundaryRes[kw]
	if !ok {
		return true, false
	}
	return true, re.MatchString(lower)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
