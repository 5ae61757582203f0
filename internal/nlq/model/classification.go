package model

import "sort"

// Intent names for the HVAC service domain. Kept as plain strings so the rule
// table in internal/nlq/intent stays a pure data table.
const (
	IntentGreeting        = "greeting"
	IntentSalesAnalysis   = "sales_analysis"
	IntentCustomerHistory = "customer_history"
	IntentTopRanking      = "top_ranking"
	IntentWorkPlan        = "work_plan"
	IntentSpareParts      = "spare_parts"
	IntentOverhaulReport  = "overhaul_report"
	IntentUnknown         = "unknown"
)

// IntentScore maps intent name to its accumulated (clamped, non-negative) score.
type IntentScore map[string]float64

// Best returns the top two scores with their intents. Ties break on intent
// name so classification stays deterministic regardless of map iteration
// order. When the map is empty both intents are empty and both scores zero.
func (s IntentScore) Best() (bestIntent string, best float64, secondIntent string, second float64) {
	names := make([]string, 0, len(s))
	for intent := range s {
		names = append(names, intent)
	}
	sort.Strings(names)

	for _, intent := range names {
		score := s[intent]
		switch {
		case bestIntent == "" || score > best:
			second, secondIntent = best, bestIntent
			best, bestIntent = score, intent
		case secondIntent == "" || score > second:
			second, secondIntent = score, intent
		}
	}
	return bestIntent, best, secondIntent, second
}

// ClassificationResult is the outcome of scoring one resolved question.
// Confidence is always derived from RawScores, never assigned independently.
type ClassificationResult struct {
	Intent     string      `json:"intent"`
	Confidence float64     `json:"confidence"`
	Entities   EntityBag   `json:"entities"`
	RawScores  IntentScore `json:"raw_scores"`
}
