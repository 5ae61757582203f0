// Package extractor turns raw mixed Thai/English question text into a typed
// entity bag. Extraction is deterministic, side-effect free and never calls
// out of process; all vocabulary lives in static tables in this package.
package extractor

import (
	"github.com/hvacops-nlq/server/internal/nlq/model"
)

type Extractor struct {
	cfg model.ExtractorConfig
}

func New(cfg model.ExtractorConfig) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract parses every entity kind from the text. Lists are de-duplicated
// preserving first-seen order; years and months are sorted ascending so the
// same text always yields the same bag.
func (e *Extractor) Extract(text string) model.EntityBag {
	return model.EntityBag{
		Years:     e.extractYears(text),
		Months:    e.extractMonths(text),
		Dates:     e.extractDates(text),
		Customers: e.extractCustomers(text),
		Products:  e.extractProducts(text),
		Brands:    e.extractBrands(text),
		JobTypes:  e.extractJobTypes(text),
		Amounts:   e.extractAmounts(text),
		TopN:      e.extractTopN(text),
	}
}
