package model

import "strings"

// EntityKind names one slot of the EntityBag. Used by the conversation layer
// when backfilling entities from prior turns.
type EntityKind string

const (
	KindYears     EntityKind = "years"
	KindMonths    EntityKind = "months"
	KindDates     EntityKind = "dates"
	KindCustomers EntityKind = "customers"
	KindProducts  EntityKind = "products"
	KindBrands    EntityKind = "brands"
	KindJobTypes  EntityKind = "job_types"
	KindAmounts   EntityKind = "amounts"
)

// EntityBag is the typed extraction result for one question. Lists are ordered,
// de-duplicated and never contain empty strings. Years are always Gregorian;
// Buddhist-era input is converted before it lands here.
type EntityBag struct {
	Years     []int     `json:"years,omitempty"`
	Months    []int     `json:"months,omitempty"`
	Dates     []string  `json:"dates,omitempty"`
	Customers []string  `json:"customers,omitempty"`
	Products  []string  `json:"products,omitempty"`
	Brands    []string  `json:"brands,omitempty"`
	JobTypes  []string  `json:"job_types,omitempty"`
	Amounts   []float64 `json:"amounts,omitempty"`

	// TopN carries an explicit "top N" request and adjusts the composed LIMIT.
	TopN int `json:"top_n,omitempty"`
}

// IsEmpty reports whether no entity of any kind was extracted.
func (b EntityBag) IsEmpty() bool {
	return len(b.Years) == 0 && len(b.Months) == 0 && len(b.Dates) == 0 &&
		len(b.Customers) == 0 && len(b.Products) == 0 && len(b.Brands) == 0 &&
		len(b.JobTypes) == 0 && len(b.Amounts) == 0 && b.TopN == 0
}

// HasTemporal reports whether any temporal evidence (year, month or date) exists.
func (b EntityBag) HasTemporal() bool {
	return len(b.Years) > 0 || len(b.Months) > 0 || len(b.Dates) > 0
}

// Clone returns a deep copy so a recorded turn never aliases request-owned slices.
func (b EntityBag) Clone() EntityBag {
	out := b
	out.Years = append([]int(nil), b.Years...)
	out.Months = append([]int(nil), b.Months...)
	out.Dates = append([]string(nil), b.Dates...)
	out.Customers = append([]string(nil), b.Customers...)
	out.Products = append([]string(nil), b.Products...)
	out.Brands = append([]string(nil), b.Brands...)
	out.JobTypes = append([]string(nil), b.JobTypes...)
	out.Amounts = append([]float64(nil), b.Amounts...)
	return out
}

// Empty reports whether the given kind has no values in the bag.
func (b EntityBag) Empty(kind EntityKind) bool {
	switch kind {
	case KindYears:
		return len(b.Years) == 0
	case KindMonths:
		return len(b.Months) == 0
	case KindDates:
		return len(b.Dates) == 0
	case KindCustomers:
		return len(b.Customers) == 0
	case KindProducts:
		return len(b.Products) == 0
	case KindBrands:
		return len(b.Brands) == 0
	case KindJobTypes:
		return len(b.JobTypes) == 0
	case KindAmounts:
		return len(b.Amounts) == 0
	default:
		return true
	}
}

// AppendUniqueString appends v to list when it is non-blank and not already
// present (case-insensitive), preserving first-seen order.
func AppendUniqueString(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}

// AppendUniqueInt appends v when not already present, preserving order.
func AppendUniqueInt(list []int, v int) []int {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
