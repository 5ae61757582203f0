package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// SalesYearMin/Max bound the yearly sales views that actually exist in the
// warehouse. Requests outside this range degrade to the nearest edge view.
const (
	SalesYearMin = 2022
	SalesYearMax = 2025
)

// View describes one queryable warehouse view: its column whitelist plus the
// semantic roles the composer needs when expanding filter tokens.
type View struct {
	Name           string
	Columns        []string
	CustomerColumn string
	DateColumn     string
	AmountColumn   string
	ProductColumns []string
}

// HasColumn reports whether col is part of the view's whitelist.
func (v View) HasColumn(col string) bool {
	col = strings.ToLower(col)
	for _, c := range v.Columns {
		if c == col {
			return true
		}
	}
	return false
}

var salesColumns = []string{"job_no", "customer_name", "description", "job_type", "total_num", "date"}

var sparePartColumns = []string{"wh", "product_code", "product_name", "unit", "balance_num", "unit_price", "total_num"}

// views is the full warehouse surface the pipeline may touch. Anything not
// listed here is invisible to composition and rejected by validation.
var views = func() map[string]View {
	m := map[string]View{
		"v_work_force": {
			Name:           "v_work_force",
			Columns:        []string{"date", "customer", "project", "detail", "service_group", "report_by", "job_no"},
			CustomerColumn: "customer",
			DateColumn:     "date",
		},
	}
	for year := SalesYearMin; year <= SalesYearMax; year++ {
		name := SalesView(year)
		m[name] = View{
			Name:           name,
			Columns:        salesColumns,
			CustomerColumn: "customer_name",
			DateColumn:     "date",
			AmountColumn:   "total_num",
		}
	}
	for _, name := range []string{"v_spare_part", "v_spare_part2"} {
		m[name] = View{
			Name:           name,
			Columns:        sparePartColumns,
			AmountColumn:   "total_num",
			ProductColumns: []string{"product_code", "product_name"},
		}
	}
	return m
}()

// columnSynonyms maps the loose column names users and the LLM fallback tend
// to produce onto real warehouse columns. Used for rejection hints only,
// never for silent rewriting.
var columnSynonyms = map[string]string{
	"amount":   "total_num",
	"revenue":  "total_num",
	"customer": "customer_name",
	"price":    "unit_price",
	"qty":      "balance_num",
	"quantity": "balance_num",
	"model":    "product_code",
	"part":     "product_code",
}

// SalesView returns the yearly sales view name, clamped to the existing range.
func SalesView(year int) string {
	if year < SalesYearMin {
		year = SalesYearMin
	}
	if year > SalesYearMax {
		year = SalesYearMax
	}
	return fmt.Sprintf("v_sales%d", year)
}

// LookupView resolves a view by name.
func LookupView(name string) (View, bool) {
	v, ok := views[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// ViewNames lists every known view, sorted for deterministic iteration.
func ViewNames() []string {
	names := make([]string, 0, len(views))
	for name := range views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuggestColumn returns the whitelisted column a rejected identifier most
// likely meant, via the synonym table.
func SuggestColumn(col string) (string, bool) {
	suggestion, ok := columnSynonyms[strings.ToLower(col)]
	return suggestion, ok
}
