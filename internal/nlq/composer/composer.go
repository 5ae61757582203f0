// Package composer turns a selected template plus extracted entities into a
// final SQL string. Composition only replaces tokens and assembles UNION ALL
// arms; it never invents columns or tables outside the catalog whitelist.
package composer

import (
	"fmt"
	"sort"
	"strings"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

type Composer struct {
	cfg model.ComposerConfig
	// currentYear anchors month filters on views without a yearly split.
	currentYear int
}

func New(cfg model.ComposerConfig, currentYear int) *Composer {
	return &Composer{cfg: cfg, currentYear: currentYear}
}

// Compose builds the final statement for one template. EXACT bodies pass
// through verbatim; NORMAL and COMPLEX bodies get their tokens expanded, one
// UNION ALL arm per requested year under the smart policy.
func (c *Composer) Compose(tmpl model.TemplateMetadata, entities model.EntityBag) (model.ComposedQuery, error) {
	out := model.ComposedQuery{
		TemplateUsed:        tmpl.Name,
		SubstitutedEntities: entities.Clone(),
	}

	if tmpl.Tier == model.TierExact {
		out.SQL = tmpl.SQL
		return out, nil
	}

	years := c.armYears(tmpl, entities, &out)
	body, suffix := splitOrderSuffix(tmpl.SQL)

	arms := make([]string, 0, len(years))
	for _, year := range years {
		arm, err := c.expandArm(tmpl, body, year, entities)
		if err != nil {
			return model.ComposedQuery{}, err
		}
		arms = append(arms, arm)
	}

	sql := strings.Join(arms, "\nUNION ALL\n")
	if suffix != "" {
		sql += " " + suffix
	}
	sql = strings.ReplaceAll(sql, "{LIMIT}", fmt.Sprint(c.limit(entities)))

	out.SQL = sql
	logx.Debug().
		Str("template", tmpl.Name).
		Int("arms", len(arms)).
		Msg("query composed")
	return out, nil
}

// armYears resolves the year list the composition will cover. Smart policy
// yields one arm per requested year; simple keeps the latest; none collapses
// to a single arm over the template's fixed table.
func (c *Composer) armYears(tmpl model.TemplateMetadata, entities model.EntityBag, out *model.ComposedQuery) []int {
	switch tmpl.YearAdjustment {
	case model.YearSmart:
		if len(entities.Years) == 0 {
			return []int{c.clampYear(c.currentYear)}
		}
		seen := map[int]bool{}
		var years []int
		for _, y := range entities.Years {
			clamped := c.clampYear(y)
			if clamped != y {
				out.Warnings = append(out.Warnings, fmt.Sprintf(
					"%s: year %d outside warehouse range, using %d",
					errx.WarnCompositionDegraded, y, clamped))
			}
			if !seen[clamped] {
				seen[clamped] = true
				years = append(years, clamped)
			}
		}
		sort.Ints(years)
		return years

	case model.YearSimple:
		year := c.currentYear
		if len(entities.Years) > 0 {
			year = entities.Years[len(entities.Years)-1]
			if len(entities.Years) > 1 {
				out.Warnings = append(out.Warnings, fmt.Sprintf(
					"%s: template supports a single year, using %d",
					errx.WarnCompositionDegraded, year))
			}
		}
		return []int{c.clampYear(year)}

	default:
		// YearNone: one arm over the template's own table.
		return []int{0}
	}
}

func (c *Composer) clampYear(year int) int {
	if year < catalog.SalesYearMin {
		return catalog.SalesYearMin
	}
	if year > catalog.SalesYearMax {
		return catalog.SalesYearMax
	}
	return year
}

// expandArm expands every per-arm token for one year. year is zero for
// templates with a fixed table.
func (c *Composer) expandArm(tmpl model.TemplateMetadata, body string, year int, entities model.EntityBag) (string, error) {
	table := tmpl.Table
	if year != 0 {
		table = catalog.SalesView(year)
	}
	view, ok := catalog.LookupView(table)
	if !ok {
		return "", errx.New(errx.ErrTemplateNotFound, 500,
			fmt.Sprintf("template %s resolved to unknown view %s", tmpl.Name, table))
	}

	filterYear := year
	if filterYear == 0 {
		filterYear = c.currentYear
		if len(entities.Years) > 0 {
			filterYear = entities.Years[len(entities.Years)-1]
		}
	}

	arm := body
	arm = strings.ReplaceAll(arm, "{TABLE}", view.Name)
	arm = strings.ReplaceAll(arm, "{YEAR_LABEL}", fmt.Sprint(year))
	arm = strings.ReplaceAll(arm, "{CUSTOMER_FILTER}", customerFilter(view, entities.Customers))
	arm = strings.ReplaceAll(arm, "{PRODUCT_FILTER}", productFilter(view, entities.Products))
	arm = strings.ReplaceAll(arm, "{MONTH_FILTER}", monthFilter(view, filterYear, entities.Months))

	if tmpl.RequiresExclusionFilter {
		arm += exclusionFilter(view)
	}
	return arm, nil
}

func (c *Composer) limit(entities model.EntityBag) int {
	limit := c.cfg.DefaultLimit
	if entities.TopN > 0 {
		limit = entities.TopN
	}
	if limit > c.cfg.MaxLimit {
		limit = c.cfg.MaxLimit
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}

// splitOrderSuffix separates a year-smart body from its final ORDER BY clause
// so ordering and LIMIT apply once, after the UNION ALL arms.
func splitOrderSuffix(sql string) (body, suffix string) {
	idx := strings.LastIndex(sql, " ORDER BY ")
	if idx < 0 {
		return sql, ""
	}
	// An ORDER BY inside a grouped single-arm body stays put; only trailing
	// clauses move behind the union.
	return sql[:idx], strings.TrimSpace(sql[idx:])
}

// quoteValue escapes a user-derived literal for inclusion in single quotes.
func quoteValue(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}

func customerFilter(view catalog.View, customers []string) string {
	if len(customers) == 0 || view.CustomerColumn == "" {
		return ""
	}
	parts := make([]string, 0, len(customers))
	for _, cust := range customers {
		parts = append(parts, fmt.Sprintf("%s ILIKE '%%%s%%'", view.CustomerColumn, quoteValue(cust)))
	}
	if len(parts) == 1 {
		return " AND " + parts[0]
	}
	return " AND (" + strings.Join(parts, " OR ") + ")"
}

func productFilter(view catalog.View, products []string) string {
	if len(products) == 0 || len(view.ProductColumns) == 0 {
		return ""
	}
	var parts []string
	for _, p := range products {
		quoted := quoteValue(p)
		for _, col := range view.ProductColumns {
			parts = append(parts, fmt.Sprintf("%s ILIKE '%%%s%%'", col, quoted))
		}
	}
	if len(parts) == 1 {
		return " AND " + parts[0]
	}
	return " AND (" + strings.Join(parts, " OR ") + ")"
}

// monthFilter bounds the text date column with BETWEEN; '31' is a safe upper
// bound for lexicographic comparison on zero-padded dates.
func monthFilter(view catalog.View, year int, months []int) string {
	if len(months) == 0 || view.DateColumn == "" {
		return ""
	}
	parts := make([]string, 0, len(months))
	for _, month := range months {
		parts = append(parts, fmt.Sprintf("%s BETWEEN '%d-%02d-01' AND '%d-%02d-31'",
			view.DateColumn, year, month, year, month))
	}
	if len(parts) == 1 {
		return " AND " + parts[0]
	}
	return " AND (" + strings.Join(parts, " OR ") + ")"
}

// exclusionFilter drops cancelled and zero-value rows from report queries.
func exclusionFilter(view catalog.View) string {
	filter := ""
	if view.AmountColumn != "" {
		filter += fmt.Sprintf(" AND %s > 0", view.AmountColumn)
	}
	if view.HasColumn("description") {
		filter += " AND description NOT ILIKE '%cancel%'"
	}
	return filter
}
