package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func newTestComposer() *Composer {
	return New(model.ComposerConfig{DefaultLimit: 100, MaxLimit: 500}, 2025)
}

func template(t *testing.T, name string) model.TemplateMetadata {
	t.Helper()
	c, err := catalog.New()
	require.NoError(t, err)
	tmpl, ok := c.ByName(name)
	require.True(t, ok, "template %s not in catalog", name)
	return tmpl
}

func TestComposeMultiYearUnion(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_revenue_by_year")

	out, err := cp.Compose(tmpl, model.EntityBag{
		Years:     []int{2024, 2025},
		Customers: []string{"CLARION"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out.SQL, "UNION ALL"), "one arm per year")
	assert.Contains(t, out.SQL, "SELECT 2024 AS year_label")
	assert.Contains(t, out.SQL, "FROM v_sales2024")
	assert.Contains(t, out.SQL, "SELECT 2025 AS year_label")
	assert.Contains(t, out.SQL, "FROM v_sales2025")
	assert.Equal(t, 2, strings.Count(out.SQL, "customer_name ILIKE '%CLARION%'"),
		"every arm carries the customer filter")
	assert.NotContains(t, out.SQL, "{", "no unexpanded tokens")
}

func TestComposeMonthFilterUsesBetween(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_job_rows")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024}, Months: []int{8}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "date BETWEEN '2024-08-01' AND '2024-08-31'")
	assert.NotContains(t, out.SQL, "date LIKE")
	assert.True(t, strings.HasSuffix(out.SQL, "ORDER BY date DESC LIMIT 100"),
		"ordering and limit apply once, after the arms: %s", out.SQL)
}

func TestComposeMonthFilterFollowsArmYear(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_revenue_by_year")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024, 2025}, Months: []int{3}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "date BETWEEN '2024-03-01' AND '2024-03-31'")
	assert.Contains(t, out.SQL, "date BETWEEN '2025-03-01' AND '2025-03-31'")
}

func TestComposeExactPassThrough(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_total_2024_exact")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024}})
	require.NoError(t, err)

	assert.Equal(t, tmpl.SQL, out.SQL, "exact templates are emitted verbatim")
	assert.Equal(t, tmpl.Name, out.TemplateUsed)
}

func TestComposeTopNLimit(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "top_customers_by_revenue")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024}, TopN: 5})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.SQL, "LIMIT 5"))

	out, err = cp.Compose(tmpl, model.EntityBag{Years: []int{2024}, TopN: 9999})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.SQL, "LIMIT 500"), "limit is capped")
}

func TestComposeEscapesQuotes(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_revenue_by_year")

	out, err := cp.Compose(tmpl, model.EntityBag{
		Years:     []int{2024},
		Customers: []string{"O'BRIEN ENGINEERING"},
	})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "ILIKE '%O''BRIEN ENGINEERING%'")
}

func TestComposeYearOutsideRangeClamps(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_revenue_by_year")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2020}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "FROM v_sales2022")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "composition_degraded")
}

func TestComposeSimpleYearKeepsLatest(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_monthly_breakdown")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2023, 2024}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "FROM v_sales2024")
	assert.NotContains(t, out.SQL, "v_sales2023")
	assert.NotContains(t, out.SQL, "UNION ALL")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "composition_degraded")
}

func TestComposeExclusionFilter(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "overhaul_revenue_report")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "total_num > 0")
	assert.Contains(t, out.SQL, "description NOT ILIKE '%cancel%'")
}

func TestComposeNoYearDefaultsToCurrent(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "sales_revenue_by_year")

	out, err := cp.Compose(tmpl, model.EntityBag{})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "FROM v_sales2025")
	assert.NotContains(t, out.SQL, "UNION ALL")
}

func TestComposeFixedTableMonthFilter(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "work_plan_schedule")

	out, err := cp.Compose(tmpl, model.EntityBag{Years: []int{2024}, Months: []int{9}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "FROM v_work_force")
	assert.Contains(t, out.SQL, "date BETWEEN '2024-09-01' AND '2024-09-31'")
}

func TestComposeProductFilterSpansCodeAndName(t *testing.T) {
	cp := newTestComposer()
	tmpl := template(t, "spare_part_stock")

	out, err := cp.Compose(tmpl, model.EntityBag{Products: []string{"EKAC360"}})
	require.NoError(t, err)

	assert.Contains(t, out.SQL, "product_code ILIKE '%EKAC360%'")
	assert.Contains(t, out.SQL, "product_name ILIKE '%EKAC360%'")
	assert.Contains(t, out.SQL, " OR ")
}
