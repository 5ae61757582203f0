package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New()
	require.NoError(t, err)
	return c
}

func TestCatalogLoadsWithDefaults(t *testing.T) {
	c := newTestCatalog(t)

	assert.Greater(t, c.Size(), 80, "generated per-year entries must be present")

	for _, intent := range []string{
		model.IntentSalesAnalysis,
		model.IntentCustomerHistory,
		model.IntentTopRanking,
		model.IntentWorkPlan,
		model.IntentSpareParts,
		model.IntentOverhaulReport,
	} {
		tmpl, ok := c.Default(intent)
		require.True(t, ok, "intent %s has no default template", intent)
		assert.True(t, tmpl.HasAffinity(intent))
	}
}

func TestSelectExactWholeYearTemplate(t *testing.T) {
	c := newTestCatalog(t)

	tmpl, ok := c.SelectTemplate(model.IntentSalesAnalysis,
		model.EntityBag{Years: []int{2024}},
		"รายได้รวมปี 2024 เท่าไหร่")

	require.True(t, ok)
	assert.Equal(t, "sales_total_2024_exact", tmpl.Name)
	assert.Equal(t, model.TierExact, tmpl.Tier)
	assert.NotContains(t, tmpl.SQL, "{", "exact sql is final text")
}

func TestSelectExactRejectedWhenCustomerPresent(t *testing.T) {
	c := newTestCatalog(t)

	tmpl, ok := c.SelectTemplate(model.IntentSalesAnalysis,
		model.EntityBag{Years: []int{2024}, Customers: []string{"CLARION"}},
		"รายได้รวมปี 2024 ของ CLARION")

	require.True(t, ok)
	assert.Equal(t, "sales_revenue_by_year", tmpl.Name,
		"a customer filter cannot be honored by a verbatim statement")
}

func TestSelectExactMonthlyTemplate(t *testing.T) {
	c := newTestCatalog(t)

	tmpl, ok := c.SelectTemplate(model.IntentSalesAnalysis,
		model.EntityBag{Years: []int{2024}, Months: []int{8}},
		"ยอดขายเดือนสิงหาคม ปี 2567")

	require.True(t, ok)
	assert.Equal(t, "sales_monthly_2024_08_exact", tmpl.Name)
}

func TestSelectKeywordOverlap(t *testing.T) {
	c := newTestCatalog(t)

	tmpl, ok := c.SelectTemplate(model.IntentWorkPlan, model.EntityBag{}, "ขอดูแผนงานสัปดาห์หน้า")
	require.True(t, ok)
	assert.Equal(t, "work_plan_schedule", tmpl.Name)

	tmpl, ok = c.SelectTemplate(model.IntentWorkPlan, model.EntityBag{}, "ทีมช่างเข้างานที่ไหนบ้าง")
	require.True(t, ok)
	assert.Equal(t, "work_plan_by_team", tmpl.Name)
}

func TestSelectDefaultFallback(t *testing.T) {
	c := newTestCatalog(t)

	tmpl, ok := c.SelectTemplate(model.IntentCustomerHistory,
		model.EntityBag{Customers: []string{"CLARION"}},
		"บริษัทนี้เป็นอย่างไรบ้าง")

	require.True(t, ok)
	assert.Equal(t, "customer_history_all_years", tmpl.Name)
}

func TestSelectNoTemplateForGreeting(t *testing.T) {
	c := newTestCatalog(t)

	_, ok := c.SelectTemplate(model.IntentGreeting, model.EntityBag{}, "สวัสดีครับ")
	assert.False(t, ok)
}

func TestSelectDeterministic(t *testing.T) {
	c := newTestCatalog(t)
	entities := model.EntityBag{Years: []int{2023}}
	text := "ยอดขายปี 2566 เทียบรายเดือน"

	first, ok := c.SelectTemplate(model.IntentSalesAnalysis, entities, text)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		tmpl, ok := c.SelectTemplate(model.IntentSalesAnalysis, entities, text)
		require.True(t, ok)
		assert.Equal(t, first.Name, tmpl.Name)
	}
}

func TestSalesViewClampedToExistingRange(t *testing.T) {
	assert.Equal(t, "v_sales2022", SalesView(2020))
	assert.Equal(t, "v_sales2024", SalesView(2024))
	assert.Equal(t, "v_sales2025", SalesView(2030))
}

func TestLookupViewAndSynonyms(t *testing.T) {
	view, ok := LookupView("v_sales2024")
	require.True(t, ok)
	assert.True(t, view.HasColumn("customer_name"))
	assert.False(t, view.HasColumn("password"))
	assert.Equal(t, "customer_name", view.CustomerColumn)

	suggestion, ok := SuggestColumn("amount")
	require.True(t, ok)
	assert.Equal(t, "total_num", suggestion)

	_, ok = SuggestColumn("nonsense")
	assert.False(t, ok)
}
