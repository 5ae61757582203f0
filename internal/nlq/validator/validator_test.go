package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	"github.com/hvacops-nlq/server/internal/nlq/composer"
	"github.com/hvacops-nlq/server/internal/nlq/model"
)

func TestValidateAcceptsReadOnlySelect(t *testing.T) {
	v := New()

	report := v.Validate("SELECT job_no, customer_name, total_num FROM v_sales2024 WHERE customer_name ILIKE '%CLARION%' ORDER BY total_num DESC LIMIT 100")

	assert.True(t, report.OK)
	assert.Empty(t, report.Issues)
}

func TestValidateRejectsDelete(t *testing.T) {
	v := New()

	report := v.Validate("DELETE FROM v_sales2024")

	require.False(t, report.OK)
	kinds := issueKinds(report)
	assert.Contains(t, kinds, IssueNotReadOnly)
	assert.Contains(t, kinds, IssueForbiddenWord)
}

func TestValidateRejectsSecondStatement(t *testing.T) {
	v := New()

	report := v.Validate("SELECT job_no FROM v_sales2024; UPDATE v_sales2024 SET total_num = 0")

	require.False(t, report.OK)
	kinds := issueKinds(report)
	assert.Contains(t, kinds, IssueMultiStatement)
	assert.Contains(t, kinds, IssueForbiddenWord)
}

func TestValidateRejectsUnknownTable(t *testing.T) {
	v := New()

	report := v.Validate("SELECT name FROM users")

	require.False(t, report.OK)
	assert.Contains(t, issueKinds(report), IssueUnknownTable)
}

func TestValidateUnknownColumnSuggestsSynonym(t *testing.T) {
	v := New()

	report := v.Validate("SELECT amount FROM v_sales2024")

	require.False(t, report.OK)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, IssueUnknownColumn, report.Issues[0].Kind)
	assert.Equal(t, "total_num", report.Issues[0].Suggestion)
}

func TestValidateIgnoresKeywordsInsideLiterals(t *testing.T) {
	v := New()

	report := v.Validate("SELECT job_no FROM v_sales2024 WHERE customer_name ILIKE '%DROP UPDATE CO LTD%'")

	assert.True(t, report.OK, "quoted literals are opaque: %+v", report.Issues)
}

func TestValidateRejectsCommentMarkers(t *testing.T) {
	v := New()

	report := v.Validate("SELECT job_no FROM v_sales2024 -- trailing")
	assert.False(t, report.OK)

	report = v.Validate("SELECT job_no /* x */ FROM v_sales2024")
	assert.False(t, report.OK)
}

func TestValidateRejectsEmptyStatement(t *testing.T) {
	v := New()

	report := v.Validate("   ")

	require.False(t, report.OK)
	assert.Equal(t, IssueEmpty, report.Issues[0].Kind)
}

// Every catalog entry, composed with a full entity bag, must pass validation.
// A failure here means the catalog and the whitelist drifted apart.
func TestEveryCatalogTemplateValidates(t *testing.T) {
	c, err := catalog.New()
	require.NoError(t, err)
	cp := composer.New(model.ComposerConfig{DefaultLimit: 100, MaxLimit: 500}, 2025)
	v := New()

	entities := model.EntityBag{
		Years:     []int{2024},
		Months:    []int{8},
		Customers: []string{"CLARION"},
		Products:  []string{"EKAC360"},
		TopN:      5,
	}

	for _, tmpl := range c.All() {
		out, err := cp.Compose(tmpl, entities)
		require.NoError(t, err, "template %s", tmpl.Name)

		report := v.Validate(out.SQL)
		assert.True(t, report.OK, "template %s produced invalid sql: %+v\n%s",
			tmpl.Name, report.Issues, out.SQL)
	}
}

func issueKinds(r Report) []string {
	kinds := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		kinds = append(kinds, issue.Kind)
	}
	return kinds
}
