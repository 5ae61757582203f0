package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaContextCoversAllViews(t *testing.T) {
	tables := SchemaContext()

	names := map[string]bool{}
	for _, tbl := range tables {
		names[tbl.TableName] = true
		assert.NotEmpty(t, tbl.Columns, "view %s has no columns", tbl.TableName)
	}

	for _, expected := range []string{
		"v_sales2022", "v_sales2023", "v_sales2024", "v_sales2025",
		"v_work_force", "v_spare_part", "v_spare_part2",
	} {
		assert.True(t, names[expected], "missing view %s", expected)
	}
}

func TestBuildUserPromptEmbedsSchemaAndRules(t *testing.T) {
	prompt, err := buildUserPrompt(Request{
		SessionID: "s1",
		Question:  "รายได้จากงานพิเศษปีนี้",
		Intent:    "sales_analysis",
		Tables:    SchemaContext(),
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, `"table_name":"v_sales2024"`)
	assert.Contains(t, prompt, "รายได้จากงานพิเศษปีนี้")
	assert.Contains(t, prompt, "sales_analysis")
	assert.Contains(t, prompt, "BETWEEN, never LIKE")
	assert.Contains(t, prompt, "single SQL query only")
}

func TestStripMarkdownSQL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SELECT 1", "SELECT 1"},
		{"fenced sql", "```sql\nSELECT 1\n```", "SELECT 1"},
		{"fenced bare", "```\nSELECT 1\n```", "SELECT 1"},
		{"surrounding whitespace", "  \nSELECT 1\n ", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdownSQL(tt.in))
		})
	}
}
