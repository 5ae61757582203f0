// Package fallback translates questions the rule pipeline could not resolve
// confidently into SQL with an LLM. Its output is never trusted: everything
// it produces still passes the validator before leaving the pipeline.
package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/catalog"
)

// TableContext describes one whitelisted view for the prompt.
type TableContext struct {
	TableName string   `json:"table_name"`
	Columns   []string `json:"columns"`
}

// Request carries one low-confidence question into the translator.
type Request struct {
	SessionID string         `json:"session_id"`
	Question  string         `json:"question"`
	Intent    string         `json:"intent"`
	Tables    []TableContext `json:"tables"`
}

// Result is the translated statement plus provenance.
type Result struct {
	SQL   string `json:"sql"`
	Model string `json:"model"`
}

// Translator converts a natural language request into a single SQL statement.
type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}

// SchemaContext lists every whitelisted view for prompt grounding.
func SchemaContext() []TableContext {
	names := catalog.ViewNames()
	tables := make([]TableContext, 0, len(names))
	for _, name := range names {
		view, ok := catalog.LookupView(name)
		if !ok {
			continue
		}
		tables = append(tables, TableContext{TableName: view.Name, Columns: view.Columns})
	}
	return tables
}

const systemPrompt = "You convert natural language questions about an HVAC service company " +
	"into a single PostgreSQL SELECT statement. Questions may be in Thai or English; " +
	"Thai years are Buddhist era (subtract 543). Yearly sales live in per-year views. " +
	"Return ONLY SQL. No markdown, no explanation."

// buildUserPrompt renders the schema as JSON plus the hard rules the model
// must follow. The validator enforces the same rules afterwards.
func buildUserPrompt(req Request) (string, error) {
	tablesJSON, err := json.Marshal(req.Tables)
	if err != nil {
		return "", fmt.Errorf("marshal table context: %w", err)
	}
	return fmt.Sprintf(
		"Schema (JSON):\n%s\n\nDetected intent: %s\n\nQuestion:\n%s\n\nRules:\n"+
			"- Use only listed views and columns.\n"+
			"- SELECT only; never modify data.\n"+
			"- The date columns are text in YYYY-MM-DD form; filter months with BETWEEN, never LIKE.\n"+
			"- Add LIMIT 100 unless the question asks otherwise.\n"+
			"- Output a single SQL query only.",
		string(tablesJSON), req.Intent, req.Question), nil
}

// stripMarkdownSQL unwraps a ```sql fenced block if the model ignored the
// plain-text instruction.
func stripMarkdownSQL(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```sql")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
