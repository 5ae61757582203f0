// Package validator is the last gate before SQL leaves the pipeline. It
// enforces read-only statements over whitelisted views and columns, for both
// template-composed and LLM-generated SQL. Rejection is terminal for the
// attempt; nothing downstream may patch a rejected statement.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Issue is one reason a statement was rejected. Suggestion carries the
// whitelisted column a rejected identifier most likely meant.
type Issue struct {
	Kind       string `json:"kind"`
	Detail     string `json:"detail"`
	Suggestion string `json:"suggestion,omitempty"`
}

const (
	IssueNotReadOnly    = "not_read_only"
	IssueForbiddenWord  = "forbidden_keyword"
	IssueMultiStatement = "multi_statement"
	IssueUnknownTable   = "unknown_table"
	IssueUnknownColumn  = "unknown_column"
	IssueEmpty          = "empty_statement"
)

// Report is the validation outcome. OK is true only when no issue was found.
type Report struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

var (
	literalRe = regexp.MustCompile(`'(?:[^']|'')*'`)
	identRe   = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	tableRe   = regexp.MustCompile(`(?i)\b(?:FROM|JOIN)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	aliasRe   = regexp.MustCompile(`(?i)\bAS\s+([A-Za-z_][A-Za-z0-9_]*)`)

	forbiddenRe = regexp.MustCompile(`(?i)\b(DROP|DELETE|UPDATE|INSERT|ALTER|TRUNCATE|CREATE|GRANT|REVOKE|MERGE|CALL|EXECUTE|COPY|VACUUM)\b`)
)

// sqlWords are keywords and functions permitted to appear as bare identifiers.
var sqlWords = map[string]bool{
	"select": true, "from": true, "where": true, "and": true, "or": true,
	"not": true, "in": true, "as": true, "group": true, "by": true,
	"order": true, "limit": true, "offset": true, "having": true,
	"union": true, "all": true, "distinct": true, "on": true, "join": true,
	"left": true, "right": true, "inner": true, "outer": true, "cross": true,
	"asc": true, "desc": true, "between": true, "like": true, "ilike": true,
	"is": true, "null": true, "true": true, "false": true, "case": true,
	"when": true, "then": true, "else": true, "end": true, "with": true,
	"sum": true, "count": true, "avg": true, "max": true, "min": true,
	"round": true, "coalesce": true, "substr": true, "substring": true,
	"extract": true, "date_trunc": true, "cast": true, "nullif": true,
	"exists": true,
}

// Validate checks one statement against the safety rules. It never rewrites
// the input; a failed statement must be re-composed from scratch.
func (v *Validator) Validate(sql string) Report {
	var issues []Issue

	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return reject(Issue{Kind: IssueEmpty, Detail: "statement is empty"})
	}

	// Literals are opaque to every rule below; a customer named "UPDATE CO"
	// must not trip the keyword scan.
	stripped := literalRe.ReplaceAllString(trimmed, "''")

	if strings.Contains(stripped, "--") || strings.Contains(stripped, "/*") {
		issues = append(issues, Issue{Kind: IssueForbiddenWord, Detail: "comment markers are not allowed"})
	}
	if rest := strings.TrimRight(stripped, "; \t\n"); strings.Contains(rest, ";") {
		issues = append(issues, Issue{Kind: IssueMultiStatement, Detail: "only a single statement is allowed"})
	}

	upper := strings.ToUpper(stripped)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		issues = append(issues, Issue{Kind: IssueNotReadOnly, Detail: "statement must start with SELECT or WITH"})
	}

	for _, kw := range forbiddenRe.FindAllString(stripped, -1) {
		issues = append(issues, Issue{
			Kind:   IssueForbiddenWord,
			Detail: fmt.Sprintf("forbidden keyword %s", strings.ToUpper(kw)),
		})
	}

	tables, tableIssues := referencedTables(stripped)
	issues = append(issues, tableIssues...)
	issues = append(issues, checkColumns(stripped, tables)...)

	if len(issues) > 0 {
		logx.Warn().
			Int("issues", len(issues)).
			Str("first_issue", issues[0].Detail).
			Msg("sql rejected by validator")
		return Report{OK: false, Issues: issues}
	}
	return Report{OK: true}
}

func reject(issue Issue) Report {
	return Report{OK: false, Issues: []Issue{issue}}
}

// referencedTables resolves every FROM/JOIN target against the view whitelist.
func referencedTables(stripped string) ([]catalog.View, []Issue) {
	var views []catalog.View
	var issues []Issue

	matches := tableRe.FindAllStringSubmatch(stripped, -1)
	if len(matches) == 0 {
		issues = append(issues, Issue{Kind: IssueUnknownTable, Detail: "no table referenced"})
		return nil, issues
	}
	for _, m := range matches {
		view, ok := catalog.LookupView(m[1])
		if !ok {
			issues = append(issues, Issue{
				Kind:   IssueUnknownTable,
				Detail: fmt.Sprintf("table %s is not a whitelisted view", m[1]),
			})
			continue
		}
		views = append(views, view)
	}
	return views, issues
}

// checkColumns verifies every bare identifier is a keyword, an alias declared
// in the statement, a referenced view, or a column of a referenced view.
func checkColumns(stripped string, views []catalog.View) []Issue {
	if len(views) == 0 {
		return nil
	}

	aliases := map[string]bool{}
	for _, m := range aliasRe.FindAllStringSubmatch(stripped, -1) {
		aliases[strings.ToLower(m[1])] = true
	}
	viewNames := map[string]bool{}
	for _, view := range views {
		viewNames[strings.ToLower(view.Name)] = true
	}

	var issues []Issue
	flagged := map[string]bool{}
	for _, ident := range identRe.FindAllString(stripped, -1) {
		lower := strings.ToLower(ident)
		if sqlWords[lower] || aliases[lower] || viewNames[lower] || flagged[lower] {
			continue
		}
		if columnAllowed(lower, views) {
			continue
		}
		flagged[lower] = true
		issue := Issue{
			Kind:   IssueUnknownColumn,
			Detail: fmt.Sprintf("column %s is not in the whitelist for the referenced views", ident),
		}
		if suggestion, ok := catalog.SuggestColumn(lower); ok {
			issue.Suggestion = suggestion
			issue.Detail += fmt.Sprintf("; did you mean %s", suggestion)
		}
		issues = append(issues, issue)
	}
	return issues
}

func columnAllowed(col string, views []catalog.View) bool {
	for _, view := range views {
		if view.HasColumn(col) {
			return true
		}
	}
	return false
}
