package model

// QueryInput is the public entry payload for one question.
type QueryInput struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// ResolvedQuery is the pipeline's validated output: SQL safe to hand to the
// executor collaborator, plus everything the caller needs to explain it.
type ResolvedQuery struct {
	SQL              string            `json:"sql"`
	Intent           string            `json:"intent"`
	Confidence       float64           `json:"confidence"`
	Entities         EntityBag         `json:"entities"`
	TemplateUsed     string            `json:"template_used"`
	ResolvedQuestion string            `json:"resolved_question"`
	References       map[string]string `json:"resolved_references,omitempty"`
	IsFollowUp       bool              `json:"is_follow_up"`
	Warnings         []string          `json:"warnings,omitempty"`
	FallbackUsed     bool              `json:"fallback_used"`
}

// PipelineState stores per-invocation state for the resolution graph.
// Concurrency model:
//   - Registered as graph local state via compose.WithGenLocalState.
//   - All reads/writes happen only inside state handlers or compose.ProcessState,
//     which the graph serializes, so no additional locking is required.
type PipelineState struct {
	SessionID          string
	OriginalText       string
	ResolvedText       string
	ResolvedReferences map[string]string
	IsFollowUp         bool
	PreviousIntent     string
	History            []ConversationTurn
	Entities           EntityBag
	Classification     *ClassificationResult
	Warnings           []string
	FallbackUsed       bool
}

// AddWarning appends a warning tag once.
func (s *PipelineState) AddWarning(tag string) {
	for _, w := range s.Warnings {
		if w == tag {
			return
		}
	}
	s.Warnings = append(s.Warnings, tag)
}
