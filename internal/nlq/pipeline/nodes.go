package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/conversation"
	"github.com/hvacops-nlq/server/internal/nlq/fallback"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Node names in the resolution graph.
const (
	NodeResolver   = "Resolver"
	NodeExtractor  = "Extractor"
	NodeClassifier = "Classifier"
	NodeComposer   = "Composer"
	NodeFallback   = "Fallback"
	NodeValidator  = "Validator"
)

// NewResolverPreHandler seeds the per-invocation state from the raw input.
func NewResolverPreHandler() func(context.Context, model.QueryInput, *model.PipelineState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.PipelineState) (model.QueryInput, error) {
		s.SessionID = in.SessionID
		s.OriginalText = in.Query
		return in, nil
	}
}

// NewResolverNode resolves reference expressions against session history.
func NewResolverNode(m *conversation.Manager) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.QueryInput) (conversation.ResolvedInput, error) {
		resolved, err := m.Resolve(ctx, in.SessionID, in.Query)
		if err != nil {
			return conversation.ResolvedInput{}, fmt.Errorf("resolve references: %w", err)
		}
		return resolved, nil
	})
}

// NewResolverPostHandler copies the resolution outcome into graph state.
func NewResolverPostHandler() func(context.Context, conversation.ResolvedInput, *model.PipelineState) (conversation.ResolvedInput, error) {
	return func(ctx context.Context, out conversation.ResolvedInput, s *model.PipelineState) (conversation.ResolvedInput, error) {
		s.ResolvedText = out.ResolvedText
		s.ResolvedReferences = out.References
		s.IsFollowUp = out.IsFollowUp
		s.PreviousIntent = out.PreviousIntent
		s.History = out.History
		return out, nil
	}
}

// NewExtractorNode extracts entities from the resolved text and, on
// follow-ups, backfills missing kinds from recent turns.
func NewExtractorNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in conversation.ResolvedInput) (model.EntityBag, error) {
		bag := d.Extractor.Extract(in.ResolvedText)
		if in.IsFollowUp {
			bag = d.Manager.MergeEntities(bag, in.History)
		}
		return bag, nil
	})
}

// NewExtractorPostHandler records the merged entity bag in graph state.
func NewExtractorPostHandler() func(context.Context, model.EntityBag, *model.PipelineState) (model.EntityBag, error) {
	return func(ctx context.Context, out model.EntityBag, s *model.PipelineState) (model.EntityBag, error) {
		s.Entities = out
		return out, nil
	}
}

// NewClassifierNode scores intents over the resolved text.
func NewClassifierNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, bag model.EntityBag) (model.ClassificationResult, error) {
		var text, previous string
		if err := compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
			text = s.ResolvedText
			previous = s.PreviousIntent
			return nil
		}); err != nil {
			return model.ClassificationResult{}, err
		}
		return d.Classifier.Classify(text, previous, bag), nil
	})
}

// NewClassifierPostHandler stores the result and flags weak classifications.
func NewClassifierPostHandler() func(context.Context, model.ClassificationResult, *model.PipelineState) (model.ClassificationResult, error) {
	return func(ctx context.Context, out model.ClassificationResult, s *model.PipelineState) (model.ClassificationResult, error) {
		s.Classification = &out
		if out.Intent != model.IntentUnknown && out.Confidence < 0.5 {
			s.AddWarning(errx.WarnClassificationAmbiguous)
		}
		return out, nil
	}
}

// NewComposerNode selects a template and composes SQL from it.
func NewComposerNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cr model.ClassificationResult) (*model.ResolvedQuery, error) {
		return d.composeFromTemplate(ctx, cr)
	})
}

// NewFallbackNode translates low-confidence questions with the LLM. Any
// failure degrades to template composition instead of failing the request.
func NewFallbackNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cr model.ClassificationResult) (*model.ResolvedQuery, error) {
		if d.Translator == nil {
			logx.Warn().Str("intent", cr.Intent).Err(errx.ErrFallbackUnavailable).
				Msg("fallback requested but no translator configured; degrading to templates")
			if err := addStateWarning(ctx, errx.WarnCompositionDegraded); err != nil {
				return nil, err
			}
			return d.composeFromTemplate(ctx, cr)
		}

		base, err := d.newBaseResult(ctx, cr)
		if err != nil {
			return nil, err
		}

		req := fallback.Request{
			Question: base.ResolvedQuestion,
			Intent:   cr.Intent,
			Tables:   fallback.SchemaContext(),
		}
		if err := compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
			req.SessionID = s.SessionID
			return nil
		}); err != nil {
			return nil, err
		}

		result, err := d.Translator.Translate(ctx, req)
		if err != nil {
			logx.Warn().Err(err).Msg("llm fallback failed; degrading to templates")
			if werr := addStateWarning(ctx, errx.WarnCompositionDegraded); werr != nil {
				return nil, werr
			}
			return d.composeFromTemplate(ctx, cr)
		}

		base.SQL = result.SQL
		base.FallbackUsed = true
		d.Metrics.observeFallback()
		if err := compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
			s.FallbackUsed = true
			return nil
		}); err != nil {
			return nil, err
		}
		return base, nil
	})
}

// NewValidatorNode is the terminal safety gate. Rejection aborts the request;
// the pipeline never patches a rejected statement.
func NewValidatorNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, rq *model.ResolvedQuery) (*model.ResolvedQuery, error) {
		if err := compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
			rq.Warnings = mergeWarnings(s.Warnings, rq.Warnings)
			return nil
		}); err != nil {
			return nil, err
		}

		if rq.SQL == "" {
			return rq, nil
		}

		report := d.Validator.Validate(rq.SQL)
		if !report.OK {
			d.Metrics.observeValidationRejected()
			details := make([]string, 0, len(report.Issues))
			for _, issue := range report.Issues {
				details = append(details, issue.Detail)
			}
			return nil, errx.WrapValidation(fmt.Errorf("%w: %s",
				errx.ErrValidationRejected, strings.Join(details, "; ")))
		}
		return rq, nil
	})
}

// newBaseResult assembles the result skeleton shared by both composition paths.
func (d *Deps) newBaseResult(ctx context.Context, cr model.ClassificationResult) (*model.ResolvedQuery, error) {
	base := &model.ResolvedQuery{
		Intent:     cr.Intent,
		Confidence: cr.Confidence,
		Entities:   cr.Entities,
	}
	err := compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
		base.ResolvedQuestion = s.ResolvedText
		base.References = s.ResolvedReferences
		base.IsFollowUp = s.IsFollowUp
		return nil
	})
	if err != nil {
		return nil, err
	}
	return base, nil
}

// composeFromTemplate runs selection and composition for the classified
// intent. Greetings and intents without a catalog entry resolve to an empty
// statement rather than an error.
func (d *Deps) composeFromTemplate(ctx context.Context, cr model.ClassificationResult) (*model.ResolvedQuery, error) {
	base, err := d.newBaseResult(ctx, cr)
	if err != nil {
		return nil, err
	}

	if cr.Intent == model.IntentGreeting {
		return base, nil
	}

	tmpl, ok := d.Catalog.SelectTemplate(cr.Intent, cr.Entities, base.ResolvedQuestion)
	if !ok {
		logx.Debug().Str("intent", cr.Intent).Err(errx.ErrTemplateNotFound).
			Msg("no catalog entry for intent")
		if err := addStateWarning(ctx, errx.WarnTemplateNotFound); err != nil {
			return nil, err
		}
		return base, nil
	}

	composed, err := d.Composer.Compose(tmpl, cr.Entities)
	if err != nil {
		return nil, err
	}

	base.SQL = composed.SQL
	base.TemplateUsed = composed.TemplateUsed
	base.Warnings = append(base.Warnings, composed.Warnings...)
	d.Metrics.observeTemplate(composed.TemplateUsed)
	return base, nil
}

func addStateWarning(ctx context.Context, tag string) error {
	return compose.ProcessState[*model.PipelineState](ctx, func(ctx context.Context, s *model.PipelineState) error {
		s.AddWarning(tag)
		return nil
	})
}

func mergeWarnings(state, result []string) []string {
	merged := append([]string(nil), state...)
	for _, w := range result {
		dup := false
		for _, existing := range merged {
			if existing == w {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, w)
		}
	}
	return merged
}
