// Package pipeline wires the resolution stages into an eino graph:
// reference resolution, entity extraction, intent classification, template
// composition or LLM fallback, and final SQL validation.
package pipeline

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	"github.com/hvacops-nlq/server/internal/nlq/composer"
	"github.com/hvacops-nlq/server/internal/nlq/conversation"
	"github.com/hvacops-nlq/server/internal/nlq/extractor"
	"github.com/hvacops-nlq/server/internal/nlq/fallback"
	"github.com/hvacops-nlq/server/internal/nlq/intent"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	"github.com/hvacops-nlq/server/internal/nlq/validator"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Deps carries every collaborator the graph needs. Translator and Metrics
// are optional; everything else is required.
type Deps struct {
	Config     model.PipelineConfig
	Extractor  *extractor.Extractor
	Classifier *intent.Classifier
	Catalog    *catalog.Catalog
	Composer   *composer.Composer
	Validator  *validator.Validator
	Manager    *conversation.Manager
	Translator fallback.Translator
	Metrics    *Metrics
}

func (d *Deps) check() error {
	if d.Extractor == nil || d.Classifier == nil || d.Catalog == nil ||
		d.Composer == nil || d.Validator == nil || d.Manager == nil {
		return fmt.Errorf("pipeline deps are not fully initialized")
	}
	return nil
}

// graphBuilder constructs the resolution graph node by node.
type graphBuilder struct {
	deps  *Deps
	graph *compose.Graph[model.QueryInput, *model.ResolvedQuery]
}

// BuildGraph constructs and compiles the resolution graph.
func BuildGraph(ctx context.Context, d *Deps) (compose.Runnable[model.QueryInput, *model.ResolvedQuery], error) {
	if d == nil {
		return nil, fmt.Errorf("pipeline deps are nil")
	}
	if err := d.check(); err != nil {
		return nil, err
	}

	b := &graphBuilder{
		deps: d,
		graph: compose.NewGraph[model.QueryInput, *model.ResolvedQuery](
			compose.WithGenLocalState(func(ctx context.Context) *model.PipelineState {
				return &model.PipelineState{}
			}),
		),
	}

	b.addNodes()
	b.addEdges()
	if err := b.addBranches(); err != nil {
		return nil, err
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling resolution graph")
		return nil, fmt.Errorf("error compiling resolution graph: %w", err)
	}

	logx.Debug().Msg("Resolution graph compiled successfully")
	return runnable, nil
}

func (b *graphBuilder) addNodes() {
	b.graph.AddLambdaNode(NodeResolver,
		NewResolverNode(b.deps.Manager),
		compose.WithStatePreHandler(NewResolverPreHandler()),
		compose.WithStatePostHandler(NewResolverPostHandler()),
	)

	b.graph.AddLambdaNode(NodeExtractor,
		NewExtractorNode(b.deps),
		compose.WithStatePostHandler(NewExtractorPostHandler()),
	)

	b.graph.AddLambdaNode(NodeClassifier,
		NewClassifierNode(b.deps),
		compose.WithStatePostHandler(NewClassifierPostHandler()),
	)

	b.graph.AddLambdaNode(NodeComposer, NewComposerNode(b.deps))
	b.graph.AddLambdaNode(NodeFallback, NewFallbackNode(b.deps))
	b.graph.AddLambdaNode(NodeValidator, NewValidatorNode(b.deps))
}

func (b *graphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, NodeResolver},
		{NodeResolver, NodeExtractor},
		{NodeExtractor, NodeClassifier},
		{NodeComposer, NodeValidator},
		{NodeFallback, NodeValidator},
		{NodeValidator, compose.END},
	}
	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches routes low-confidence classifications to the LLM fallback.
// Greetings never reach the LLM.
func (b *graphBuilder) addBranches() error {
	routeBranch := compose.NewGraphBranch(
		b.newRouteCondition(),
		map[string]bool{
			NodeComposer: true,
			NodeFallback: true,
		},
	)
	if err := b.graph.AddBranch(NodeClassifier, routeBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding fallback routing branch")
		return fmt.Errorf("error adding fallback routing branch: %w", err)
	}
	return nil
}

func (b *graphBuilder) newRouteCondition() func(context.Context, model.ClassificationResult) (string, error) {
	fb := b.deps.Config.Fallback
	return func(ctx context.Context, cr model.ClassificationResult) (string, error) {
		if cr.Intent == model.IntentGreeting {
			return NodeComposer, nil
		}
		if fb.Enabled && cr.Confidence < fb.ConfidenceThreshold {
			logx.Debug().
				Str("intent", cr.Intent).
				Float64("confidence", cr.Confidence).
				Float64("threshold", fb.ConfidenceThreshold).
				Msg("routing to llm fallback")
			return NodeFallback, nil
		}
		return NodeComposer, nil
	}
}
