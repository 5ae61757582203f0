package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	errx "github.com/hvacops-nlq/server/internal/core/error"
	"github.com/hvacops-nlq/server/internal/nlq/conversation"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// Pipeline is the public entry point for question resolution. Safe for
// concurrent use; turns of the same session are serialized through the
// conversation manager's per-session lock.
type Pipeline struct {
	runnable compose.Runnable[model.QueryInput, *model.ResolvedQuery]
	manager  *conversation.Manager
	metrics  *Metrics
}

func New(ctx context.Context, d *Deps) (*Pipeline, error) {
	runnable, err := BuildGraph(ctx, d)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		runnable: runnable,
		manager:  d.Manager,
		metrics:  d.Metrics,
	}, nil
}

// Resolve turns one question into validated SQL plus the interpretation that
// produced it. It does not execute the SQL and does not record the turn;
// callers run the statement and then call Record with the row count.
func (p *Pipeline) Resolve(ctx context.Context, in model.QueryInput) (*model.ResolvedQuery, error) {
	if strings.TrimSpace(in.SessionID) == "" {
		return nil, errx.New(fmt.Errorf("session id is required"), 422, "invalid query input")
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, errx.New(fmt.Errorf("query text is required"), 422, "invalid query input")
	}

	unlock := p.manager.LockSession(in.SessionID)
	defer unlock()

	start := time.Now()
	out, err := p.runnable.Invoke(ctx, in, compose.WithCallbacks(newGraphCallbacks()))
	if err != nil {
		logx.Error().Err(err).Str("session_id", in.SessionID).Msg("question resolution failed")
		return nil, err
	}

	p.metrics.observeQuestion(out.Intent, out.IsFollowUp, time.Since(start).Seconds())
	logx.Info().
		Str("session_id", in.SessionID).
		Str("intent", out.Intent).
		Float64("confidence", out.Confidence).
		Str("template", out.TemplateUsed).
		Bool("follow_up", out.IsFollowUp).
		Bool("fallback", out.FallbackUsed).
		Msg("question resolved")
	return out, nil
}

// Record completes the turn after execution. resultCount is the number of
// rows the statement returned; pass -1 when the statement never ran
// (greetings, execution skipped or failed).
func (p *Pipeline) Record(ctx context.Context, sessionID, question string, resolved *model.ResolvedQuery, resultCount int) error {
	unlock := p.manager.LockSession(sessionID)
	defer unlock()

	turn := model.ConversationTurn{
		TurnID:             uuid.NewString(),
		Question:           question,
		ResolvedQuestion:   resolved.ResolvedQuestion,
		Intent:             resolved.Intent,
		Entities:           resolved.Entities,
		SQLQuery:           resolved.SQL,
		ResultCount:        resultCount,
		Timestamp:          time.Now(),
		ResolvedReferences: resolved.References,
	}
	in := conversation.ResolvedInput{
		IsFollowUp:    resolved.IsFollowUp,
		FollowUpStyle: conversation.DetectFollowUpCategory(question),
	}
	return p.manager.Record(ctx, sessionID, turn, in)
}

// Reset drops all conversation state for a session.
func (p *Pipeline) Reset(ctx context.Context, sessionID string) error {
	unlock := p.manager.LockSession(sessionID)
	defer unlock()
	return p.manager.Reset(ctx, sessionID)
}
