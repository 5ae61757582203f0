package pipeline

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/hvacops-nlq/server/pkg/logger"
)

// newGraphCallbacks logs node lifecycle events for every graph run. All
// pipeline nodes are lambdas, so the generic handler is enough; typed model
// callbacks live inside the fallback translator.
func newGraphCallbacks() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info != nil {
				logx.Debug().
					Str("node", info.Name).
					Str("component", string(info.Component)).
					Msg("pipeline node start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info != nil {
				logx.Debug().
					Str("node", info.Name).
					Msg("pipeline node end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if info != nil {
				logx.Error().
					Err(err).
					Str("node", info.Name).
					Msg("pipeline node error")
			}
			return ctx
		}).
		Build()
}
