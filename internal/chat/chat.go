// Package chat turns natural-language requests into tool plans using an
// external language model and runs them against the workspace.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/dispatch"
	"github.com/jorge-barreto/reqtrack/internal/llm"
	"github.com/jorge-barreto/reqtrack/internal/runner"
)

// Assistant answers requests. The model only proposes a plan; every step is
// validated and resolved by the dispatcher against live state.
type Assistant struct {
	Client  llm.Client
	Service *data.Service
	Runner  *runner.Runner
	Log     *zap.Logger
	Now     func() time.Time
}

// Reply is the outcome of one request.
type Reply struct {
	Intent  string
	Message string
	Plan    []dispatch.Call
	Report  *runner.Report // nil when nothing ran
	Changes []data.Change
	Help    bool // the model's reply was unusable and Message is HelpMessage
}

func (a *Assistant) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *Assistant) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Plan asks the model for a plan without running it. A malformed reply is
// not an error: the returned Reply carries HelpMessage instead.
func (a *Assistant) Plan(ctx context.Context, request string) (Reply, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return Reply{Help: true, Message: HelpMessage}, nil
	}
	snap := Gather(a.Service, a.now())
	prompt := buildPrompt(dispatch.Catalog(), snap.Render(), request)

	start := time.Now()
	out, err := a.Client.Complete(ctx, prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("planning request: %w", err)
	}
	a.logger().Debug("model replied", zap.Duration("elapsed", time.Since(start)), zap.Int("bytes", len(out)))

	plan, err := ParsePlan(out)
	if errors.Is(err, ErrMalformed) {
		a.logger().Warn("unusable model reply", zap.Error(err))
		return Reply{Help: true, Message: HelpMessage}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Intent: plan.Intent, Message: plan.Message, Plan: plan.Calls}, nil
}

// Execute runs a planned reply and records the changes it made.
func (a *Assistant) Execute(ctx context.Context, reply Reply) Reply {
	if len(reply.Plan) == 0 {
		return reply
	}
	var mu sync.Mutex
	unsubscribe := a.Service.Subscribe(func(c data.Change) {
		mu.Lock()
		reply.Changes = append(reply.Changes, c)
		mu.Unlock()
	})
	rep := a.Runner.Run(ctx, reply.Plan)
	unsubscribe()

	reply.Report = &rep
	a.logger().Info("plan finished",
		zap.String("intent", reply.Intent),
		zap.Int("steps", len(rep.Steps)),
		zap.Int("failed", len(rep.Failed())),
		zap.Int("changes", len(reply.Changes)))
	return reply
}

// Handle plans and runs request.
func (a *Assistant) Handle(ctx context.Context, request string) (Reply, error) {
	reply, err := a.Plan(ctx, request)
	if err != nil {
		return reply, err
	}
	return a.Execute(ctx, reply), nil
}
