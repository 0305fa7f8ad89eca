// Package runner executes multi-step tool plans. Steps run in order and each
// one commits on its own: a failed step does not stop later steps and
// nothing is rolled back.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/dispatch"
	"github.com/jorge-barreto/reqtrack/internal/ux"
)

// Dispatcher runs one tool call.
type Dispatcher interface {
	Dispatch(ctx context.Context, call dispatch.Call) dispatch.Result
}

// Runner drives a plan through a Dispatcher.
type Runner struct {
	Dispatcher Dispatcher
	Log        *zap.Logger
	// Verbose prints a line per step.
	Verbose bool
}

// Step is one executed (or unexecuted) call of a plan.
type Step struct {
	Index   int             `json:"index"`
	Call    dispatch.Call   `json:"call"`
	Result  dispatch.Result `json:"result"`
	Skipped bool            `json:"skipped,omitempty"`
}

// Report is the outcome of a plan. Every call of the plan has a step.
type Report struct {
	Steps       []Step        `json:"steps"`
	Interrupted bool          `json:"interrupted,omitempty"`
	Elapsed     time.Duration `json:"elapsed"`
}

// Failed returns the indices of steps that did not succeed, including steps
// skipped after an interruption.
func (r Report) Failed() []int {
	var out []int
	for _, s := range r.Steps {
		if !s.Result.Success {
			out = append(out, s.Index)
		}
	}
	return out
}

// Succeeded counts successful steps.
func (r Report) Succeeded() int {
	return len(r.Steps) - len(r.Failed())
}

// Retry returns the calls of the failed steps, in plan order, so a caller
// can re-drive just that subset.
func (r Report) Retry() []dispatch.Call {
	var out []dispatch.Call
	for _, i := range r.Failed() {
		out = append(out, r.Steps[i].Call)
	}
	return out
}

// Warnings lists the warnings of successful steps.
func (r Report) Warnings() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Result.Warning != "" {
			out = append(out, s.Result.Warning)
		}
	}
	return out
}

// Summary renders one line per step.
func (r Report) Summary() string {
	var b strings.Builder
	for _, s := range r.Steps {
		switch {
		case s.Skipped:
			fmt.Fprintf(&b, "%d. %s: skipped\n", s.Index+1, s.Call.Tool)
		case s.Result.Success:
			fmt.Fprintf(&b, "%d. %s: %s\n", s.Index+1, s.Call.Tool, s.Result.Message())
		default:
			fmt.Fprintf(&b, "%d. %s failed: %s\n", s.Index+1, s.Call.Tool, s.Result.Error)
		}
	}
	return b.String()
}

// Run executes plan in order. Cancellation stops before the next step;
// steps already run stay committed and the rest are reported as skipped.
func (r *Runner) Run(ctx context.Context, plan []dispatch.Call) Report {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()
	rep := Report{Steps: make([]Step, 0, len(plan))}
	total := len(plan)

	for i, call := range plan {
		if err := ctx.Err(); err != nil {
			rep.Interrupted = true
			for j := i; j < total; j++ {
				rep.Steps = append(rep.Steps, Step{
					Index:   j,
					Call:    plan[j],
					Result:  dispatch.Fail("not run: %v", err),
					Skipped: true,
				})
				if r.Verbose {
					ux.StepSkip(j, plan[j].Tool, err.Error())
				}
			}
			log.Info("plan interrupted", zap.Int("completed", i), zap.Int("total", total))
			break
		}

		if r.Verbose {
			ux.StepHeader(i, total, call.Tool)
		}
		stepStart := time.Now()
		res := r.Dispatcher.Dispatch(ctx, call)
		rep.Steps = append(rep.Steps, Step{Index: i, Call: call, Result: res})

		if !res.Success {
			log.Warn("plan step failed", zap.Int("step", i+1), zap.String("tool", call.Tool), zap.String("error", res.Error))
			if r.Verbose {
				ux.StepFail(i, call.Tool, res.Error)
			}
			continue
		}
		if res.Warning != "" {
			log.Warn("plan step warning", zap.Int("step", i+1), zap.String("tool", call.Tool), zap.String("warning", res.Warning))
		}
		if r.Verbose {
			ux.StepComplete(i, res.Message(), res.Warning, time.Since(stepStart))
		}
	}

	rep.Elapsed = time.Since(start)
	if r.Verbose {
		ux.PlanDone(total, len(rep.Failed()))
	}
	return rep
}

// DryRun prints the plan without executing it.
func DryRun(plan []dispatch.Call) {
	fmt.Printf("\n%sDry run: %d steps%s\n\n", ux.Bold, len(plan), ux.Reset)
	for i, c := range plan {
		fmt.Printf("  %s%d.%s %s%s%s", ux.Cyan, i+1, ux.Reset, ux.Bold, c.Tool, ux.Reset)
		if len(c.Input) > 0 {
			fmt.Printf(" %s", c.Input)
		}
		fmt.Println()
		if _, ok := dispatch.Lookup(c.Tool); !ok {
			fmt.Printf("     %sunknown tool%s\n", ux.Red, ux.Reset)
		}
	}
	fmt.Println()
}
