// Package dispatch exposes the data service as a catalog of named tools with
// typed inputs and a uniform result envelope.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/data"
)

// Call names a tool and carries its raw JSON input.
type Call struct {
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input,omitempty"`
}

type Option func(*Dispatcher)

func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock sets the time used for overdue filters.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher resolves references and invokes the data service.
type Dispatcher struct {
	svc *data.Service
	log *zap.Logger
	now func() time.Time
}

func New(svc *data.Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{svc: svc, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dispatch decodes and runs one call. It never panics and never returns a
// Go error: every failure is a Result with Success false.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call) Result {
	if err := ctx.Err(); err != nil {
		return Fail("%s: %v", call.Tool, err)
	}
	in, err := Decode(call.Tool, call.Input)
	if err != nil {
		d.log.Debug("rejected tool input", zap.String("tool", call.Tool), zap.Error(err))
		if errors.Is(err, ErrUnknownTool) {
			return Fail("%v", err).With("availableTools", ToolNames())
		}
		return Fail("%v", err)
	}
	return d.Run(ctx, in)
}

// Run executes an already decoded input.
func (d *Dispatcher) Run(ctx context.Context, in Input) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool panicked", zap.String("tool", in.Tool()), zap.Any("panic", r), zap.Stack("stack"))
			res = Fail("%s: internal error: %v", in.Tool(), r)
		}
		d.log.Debug("tool call",
			zap.String("tool", in.Tool()),
			zap.Bool("success", res.Success),
			zap.Duration("elapsed", time.Since(start)))
	}()
	if err := ctx.Err(); err != nil {
		return Fail("%s: %v", in.Tool(), err)
	}

	switch in := in.(type) {
	case *CreateProjectInput:
		return d.createProject(in)
	case *UpdateProjectInput:
		return d.updateProject(in)
	case *DeleteProjectInput:
		return d.deleteProject(in)
	case *ListProjectsInput:
		return d.listProjects(in)
	case *SetActiveProjectInput:
		return d.setActiveProject(in)
	case *ProjectStatusInput:
		return d.projectStatus(in)

	case *CreateMilestoneInput:
		return d.createMilestone(in)
	case *UpdateMilestoneInput:
		return d.updateMilestone(in)
	case *DeleteMilestoneInput:
		return d.deleteMilestone(in)
	case *ListMilestonesInput:
		return d.listMilestones(in)

	case *CreateTaskInput:
		return d.createTask(in)
	case *UpdateTaskInput:
		return d.updateTask(in)
	case *DeleteTaskInput:
		return d.deleteTask(in)
	case *ListTasksInput:
		return d.listTasks(in)
	case *FindTaskInput:
		return d.findTask(in)
	case *CompleteTaskInput:
		return d.completeTask(in)
	case *AddFollowUpInput:
		return d.addFollowUp(in)
	case *CompleteFollowUpInput:
		return d.completeFollowUp(in)
	case *LinkTaskInput:
		return d.linkTask(in)
	case *UnlinkTaskInput:
		return d.unlinkTask(in)
	case *LinkRequirementInput:
		return d.linkRequirement(in)

	case *CreateRequirementInput:
		return d.createRequirement(in)
	case *UpdateRequirementInput:
		return d.updateRequirement(in)
	case *DeleteRequirementInput:
		return d.deleteRequirement(in)
	case *ListRequirementsInput:
		return d.listRequirements(in)
	case *FindRequirementInput:
		return d.findRequirement(in)
	case *AddTraceLinkInput:
		return d.addTraceLink(in)
	case *RemoveTraceLinkInput:
		return d.removeTraceLink(in)
	case *ClearSuspectInput:
		return d.clearSuspect(in)
	case *SuspectRequirementsInput:
		return d.suspectRequirements()
	case *AnalyzeImpactInput:
		return d.analyzeImpact(in)
	case *CoverageReportInput:
		return d.coverageReport()

	case *CreateBaselineInput:
		return d.createBaseline(in)
	case *LockBaselineInput:
		return d.lockBaseline(in)
	case *ListBaselinesInput:
		return d.listBaselines()
	case *CompareBaselineInput:
		return d.compareBaseline(in)

	case *CreateNoteInput:
		return d.createNote(in)
	case *UpdateNoteInput:
		return d.updateNote(in)
	case *DeleteNoteInput:
		return d.deleteNote(in)
	case *ListNotesInput:
		return d.listNotes(in)

	case *AnalyzeScheduleInput:
		return d.analyzeSchedule(in)
	case *AnalyzeRisksInput:
		return d.analyzeRisks(in)
	case *StatisticsInput:
		return d.statistics()
	}
	return Fail("%s: no handler for tool", in.Tool())
}

// finish converts a mutation's error into the envelope. A failed save keeps
// the success result and reports the error as a warning.
func (d *Dispatcher) finish(res Result, err error) Result {
	switch {
	case err == nil:
		return res
	case errors.Is(err, data.ErrPersist):
		res.Warning = err.Error()
		return res
	default:
		return d.fail(err)
	}
}

func (d *Dispatcher) fail(err error) Result {
	if le, ok := asLookup(err); ok {
		return Fail("%s", le.Error()).With(le.hintKey, le.hints)
	}
	return Fail("%s", err.Error())
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func ptr[T any](v T) *T { return &v }
