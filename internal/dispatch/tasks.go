package dispatch

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/match"
	"github.com/jorge-barreto/reqtrack/internal/model"
)

const defaultFindLimit = 5

type taskMatch struct {
	Task  model.Task `json:"task"`
	Score float64    `json:"score"`
}

func (d *Dispatcher) createTask(in *CreateTaskInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	var milestone data.MilestoneRef
	if strings.TrimSpace(in.Milestone) != "" {
		if milestone, err = d.milestone(in.Milestone, pid); err != nil {
			return d.fail(err)
		}
	}
	var parentID string
	if strings.TrimSpace(in.ParentTask) != "" {
		parent, err := d.task(in.ParentTask)
		if err != nil {
			return d.fail(err)
		}
		parentID = parent.ID
	}
	t, err := d.svc.AddTask(data.TaskInput{
		Title:             in.Title,
		Description:       in.Description,
		Status:            in.status,
		Priority:          in.priority,
		DueDate:           in.due,
		StartDate:         in.start,
		Assignee:          in.Assignee,
		EstimatedHours:    in.EstimatedHours,
		ProjectID:         pid,
		ParentTaskID:      parentID,
		LinkedMilestoneID: milestone.Milestone.ID,
		Tags:              in.Tags,
	})
	if !data.Applied(err) {
		return d.fail(err)
	}
	msg := fmt.Sprintf("Created task %q", t.Title)
	if t.LinkedMilestoneID != "" {
		msg += fmt.Sprintf(" linked to milestone %q", milestone.Milestone.Name)
	}
	return d.finish(OK(msg).With("task", t), err)
}

func (d *Dispatcher) updateTask(in *UpdateTaskInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	patch := data.TaskPatch{
		Title:          in.Title,
		Description:    in.Description,
		Status:         in.status,
		Priority:       in.priority,
		DueDate:        in.due,
		StartDate:      in.start,
		Assignee:       in.Assignee,
		EstimatedHours: in.EstimatedHours,
		Tags:           in.Tags,
	}
	scope := t.ProjectID
	if in.Project != nil {
		pid, err := d.projectID(*in.Project)
		if err != nil {
			return d.fail(err)
		}
		patch.ProjectID = &pid
		scope = pid
	}
	if in.ParentTask != nil {
		patch.ParentTaskID = ptr("")
		if strings.TrimSpace(*in.ParentTask) != "" {
			parent, err := d.task(*in.ParentTask)
			if err != nil {
				return d.fail(err)
			}
			patch.ParentTaskID = &parent.ID
		}
	}
	if in.Milestone != nil {
		patch.LinkedMilestoneID = ptr("")
		if strings.TrimSpace(*in.Milestone) != "" {
			m, err := d.milestone(*in.Milestone, scope)
			if err != nil {
				return d.fail(err)
			}
			patch.LinkedMilestoneID = &m.Milestone.ID
		}
	}
	t, err = d.svc.UpdateTask(t.ID, patch)
	return d.finish(OK(fmt.Sprintf("Updated task %q", t.Title)).With("task", t), err)
}

func (d *Dispatcher) deleteTask(in *DeleteTaskInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.DeleteTask(t.ID)
	if err == nil && !removed {
		return Fail("task %q no longer exists", t.Title)
	}
	msg := fmt.Sprintf("Deleted task %q", t.Title)
	if n := len(t.SubtaskIDs); n > 0 {
		msg += fmt.Sprintf(", %s detached", plural(n, "subtask"))
	}
	return d.finish(OK(msg).With("taskId", t.ID), err)
}

func (d *Dispatcher) listTasks(in *ListTasksInput) Result {
	var tasks []model.Task
	pid := ""
	switch {
	case in.AllProjects:
		tasks = d.svc.Tasks()
	case strings.TrimSpace(in.Project) != "":
		p, err := d.project(in.Project)
		if err != nil {
			return d.fail(err)
		}
		pid = p.ID
		tasks = d.svc.TasksInProject(p.ID)
	default:
		tasks = d.svc.TasksByActiveProject()
	}
	milestoneID := ""
	if strings.TrimSpace(in.Milestone) != "" {
		m, err := d.milestone(in.Milestone, pid)
		if err != nil {
			return d.fail(err)
		}
		milestoneID = m.Milestone.ID
	}
	now := d.now()
	out := []model.Task{}
	for _, t := range tasks {
		switch {
		case in.status != "" && t.Status != in.status:
		case in.priority != "" && t.Priority != in.priority:
		case in.Assignee != "" && !strings.EqualFold(t.Assignee, strings.TrimSpace(in.Assignee)):
		case milestoneID != "" && t.LinkedMilestoneID != milestoneID:
		case in.Overdue && !t.Overdue(now):
		default:
			out = append(out, t)
		}
	}
	return OK(plural(len(out), "task")).With("tasks", out).With("count", len(out))
}

func (d *Dispatcher) findTask(in *FindTaskInput) Result {
	limit := in.Limit
	if limit == 0 {
		limit = defaultFindLimit
	}
	ranked := match.Rank(in.Query, d.svc.TasksByActiveProject(), taskTitle)
	if len(ranked) == 0 {
		ranked = match.Rank(in.Query, d.svc.Tasks(), taskTitle)
	}
	if len(ranked) == 0 {
		_, err := pick("task", "availableTasks", in.Query, d.svc.TasksByActiveProject(), d.svc.Tasks(), taskTitle, taskCandidate)
		return d.fail(err)
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]taskMatch, len(ranked))
	for i, s := range ranked {
		out[i] = taskMatch{Task: s.Item, Score: s.Score}
	}
	return OK(fmt.Sprintf("Best match: %q", out[0].Task.Title)).With("matches", out).With("count", len(out))
}

func (d *Dispatcher) completeTask(in *CompleteTaskInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	t, err = d.svc.CompleteTask(t.ID)
	if !data.Applied(err) {
		return d.fail(err)
	}
	res := OK(fmt.Sprintf("Completed task %q", t.Title)).With("task", t)
	if t.LinkedMilestoneID != "" {
		if pr, perr := d.svc.MilestoneProgress(t.LinkedMilestoneID); perr == nil {
			res = res.With("milestoneProgress", pr)
		}
	}
	return d.finish(res, err)
}

func (d *Dispatcher) addFollowUp(in *AddFollowUpInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	f, err := d.svc.AddFollowUp(t.ID, in.Content, in.due)
	res := OK(fmt.Sprintf("Added follow-up to %q", t.Title)).
		With("followUp", f).
		With("taskId", t.ID)
	return d.finish(res, err)
}

func (d *Dispatcher) completeFollowUp(in *CompleteFollowUpInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	f, err := followUp(t, in.FollowUp)
	if err != nil {
		return d.fail(err)
	}
	f, err = d.svc.CompleteFollowUp(t.ID, f.ID)
	res := OK(fmt.Sprintf("Completed follow-up %q", f.Content)).
		With("followUp", f).
		With("taskId", t.ID)
	return d.finish(res, err)
}

func (d *Dispatcher) linkTask(in *LinkTaskInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	m, err := d.milestone(in.Milestone, t.ProjectID)
	if err != nil {
		return d.fail(err)
	}
	t, err = d.svc.LinkTaskToMilestone(t.ID, m.Milestone.ID)
	if !data.Applied(err) {
		return d.fail(err)
	}
	res := OK(fmt.Sprintf("Linked task %q to milestone %q", t.Title, m.Milestone.Name)).
		With("task", t).
		With("milestoneId", m.Milestone.ID)
	if pr, perr := d.svc.MilestoneProgress(m.Milestone.ID); perr == nil {
		res = res.With("milestoneProgress", pr)
	}
	return d.finish(res, err)
}

func (d *Dispatcher) unlinkTask(in *UnlinkTaskInput) Result {
	t, err := d.task(in.Task)
	if err != nil {
		return d.fail(err)
	}
	if t.LinkedMilestoneID == "" {
		return OK(fmt.Sprintf("Task %q is not linked to a milestone", t.Title)).With("task", t)
	}
	t, err = d.svc.UnlinkTaskFromMilestone(t.ID)
	return d.finish(OK(fmt.Sprintf("Unlinked task %q", t.Title)).With("task", t), err)
}

func (d *Dispatcher) linkRequirement(in *LinkRequirementInput) Result {
	r, err := d.requirement(in.Requirement)
	if err != nil {
		return d.fail(err)
	}
	ref, err := d.milestone(in.Milestone, r.ProjectID)
	if err != nil {
		return d.fail(err)
	}
	m, err := d.svc.LinkRequirementToMilestone(r.ID, ref.Milestone.ID)
	res := OK(fmt.Sprintf("Linked %s to milestone %q", r.Key, m.Name)).With("milestone", m)
	return d.finish(res, err)
}
