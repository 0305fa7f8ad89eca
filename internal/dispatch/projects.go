package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/model"
)

type projectView struct {
	model.Project
	Active bool `json:"active"`
}

func (d *Dispatcher) createProject(in *CreateProjectInput) Result {
	p, err := d.svc.AddProject(data.ProjectInput{
		Name:          in.Name,
		Description:   in.Description,
		Status:        in.status,
		StartDate:     in.start,
		TargetEndDate: in.end,
		Tags:          in.Tags,
	})
	if !data.Applied(err) {
		return d.fail(err)
	}
	res := OK(fmt.Sprintf("Created project %q", p.Name)).With("project", p)
	if in.SetActive {
		if serr := d.svc.SetActiveProject(p.ID); serr != nil && err == nil {
			err = serr
		}
		res = res.With("activeProjectId", p.ID)
	}
	return d.finish(res, err)
}

func (d *Dispatcher) updateProject(in *UpdateProjectInput) Result {
	p, err := d.project(in.Project)
	if err != nil {
		return d.fail(err)
	}
	p, err = d.svc.UpdateProject(p.ID, data.ProjectPatch{
		Name:          in.Name,
		Description:   in.Description,
		Status:        in.status,
		StartDate:     in.start,
		TargetEndDate: in.end,
		ActualEndDate: in.actual,
		Tags:          in.Tags,
	})
	return d.finish(OK(fmt.Sprintf("Updated project %q", p.Name)).With("project", p), err)
}

func (d *Dispatcher) deleteProject(in *DeleteProjectInput) Result {
	p, err := d.project(in.Project)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.DeleteProject(p.ID)
	if err == nil && !removed {
		return Fail("project %q no longer exists", p.Name)
	}
	return d.finish(OK(fmt.Sprintf("Deleted project %q", p.Name)).With("projectId", p.ID), err)
}

func (d *Dispatcher) listProjects(in *ListProjectsInput) Result {
	active := d.svc.ActiveProjectID()
	views := []projectView{}
	for _, p := range d.svc.Projects() {
		if in.status != "" && p.Status != in.status {
			continue
		}
		views = append(views, projectView{Project: p, Active: p.ID == active})
	}
	return OK(plural(len(views), "project")).
		With("projects", views).
		With("count", len(views)).
		With("activeProjectId", active)
}

func (d *Dispatcher) setActiveProject(in *SetActiveProjectInput) Result {
	if strings.TrimSpace(in.Project) == "" {
		err := d.svc.SetActiveProject("")
		return d.finish(OK("Cleared the active project").With("activeProjectId", ""), err)
	}
	p, err := d.project(in.Project)
	if err != nil {
		return d.fail(err)
	}
	err = d.svc.SetActiveProject(p.ID)
	return d.finish(OK(fmt.Sprintf("Active project is now %q", p.Name)).With("activeProjectId", p.ID), err)
}

func (d *Dispatcher) projectStatus(in *ProjectStatusInput) Result {
	p, err := d.activeOr(in.Project)
	if err != nil {
		return d.fail(err)
	}
	sum, err := d.svc.ProjectSummary(p.ID)
	if err != nil {
		return d.fail(err)
	}
	return OK(fmt.Sprintf("Project %q is %d%% complete", p.Name, sum.Progress)).With("summary", sum)
}

type milestoneView struct {
	model.Milestone
	ProjectID   string        `json:"projectId"`
	ProjectName string        `json:"projectName"`
	Progress    data.Progress `json:"progress"`
}

func (d *Dispatcher) milestoneView(ref data.MilestoneRef) milestoneView {
	pr, _ := d.svc.MilestoneProgress(ref.Milestone.ID)
	return milestoneView{Milestone: ref.Milestone, ProjectID: ref.ProjectID, ProjectName: ref.ProjectName, Progress: pr}
}

func (d *Dispatcher) createMilestone(in *CreateMilestoneInput) Result {
	p, err := d.activeOr(in.Project)
	if err != nil {
		return d.fail(err)
	}
	m, err := d.svc.AddMilestone(p.ID, data.MilestoneInput{
		Name:        in.Name,
		Description: in.Description,
		DueDate:     in.due,
		Status:      in.status,
	})
	res := OK(fmt.Sprintf("Created milestone %q in %q", m.Name, p.Name)).
		With("milestone", m).
		With("projectId", p.ID)
	return d.finish(res, err)
}

func (d *Dispatcher) updateMilestone(in *UpdateMilestoneInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	ref, err := d.milestone(in.Milestone, pid)
	if err != nil {
		return d.fail(err)
	}
	m, err := d.svc.UpdateMilestone(ref.Milestone.ID, data.MilestonePatch{
		Name:        in.Name,
		Description: in.Description,
		DueDate:     in.due,
		Status:      in.status,
	})
	return d.finish(OK(fmt.Sprintf("Updated milestone %q", m.Name)).With("milestone", m), err)
}

func (d *Dispatcher) deleteMilestone(in *DeleteMilestoneInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	ref, err := d.milestone(in.Milestone, pid)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.DeleteMilestone(ref.Milestone.ID)
	if err == nil && !removed {
		return Fail("milestone %q no longer exists", ref.Milestone.Name)
	}
	res := OK(fmt.Sprintf("Deleted milestone %q", ref.Milestone.Name)).
		With("milestoneId", ref.Milestone.ID).
		With("unlinkedTasks", len(ref.Milestone.LinkedTaskIDs))
	return d.finish(res, err)
}

func (d *Dispatcher) listMilestones(in *ListMilestonesInput) Result {
	var refs []data.MilestoneRef
	switch {
	case in.AllProjects:
		refs = d.svc.AllMilestones()
	case strings.TrimSpace(in.Project) != "":
		p, err := d.project(in.Project)
		if err != nil {
			return d.fail(err)
		}
		for _, ref := range d.svc.AllMilestones() {
			if ref.ProjectID == p.ID {
				refs = append(refs, ref)
			}
		}
	default:
		refs = d.svc.MilestonesByActiveProject()
	}
	views := make([]milestoneView, 0, len(refs))
	for _, ref := range refs {
		views = append(views, d.milestoneView(ref))
	}
	return OK(plural(len(views), "milestone")).With("milestones", views).With("count", len(views))
}

func (d *Dispatcher) analyzeSchedule(in *AnalyzeScheduleInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	horizon := data.DefaultHorizon
	if in.HorizonDays > 0 {
		horizon = time.Duration(in.HorizonDays) * 24 * time.Hour
	}
	rep, err := d.svc.AnalyzeSchedule(pid, horizon)
	if err != nil {
		return d.fail(err)
	}
	msg := fmt.Sprintf("%s overdue, %s due soon, %s at risk",
		plural(len(rep.OverdueTasks), "task"), plural(len(rep.DueSoonTasks), "task"),
		plural(len(rep.AtRiskMilestones), "milestone"))
	return OK(msg).With("schedule", rep)
}

func (d *Dispatcher) analyzeRisks(in *AnalyzeRisksInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	rep, err := d.svc.AnalyzeRisks(pid)
	if err != nil {
		return d.fail(err)
	}
	return OK(fmt.Sprintf("Found %s", plural(len(rep.Risks), "risk"))).With("risks", rep)
}

func (d *Dispatcher) statistics() Result {
	st := d.svc.Statistics()
	return OK(fmt.Sprintf("%s, %s, %s",
		plural(st.Projects, "project"), plural(st.Tasks, "task"), plural(st.Requirements, "requirement"))).
		With("statistics", st)
}
