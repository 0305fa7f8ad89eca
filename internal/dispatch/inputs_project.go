package dispatch

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type CreateProjectInput struct {
	Name          string   `json:"name" required:"true"`
	Description   string   `json:"description,omitempty"`
	Status        string   `json:"status,omitempty" enum:"projectStatus"`
	StartDate     string   `json:"startDate,omitempty" desc:"YYYY-MM-DD, defaults to today"`
	TargetEndDate string   `json:"targetEndDate,omitempty" desc:"YYYY-MM-DD"`
	Tags          []string `json:"tags,omitempty"`
	SetActive     bool     `json:"setActive,omitempty" desc:"make it the active project"`

	status model.ProjectStatus
	start  time.Time
	end    time.Time
}

func (*CreateProjectInput) Tool() string { return "create_project" }

func (in *CreateProjectInput) Validate() (err error) {
	if err = required("name", in.Name); err != nil {
		return err
	}
	if in.status, err = parseOptional(in.Status, model.ParseProjectStatus); err != nil {
		return err
	}
	if in.start, err = parseOptional(in.StartDate, parseDate("startDate")); err != nil {
		return err
	}
	in.end, err = parseOptional(in.TargetEndDate, parseDate("targetEndDate"))
	return err
}

type UpdateProjectInput struct {
	Project       string    `json:"project" required:"true" desc:"project id or name"`
	Name          *string   `json:"name,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Status        *string   `json:"status,omitempty" enum:"projectStatus"`
	StartDate     *string   `json:"startDate,omitempty"`
	TargetEndDate *string   `json:"targetEndDate,omitempty"`
	ActualEndDate *string   `json:"actualEndDate,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`

	status *model.ProjectStatus
	start  *time.Time
	end    *time.Time
	actual *time.Time
}

func (*UpdateProjectInput) Tool() string { return "update_project" }

func (in *UpdateProjectInput) Validate() (err error) {
	if err = required("project", in.Project); err != nil {
		return err
	}
	if in.status, err = parsePatch(in.Status, model.ParseProjectStatus); err != nil {
		return err
	}
	if in.start, err = parsePatch(in.StartDate, parseDate("startDate")); err != nil {
		return err
	}
	if in.end, err = parsePatch(in.TargetEndDate, parseDate("targetEndDate")); err != nil {
		return err
	}
	in.actual, err = parsePatch(in.ActualEndDate, parseDate("actualEndDate"))
	return err
}

type DeleteProjectInput struct {
	Project string `json:"project" required:"true" desc:"project id or name"`
}

func (*DeleteProjectInput) Tool() string       { return "delete_project" }
func (in *DeleteProjectInput) Validate() error { return required("project", in.Project) }

type ListProjectsInput struct {
	Status string `json:"status,omitempty" enum:"projectStatus"`

	status model.ProjectStatus
}

func (*ListProjectsInput) Tool() string { return "list_projects" }

func (in *ListProjectsInput) Validate() (err error) {
	in.status, err = parseOptional(in.Status, model.ParseProjectStatus)
	return err
}

type SetActiveProjectInput struct {
	Project string `json:"project,omitempty" desc:"project id or name; empty clears the selection"`
}

func (*SetActiveProjectInput) Tool() string    { return "set_active_project" }
func (*SetActiveProjectInput) Validate() error { return nil }

type ProjectStatusInput struct {
	Project string `json:"project,omitempty" desc:"defaults to the active project"`
}

func (*ProjectStatusInput) Tool() string    { return "get_project_status" }
func (*ProjectStatusInput) Validate() error { return nil }

type CreateMilestoneInput struct {
	Name        string `json:"name" required:"true"`
	DueDate     string `json:"dueDate" required:"true" desc:"YYYY-MM-DD"`
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty" enum:"milestoneStatus"`

	due    time.Time
	status model.MilestoneStatus
}

func (*CreateMilestoneInput) Tool() string { return "create_milestone" }

func (in *CreateMilestoneInput) Validate() (err error) {
	if err = required("name", in.Name); err != nil {
		return err
	}
	if err = required("dueDate", in.DueDate); err != nil {
		return err
	}
	if in.due, err = parseDate("dueDate")(in.DueDate); err != nil {
		return err
	}
	in.status, err = parseOptional(in.Status, model.ParseMilestoneStatus)
	return err
}

type UpdateMilestoneInput struct {
	Milestone   string  `json:"milestone" required:"true" desc:"milestone id or name"`
	Project     string  `json:"project,omitempty" desc:"narrows the milestone search"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Status      *string `json:"status,omitempty" enum:"milestoneStatus"`

	due    *time.Time
	status *model.MilestoneStatus
}

func (*UpdateMilestoneInput) Tool() string { return "update_milestone" }

func (in *UpdateMilestoneInput) Validate() (err error) {
	if err = required("milestone", in.Milestone); err != nil {
		return err
	}
	if in.due, err = parsePatch(in.DueDate, parseDate("dueDate")); err != nil {
		return err
	}
	in.status, err = parsePatch(in.Status, model.ParseMilestoneStatus)
	return err
}

type DeleteMilestoneInput struct {
	Milestone string `json:"milestone" required:"true" desc:"milestone id or name"`
	Project   string `json:"project,omitempty"`
}

func (*DeleteMilestoneInput) Tool() string       { return "delete_milestone" }
func (in *DeleteMilestoneInput) Validate() error { return required("milestone", in.Milestone) }

type ListMilestonesInput struct {
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	AllProjects bool   `json:"allProjects,omitempty"`
}

func (*ListMilestonesInput) Tool() string    { return "list_milestones" }
func (*ListMilestonesInput) Validate() error { return nil }

type AnalyzeScheduleInput struct {
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	HorizonDays int    `json:"horizonDays,omitempty" desc:"look-ahead window, default 14"`
}

func (*AnalyzeScheduleInput) Tool() string { return "analyze_schedule" }

func (in *AnalyzeScheduleInput) Validate() error {
	if in.HorizonDays < 0 {
		return fmt.Errorf("horizonDays must be >= 0")
	}
	return nil
}

type AnalyzeRisksInput struct {
	Project string `json:"project,omitempty" desc:"defaults to the active project"`
}

func (*AnalyzeRisksInput) Tool() string    { return "analyze_risks" }
func (*AnalyzeRisksInput) Validate() error { return nil }

type StatisticsInput struct{}

func (*StatisticsInput) Tool() string    { return "get_statistics" }
func (*StatisticsInput) Validate() error { return nil }
