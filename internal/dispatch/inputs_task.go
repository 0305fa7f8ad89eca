package dispatch

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type CreateTaskInput struct {
	Title          string   `json:"title" required:"true"`
	Description    string   `json:"description,omitempty"`
	Status         string   `json:"status,omitempty" enum:"taskStatus"`
	Priority       string   `json:"priority,omitempty" enum:"taskPriority"`
	DueDate        string   `json:"dueDate,omitempty" desc:"YYYY-MM-DD"`
	StartDate      string   `json:"startDate,omitempty" desc:"YYYY-MM-DD"`
	Assignee       string   `json:"assignee,omitempty"`
	EstimatedHours float64  `json:"estimatedHours,omitempty"`
	Project        string   `json:"project,omitempty" desc:"project id or name; defaults to the milestone's, then the active project"`
	Milestone      string   `json:"milestone,omitempty" desc:"milestone id or name to link"`
	ParentTask     string   `json:"parentTask,omitempty" desc:"parent task id or title"`
	Tags           []string `json:"tags,omitempty"`

	status   model.TaskStatus
	priority model.TaskPriority
	due      *time.Time
	start    *time.Time
}

func (*CreateTaskInput) Tool() string { return "create_task" }

func (in *CreateTaskInput) Validate() (err error) {
	if err = required("title", in.Title); err != nil {
		return err
	}
	if in.EstimatedHours < 0 {
		return fmt.Errorf("estimatedHours cannot be negative")
	}
	if in.status, err = parseOptional(in.Status, model.ParseTaskStatus); err != nil {
		return err
	}
	if in.priority, err = parseOptional(in.Priority, model.ParseTaskPriority); err != nil {
		return err
	}
	if in.due, err = optionalDate("dueDate", in.DueDate); err != nil {
		return err
	}
	in.start, err = optionalDate("startDate", in.StartDate)
	return err
}

type UpdateTaskInput struct {
	Task           string    `json:"task" required:"true" desc:"task id or title"`
	Title          *string   `json:"title,omitempty"`
	Description    *string   `json:"description,omitempty"`
	Status         *string   `json:"status,omitempty" enum:"taskStatus"`
	Priority       *string   `json:"priority,omitempty" enum:"taskPriority"`
	DueDate        *string   `json:"dueDate,omitempty"`
	StartDate      *string   `json:"startDate,omitempty"`
	Assignee       *string   `json:"assignee,omitempty"`
	EstimatedHours *float64  `json:"estimatedHours,omitempty"`
	Project        *string   `json:"project,omitempty" desc:"move to a project; empty detaches"`
	ParentTask     *string   `json:"parentTask,omitempty" desc:"empty detaches from the parent"`
	Milestone      *string   `json:"milestone,omitempty" desc:"empty unlinks"`
	Tags           *[]string `json:"tags,omitempty"`

	status   *model.TaskStatus
	priority *model.TaskPriority
	due      *time.Time
	start    *time.Time
}

func (*UpdateTaskInput) Tool() string { return "update_task" }

func (in *UpdateTaskInput) Validate() (err error) {
	if err = required("task", in.Task); err != nil {
		return err
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return fmt.Errorf("estimatedHours cannot be negative")
	}
	if in.status, err = parsePatch(in.Status, model.ParseTaskStatus); err != nil {
		return err
	}
	if in.priority, err = parsePatch(in.Priority, model.ParseTaskPriority); err != nil {
		return err
	}
	if in.due, err = parsePatch(in.DueDate, parseDate("dueDate")); err != nil {
		return err
	}
	in.start, err = parsePatch(in.StartDate, parseDate("startDate"))
	return err
}

type DeleteTaskInput struct {
	Task string `json:"task" required:"true" desc:"task id or title"`
}

func (*DeleteTaskInput) Tool() string { return "delete_task" }

func (in *DeleteTaskInput) Validate() error {
	return required("task", in.Task)
}

type ListTasksInput struct {
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	AllProjects bool   `json:"allProjects,omitempty"`
	Status      string `json:"status,omitempty" enum:"taskStatus"`
	Priority    string `json:"priority,omitempty" enum:"taskPriority"`
	Assignee    string `json:"assignee,omitempty"`
	Milestone   string `json:"milestone,omitempty" desc:"only tasks linked to this milestone"`
	Overdue     bool   `json:"overdue,omitempty"`

	status   model.TaskStatus
	priority model.TaskPriority
}

func (*ListTasksInput) Tool() string { return "list_tasks" }

func (in *ListTasksInput) Validate() (err error) {
	if in.status, err = parseOptional(in.Status, model.ParseTaskStatus); err != nil {
		return err
	}
	in.priority, err = parseOptional(in.Priority, model.ParseTaskPriority)
	return err
}

type FindTaskInput struct {
	Query string `json:"query" required:"true" desc:"title fragment"`
	Limit int    `json:"limit,omitempty" desc:"maximum matches, default 5"`
}

func (*FindTaskInput) Tool() string { return "find_task" }

func (in *FindTaskInput) Validate() error {
	if in.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	return required("query", in.Query)
}

type CompleteTaskInput struct {
	Task string `json:"task" required:"true" desc:"task id or title"`
}

func (*CompleteTaskInput) Tool() string { return "complete_task" }

func (in *CompleteTaskInput) Validate() error {
	return required("task", in.Task)
}

type AddFollowUpInput struct {
	Task    string `json:"task" required:"true" desc:"task id or title"`
	Content string `json:"content" required:"true"`
	DueDate string `json:"dueDate" required:"true" desc:"YYYY-MM-DD"`

	due time.Time
}

func (*AddFollowUpInput) Tool() string { return "add_follow_up" }

func (in *AddFollowUpInput) Validate() (err error) {
	if err = required("task", in.Task); err != nil {
		return err
	}
	if err = required("content", in.Content); err != nil {
		return err
	}
	if err = required("dueDate", in.DueDate); err != nil {
		return err
	}
	in.due, err = parseDate("dueDate")(in.DueDate)
	return err
}

type CompleteFollowUpInput struct {
	Task     string `json:"task" required:"true" desc:"task id or title"`
	FollowUp string `json:"followUp" required:"true" desc:"follow-up id or content"`
}

func (*CompleteFollowUpInput) Tool() string { return "complete_follow_up" }

func (in *CompleteFollowUpInput) Validate() error {
	if err := required("task", in.Task); err != nil {
		return err
	}
	return required("followUp", in.FollowUp)
}

type LinkTaskInput struct {
	Task      string `json:"task" required:"true" desc:"task id or title"`
	Milestone string `json:"milestone" required:"true" desc:"milestone id or name"`
}

func (*LinkTaskInput) Tool() string { return "link_task_to_milestone" }

func (in *LinkTaskInput) Validate() error {
	if err := required("task", in.Task); err != nil {
		return err
	}
	return required("milestone", in.Milestone)
}

type UnlinkTaskInput struct {
	Task string `json:"task" required:"true" desc:"task id or title"`
}

func (*UnlinkTaskInput) Tool() string { return "unlink_task_from_milestone" }

func (in *UnlinkTaskInput) Validate() error {
	return required("task", in.Task)
}
