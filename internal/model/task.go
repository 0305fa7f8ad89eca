package model

import "time"

// Task is a unit of work. LinkedMilestoneID mirrors the milestone's
// LinkedTaskIDs membership and is only changed through the link operations.
type Task struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	Status            TaskStatus   `json:"status"`
	Priority          TaskPriority `json:"priority"`
	DueDate           *time.Time   `json:"dueDate,omitempty"`
	StartDate         *time.Time   `json:"startDate,omitempty"`
	CompletedDate     *time.Time   `json:"completedDate,omitempty"`
	Assignee          string       `json:"assignee,omitempty"`
	EstimatedHours    float64      `json:"estimatedHours,omitempty"`
	ProjectID         string       `json:"projectId,omitempty"`
	ParentTaskID      string       `json:"parentTaskId,omitempty"`
	SubtaskIDs        []string     `json:"subtaskIds"`
	LinkedMilestoneID string       `json:"linkedMilestoneId,omitempty"`
	FollowUps         []FollowUp   `json:"followUps"`
	Tags              []string     `json:"tags"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

type FollowUp struct {
	ID            string     `json:"id"`
	Content       string     `json:"content"`
	DueDate       time.Time  `json:"dueDate"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewTask(title string, now time.Time) Task {
	return Task{
		ID:         NewID(),
		Title:      title,
		Status:     TaskTodo,
		Priority:   PriorityMedium,
		SubtaskIDs: []string{},
		FollowUps:  []FollowUp{},
		Tags:       []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewFollowUp(content string, due, now time.Time) FollowUp {
	return FollowUp{
		ID:        NewID(),
		Content:   content,
		DueDate:   due,
		CreatedAt: now,
	}
}

// Overdue reports whether the task is open and past its due date.
func (t Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.Status.Open() && t.DueDate.Before(now)
}

func (t Task) Clone() Task {
	cp := t
	cp.DueDate = cloneTime(t.DueDate)
	cp.StartDate = cloneTime(t.StartDate)
	cp.CompletedDate = cloneTime(t.CompletedDate)
	cp.SubtaskIDs = cloneStrings(t.SubtaskIDs)
	cp.Tags = cloneStrings(t.Tags)
	cp.FollowUps = make([]FollowUp, len(t.FollowUps))
	for i, f := range t.FollowUps {
		f.CompletedDate = cloneTime(f.CompletedDate)
		cp.FollowUps[i] = f
	}
	return cp
}
