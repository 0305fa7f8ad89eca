package model

import "time"

// Project owns its milestones; tasks, requirements and notes are referenced by id.
type Project struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Status         ProjectStatus `json:"status"`
	StartDate      time.Time     `json:"startDate"`
	TargetEndDate  time.Time     `json:"targetEndDate"`
	ActualEndDate  *time.Time    `json:"actualEndDate,omitempty"`
	Milestones     []Milestone   `json:"milestones"`
	RequirementIDs []string      `json:"requirementIds"`
	TaskIDs        []string      `json:"taskIds"`
	NoteIDs        []string      `json:"noteIds"`
	Tags           []string      `json:"tags"`
	Progress       int           `json:"progress"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Milestone holds back-references to the tasks linked to it. It does not own them.
type Milestone struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	DueDate              time.Time       `json:"dueDate"`
	Status               MilestoneStatus `json:"status"`
	CompletedDate        *time.Time      `json:"completedDate,omitempty"`
	LinkedTaskIDs        []string        `json:"linkedTaskIds"`
	LinkedRequirementIDs []string        `json:"linkedRequirementIds"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func NewProject(name string, start, targetEnd, now time.Time) Project {
	if start.IsZero() {
		start = now
	}
	return Project{
		ID:             NewID(),
		Name:           name,
		Status:         ProjectPlanning,
		StartDate:      start,
		TargetEndDate:  targetEnd,
		Milestones:     []Milestone{},
		RequirementIDs: []string{},
		TaskIDs:        []string{},
		NoteIDs:        []string{},
		Tags:           []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NewMilestone(name string, due, now time.Time) Milestone {
	return Milestone{
		ID:                   NewID(),
		Name:                 name,
		DueDate:              due,
		Status:               MilestoneNotStarted,
		LinkedTaskIDs:        []string{},
		LinkedRequirementIDs: []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// Milestone returns a pointer into the project's milestone list, or nil.
func (p *Project) Milestone(id string) *Milestone {
	for i := range p.Milestones {
		if p.Milestones[i].ID == id {
			return &p.Milestones[i]
		}
	}
	return nil
}

func (p Project) Clone() Project {
	cp := p
	cp.ActualEndDate = cloneTime(p.ActualEndDate)
	cp.Milestones = make([]Milestone, len(p.Milestones))
	for i, m := range p.Milestones {
		cp.Milestones[i] = m.Clone()
	}
	cp.RequirementIDs = cloneStrings(p.RequirementIDs)
	cp.TaskIDs = cloneStrings(p.TaskIDs)
	cp.NoteIDs = cloneStrings(p.NoteIDs)
	cp.Tags = cloneStrings(p.Tags)
	return cp
}

func (m Milestone) Clone() Milestone {
	cp := m
	cp.CompletedDate = cloneTime(m.CompletedDate)
	cp.LinkedTaskIDs = cloneStrings(m.LinkedTaskIDs)
	cp.LinkedRequirementIDs = cloneStrings(m.LinkedRequirementIDs)
	return cp
}
