package data

import (
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type MilestoneInput struct {
	Name        string
	Description string
	DueDate     time.Time
	Status      model.MilestoneStatus
}

type MilestonePatch struct {
	Name        *string
	Description *string
	DueDate     *time.Time
	Status      *model.MilestoneStatus
}

// MilestoneRef is a milestone together with its owning project.
type MilestoneRef struct {
	ProjectID   string
	ProjectName string
	Milestone   model.Milestone
}

// Progress counts a milestone's linked tasks and how many are done.
type Progress struct {
	Linked    int `json:"linked"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

func (s *Service) AddMilestone(projectID string, in MilestoneInput) (model.Milestone, error) {
	var out model.Milestone
	err := s.update(func() ([]Change, error) {
		p := s.project(projectID)
		if p == nil {
			return nil, notFound("project", projectID)
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("milestone name is required")
		}
		if in.DueDate.IsZero() {
			return nil, invalid("milestone due date is required")
		}
		now := s.now()
		m := model.NewMilestone(name, in.DueDate, now)
		m.ID = s.newID()
		m.Description = in.Description
		if in.Status != "" {
			m.Status = in.Status
		}
		if m.Status == model.MilestoneCompleted {
			m.CompletedDate = &now
		}
		p.Milestones = append(p.Milestones, m)
		p.UpdatedAt = now
		s.milestones[m.ID] = milestoneRef{project: s.projects[p.ID], index: len(p.Milestones) - 1}
		out = m.Clone()
		return []Change{{OpCreate, KindMilestone, m.ID}}, nil
	})
	return out, err
}

func (s *Service) UpdateMilestone(id string, patch MilestonePatch) (model.Milestone, error) {
	var out model.Milestone
	err := s.update(func() ([]Change, error) {
		m, _ := s.milestone(id)
		if m == nil {
			return nil, notFound("milestone", id)
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			return nil, invalid("milestone name cannot be empty")
		}
		now := s.now()
		if patch.Name != nil {
			m.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			m.Description = *patch.Description
		}
		if patch.DueDate != nil {
			m.DueDate = *patch.DueDate
		}
		if patch.Status != nil && *patch.Status != m.Status {
			m.Status = *patch.Status
			if m.Status == model.MilestoneCompleted {
				m.CompletedDate = &now
			} else {
				m.CompletedDate = nil
			}
		}
		m.UpdatedAt = now
		out = m.Clone()
		return []Change{{OpUpdate, KindMilestone, id}}, nil
	})
	return out, err
}

// DeleteMilestone removes the milestone and clears the link on its tasks.
func (s *Service) DeleteMilestone(id string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		m, p := s.milestone(id)
		if m == nil {
			return nil, nil
		}
		changes := []Change{{OpDelete, KindMilestone, id}}
		now := s.now()
		for _, tid := range m.LinkedTaskIDs {
			if t := s.task(tid); t != nil && t.LinkedMilestoneID == id {
				t.LinkedMilestoneID = ""
				t.UpdatedAt = now
				changes = append(changes, Change{OpUpdate, KindTask, tid})
			}
		}
		idx := s.milestones[id].index
		p.Milestones = append(p.Milestones[:idx], p.Milestones[idx+1:]...)
		p.UpdatedAt = now
		s.reindex()
		removed = true
		return changes, nil
	})
	return removed, err
}

func (s *Service) Milestone(id string) (MilestoneRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, p := s.milestone(id)
	if m == nil {
		return MilestoneRef{}, false
	}
	return MilestoneRef{ProjectID: p.ID, ProjectName: p.Name, Milestone: m.Clone()}, true
}

// AllMilestones lists every milestone across projects in document order.
func (s *Service) AllMilestones() []MilestoneRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.milestoneRefs("")
}

// MilestonesByActiveProject lists the active project's milestones, or all
// milestones when no project is active.
func (s *Service) MilestonesByActiveProject() []MilestoneRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.milestoneRefs(s.doc.Metadata.ActiveProjectID)
}

func (s *Service) milestoneRefs(projectID string) []MilestoneRef {
	var out []MilestoneRef
	for _, p := range s.doc.Projects {
		if projectID != "" && p.ID != projectID {
			continue
		}
		for _, m := range p.Milestones {
			out = append(out, MilestoneRef{ProjectID: p.ID, ProjectName: p.Name, Milestone: m.Clone()})
		}
	}
	return out
}

func (s *Service) MilestoneProgress(id string) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, _ := s.milestone(id)
	if m == nil {
		return Progress{}, notFound("milestone", id)
	}
	return s.milestoneProgress(m), nil
}

func (s *Service) milestoneProgress(m *model.Milestone) Progress {
	var pr Progress
	for _, tid := range m.LinkedTaskIDs {
		t := s.task(tid)
		if t == nil {
			continue
		}
		pr.Linked++
		if t.Status == model.TaskDone {
			pr.Completed++
		}
	}
	if pr.Linked > 0 {
		pr.Percent = pr.Completed * 100 / pr.Linked
	}
	return pr
}
