package data

import (
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type ProjectInput struct {
	Name          string
	Description   string
	Status        model.ProjectStatus
	StartDate     time.Time
	TargetEndDate time.Time
	Tags          []string
}

type ProjectPatch struct {
	Name          *string
	Description   *string
	Status        *model.ProjectStatus
	StartDate     *time.Time
	TargetEndDate *time.Time
	ActualEndDate *time.Time
	Tags          *[]string
}

func (s *Service) AddProject(in ProjectInput) (model.Project, error) {
	var out model.Project
	err := s.update(func() ([]Change, error) {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("project name is required")
		}
		now := s.now()
		p := model.NewProject(name, in.StartDate, in.TargetEndDate, now)
		p.ID = s.newID()
		p.Description = in.Description
		if in.Status != "" {
			p.Status = in.Status
		}
		if in.Tags != nil {
			p.Tags = append([]string{}, in.Tags...)
		}
		if !p.TargetEndDate.IsZero() && p.TargetEndDate.Before(p.StartDate) {
			return nil, invalid("target end date %s is before start date %s",
				p.TargetEndDate.Format(time.DateOnly), p.StartDate.Format(time.DateOnly))
		}
		s.doc.Projects = append(s.doc.Projects, p)
		s.projects[p.ID] = len(s.doc.Projects) - 1
		out = p.Clone()
		return []Change{{OpCreate, KindProject, p.ID}}, nil
	})
	return out, err
}

func (s *Service) UpdateProject(id string, patch ProjectPatch) (model.Project, error) {
	var out model.Project
	err := s.update(func() ([]Change, error) {
		p := s.project(id)
		if p == nil {
			return nil, notFound("project", id)
		}
		if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
			return nil, invalid("project name cannot be empty")
		}
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.StartDate != nil {
			p.StartDate = *patch.StartDate
		}
		if patch.TargetEndDate != nil {
			p.TargetEndDate = *patch.TargetEndDate
		}
		if patch.ActualEndDate != nil {
			t := *patch.ActualEndDate
			p.ActualEndDate = &t
		}
		if patch.Status != nil {
			p.Status = *patch.Status
			if p.Status == model.ProjectCompleted && p.ActualEndDate == nil {
				t := s.now()
				p.ActualEndDate = &t
			}
		}
		if patch.Tags != nil {
			p.Tags = append([]string{}, (*patch.Tags)...)
		}
		p.UpdatedAt = s.now()
		out = p.Clone()
		return []Change{{OpUpdate, KindProject, id}}, nil
	})
	return out, err
}

// DeleteProject removes the project and its milestones. Tasks, requirements
// and notes survive with their project reference cleared.
func (s *Service) DeleteProject(id string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		p := s.project(id)
		if p == nil {
			return nil, nil
		}
		changes := []Change{{OpDelete, KindProject, id}}
		now := s.now()
		for _, m := range p.Milestones {
			for _, tid := range m.LinkedTaskIDs {
				if t := s.task(tid); t != nil && t.LinkedMilestoneID == m.ID {
					t.LinkedMilestoneID = ""
					t.UpdatedAt = now
				}
			}
			changes = append(changes, Change{OpDelete, KindMilestone, m.ID})
		}
		for i := range s.doc.Tasks {
			if t := &s.doc.Tasks[i]; t.ProjectID == id {
				t.ProjectID = ""
				t.UpdatedAt = now
				changes = append(changes, Change{OpUpdate, KindTask, t.ID})
			}
		}
		for i := range s.doc.Requirements {
			if r := &s.doc.Requirements[i]; r.ProjectID == id {
				r.ProjectID = ""
				changes = append(changes, Change{OpUpdate, KindRequirement, r.ID})
			}
		}
		for i := range s.doc.Notes {
			if n := &s.doc.Notes[i]; n.ProjectID == id {
				n.ProjectID = ""
				changes = append(changes, Change{OpUpdate, KindNote, n.ID})
			}
		}
		if s.doc.Metadata.ActiveProjectID == id {
			s.doc.Metadata.ActiveProjectID = ""
		}
		s.doc.Projects = append(s.doc.Projects[:s.projects[id]], s.doc.Projects[s.projects[id]+1:]...)
		s.reindex()
		removed = true
		return changes, nil
	})
	return removed, err
}

func (s *Service) Project(id string) (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.project(id); p != nil {
		return p.Clone(), true
	}
	return model.Project{}, false
}

func (s *Service) Projects() []model.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Project, len(s.doc.Projects))
	for i, p := range s.doc.Projects {
		out[i] = p.Clone()
	}
	return out
}

// recomputeProgress sets a project's progress to the share of its
// non-cancelled tasks that are done.
func (s *Service) recomputeProgress(projectID string) {
	p := s.project(projectID)
	if p == nil {
		return
	}
	total, done := 0, 0
	for _, tid := range p.TaskIDs {
		t := s.task(tid)
		if t == nil || t.Status == model.TaskCancelled {
			continue
		}
		total++
		if t.Status == model.TaskDone {
			done++
		}
	}
	if total == 0 {
		p.Progress = 0
		return
	}
	p.Progress = done * 100 / total
}
