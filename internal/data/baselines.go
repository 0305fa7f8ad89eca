package data

import (
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type BaselineInput struct {
	Name           string
	Description    string
	ProjectID      string
	RequirementIDs []string
	Lock           bool
}

// CreateBaseline snapshots requirements. With no ids it snapshots the
// project's requirements (the active project when ProjectID is empty, every
// requirement when none is active).
func (s *Service) CreateBaseline(in BaselineInput) (model.Baseline, error) {
	var out model.Baseline
	err := s.update(func() ([]Change, error) {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, invalid("baseline name is required")
		}
		projectID := in.ProjectID
		if projectID == "" {
			projectID = s.doc.Metadata.ActiveProjectID
		}
		if projectID != "" && s.project(projectID) == nil {
			return nil, notFound("project", projectID)
		}
		var snaps []model.Requirement
		if len(in.RequirementIDs) > 0 {
			for _, id := range in.RequirementIDs {
				r := s.requirement(id)
				if r == nil {
					return nil, notFound("requirement", id)
				}
				snaps = append(snaps, r.Clone())
			}
		} else {
			for _, r := range s.doc.Requirements {
				if projectID == "" || r.ProjectID == projectID {
					snaps = append(snaps, r.Clone())
				}
			}
		}
		if len(snaps) == 0 {
			return nil, invalid("baseline %q would contain no requirements", name)
		}
		now := s.now()
		b := model.NewBaseline(name, snaps, now)
		b.ID = s.newID()
		b.Description = in.Description
		b.ProjectID = projectID
		s.doc.Baselines = append(s.doc.Baselines, b)
		s.baselines[b.ID] = len(s.doc.Baselines) - 1
		changes := []Change{{OpCreate, KindBaseline, b.ID}}
		if in.Lock {
			changes = append(changes, s.lockBaseline(s.baseline(b.ID))...)
		}
		out = s.baseline(b.ID).Clone()
		return changes, nil
	})
	return out, err
}

// LockBaseline locks the baseline and every requirement it snapshotted that
// still exists.
func (s *Service) LockBaseline(id string) (model.Baseline, error) {
	var out model.Baseline
	err := s.update(func() ([]Change, error) {
		b := s.baseline(id)
		if b == nil {
			return nil, notFound("baseline", id)
		}
		if b.Status == model.BaselineLocked {
			out = b.Clone()
			return nil, nil
		}
		changes := s.lockBaseline(b)
		out = b.Clone()
		return changes, nil
	})
	return out, err
}

func (s *Service) lockBaseline(b *model.Baseline) []Change {
	now := s.now()
	b.Status = model.BaselineLocked
	b.LockedAt = &now
	changes := []Change{{OpUpdate, KindBaseline, b.ID}}
	for _, snap := range b.RequirementSnapshots {
		if r := s.requirement(snap.ID); r != nil && !r.IsLocked {
			r.IsLocked = true
			changes = append(changes, Change{OpUpdate, KindRequirement, r.ID})
		}
	}
	return changes
}

func (s *Service) Baseline(id string) (model.Baseline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.baseline(id); b != nil {
		return b.Clone(), true
	}
	return model.Baseline{}, false
}

func (s *Service) Baselines() []model.Baseline {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Baseline, len(s.doc.Baselines))
	for i, b := range s.doc.Baselines {
		out[i] = b.Clone()
	}
	return out
}

type RequirementChange struct {
	RequirementSummary
	Fields []string `json:"fields"`
}

// BaselineDiff lists how current requirements differ from a baseline.
type BaselineDiff struct {
	BaselineID string               `json:"baselineId"`
	Name       string               `json:"name"`
	Changed    []RequirementChange  `json:"changed"`
	Removed    []RequirementSummary `json:"removed"`
	Unchanged  int                  `json:"unchanged"`
}

func (s *Service) CompareBaseline(id string) (BaselineDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.baseline(id)
	if b == nil {
		return BaselineDiff{}, notFound("baseline", id)
	}
	diff := BaselineDiff{BaselineID: b.ID, Name: b.Name, Changed: []RequirementChange{}, Removed: []RequirementSummary{}}
	for _, snap := range b.RequirementSnapshots {
		r := s.requirement(snap.ID)
		if r == nil {
			diff.Removed = append(diff.Removed, summarize(snap))
			continue
		}
		fields := changedFields(snap, *r)
		if len(fields) == 0 {
			diff.Unchanged++
			continue
		}
		diff.Changed = append(diff.Changed, RequirementChange{RequirementSummary: summarize(*r), Fields: fields})
	}
	return diff, nil
}

func changedFields(old, cur model.Requirement) []string {
	var out []string
	add := func(name string, changed bool) {
		if changed {
			out = append(out, name)
		}
	}
	add("title", old.Title != cur.Title)
	add("description", old.Description != cur.Description)
	add("type", old.Type != cur.Type)
	add("status", old.Status != cur.Status)
	add("priority", old.Priority != cur.Priority)
	add("parentId", old.ParentID != cur.ParentID)
	add("acceptanceCriteria", old.AcceptanceCriteria != cur.AcceptanceCriteria)
	add("testCoverage", old.TestCoverage != cur.TestCoverage)
	add("traces", len(old.Traces) != len(cur.Traces))
	return out
}
