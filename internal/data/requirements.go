package data

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type RequirementInput struct {
	Title              string
	Description        string
	Type               model.RequirementType
	Status             model.RequirementStatus
	Priority           model.RequirementPriority
	ProjectID          string
	ParentID           string
	TestCoverage       int
	AcceptanceCriteria string
	Rationale          string
	Tags               []string
}

// RequirementPatch fields left nil are unchanged. Title, Description, Type,
// Status, Priority, ParentID and AcceptanceCriteria are core fields and are
// rejected on a locked requirement.
type RequirementPatch struct {
	Title              *string
	Description        *string
	Type               *model.RequirementType
	Status             *model.RequirementStatus
	Priority           *model.RequirementPriority
	ParentID           *string
	TestCoverage       *int
	AcceptanceCriteria *string
	Rationale          *string
	Tags               *[]string
}

// coreChanges names the core fields the patch would actually change.
func (p RequirementPatch) coreChanges(r *model.Requirement) []string {
	var out []string
	if p.Title != nil && strings.TrimSpace(*p.Title) != r.Title {
		out = append(out, "title")
	}
	if p.Description != nil && *p.Description != r.Description {
		out = append(out, "description")
	}
	if p.Type != nil && *p.Type != r.Type {
		out = append(out, "type")
	}
	if p.Status != nil && *p.Status != r.Status {
		out = append(out, "status")
	}
	if p.Priority != nil && *p.Priority != r.Priority {
		out = append(out, "priority")
	}
	if p.ParentID != nil && *p.ParentID != r.ParentID {
		out = append(out, "parentId")
	}
	if p.AcceptanceCriteria != nil && *p.AcceptanceCriteria != r.AcceptanceCriteria {
		out = append(out, "acceptanceCriteria")
	}
	return out
}

// AddRequirement creates a requirement with the next REQ key. Without an
// explicit project it joins the active project.
func (s *Service) AddRequirement(in RequirementInput) (model.Requirement, error) {
	var out model.Requirement
	err := s.update(func() ([]Change, error) {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, invalid("requirement title is required")
		}
		if err := checkCoverage(in.TestCoverage); err != nil {
			return nil, err
		}
		projectID := in.ProjectID
		if projectID == "" {
			projectID = s.doc.Metadata.ActiveProjectID
		}
		if projectID != "" && s.project(projectID) == nil {
			return nil, notFound("project", projectID)
		}
		if in.ParentID != "" && s.requirement(in.ParentID) == nil {
			return nil, notFound("parent requirement", in.ParentID)
		}

		now := s.now()
		s.doc.Metadata.RequirementKeyCounter++
		r := model.NewRequirement(title, s.doc.Metadata.RequirementKeyCounter, now)
		r.ID = s.newID()
		r.Description = in.Description
		if in.Type != "" {
			r.Type = in.Type
		}
		if in.Status != "" {
			r.Status = in.Status
		}
		if in.Priority != "" {
			r.Priority = in.Priority
		}
		r.ProjectID = projectID
		r.ParentID = in.ParentID
		r.TestCoverage = in.TestCoverage
		r.AcceptanceCriteria = in.AcceptanceCriteria
		r.Rationale = in.Rationale
		if in.Tags != nil {
			r.Tags = append([]string{}, in.Tags...)
		}
		s.doc.Requirements = append(s.doc.Requirements, r)
		s.requirements[r.ID] = len(s.doc.Requirements) - 1

		changes := []Change{{OpCreate, KindRequirement, r.ID}}
		if parent := s.requirement(r.ParentID); parent != nil {
			parent.Children = appendUnique(parent.Children, r.ID)
			changes = append(changes, Change{OpUpdate, KindRequirement, parent.ID})
		}
		if p := s.project(projectID); p != nil {
			p.RequirementIDs = appendUnique(p.RequirementIDs, r.ID)
			changes = append(changes, Change{OpUpdate, KindProject, p.ID})
		}
		out = s.requirement(r.ID).Clone()
		return changes, nil
	})
	return out, err
}

// UpdateRequirement merges patch onto the requirement. Changing the title,
// status or description marks every other requirement's trace link that
// targets it as suspect.
func (s *Service) UpdateRequirement(id string, patch RequirementPatch) (model.Requirement, error) {
	var out model.Requirement
	err := s.update(func() ([]Change, error) {
		r := s.requirement(id)
		if r == nil {
			return nil, notFound("requirement", id)
		}
		core := patch.coreChanges(r)
		if r.IsLocked && len(core) > 0 {
			return nil, fmt.Errorf("requirement %s: cannot change %s: %w",
				r.Key, strings.Join(core, ", "), ErrLocked)
		}
		if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
			return nil, invalid("requirement title cannot be empty")
		}
		if patch.TestCoverage != nil {
			if err := checkCoverage(*patch.TestCoverage); err != nil {
				return nil, err
			}
		}
		if patch.ParentID != nil && *patch.ParentID != "" {
			pid := *patch.ParentID
			if s.requirement(pid) == nil {
				return nil, notFound("parent requirement", pid)
			}
			if s.isRequirementAncestor(id, pid) {
				return nil, invalid("requirement %s cannot be its own ancestor", r.Key)
			}
		}

		now := s.now()
		changes := []Change{{OpUpdate, KindRequirement, id}}
		if patch.Title != nil {
			r.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			r.Description = *patch.Description
		}
		if patch.Type != nil {
			r.Type = *patch.Type
		}
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.Priority != nil {
			r.Priority = *patch.Priority
		}
		if patch.AcceptanceCriteria != nil {
			r.AcceptanceCriteria = *patch.AcceptanceCriteria
		}
		if patch.TestCoverage != nil {
			r.TestCoverage = *patch.TestCoverage
		}
		if patch.Rationale != nil {
			r.Rationale = *patch.Rationale
		}
		if patch.Tags != nil {
			r.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.ParentID != nil && *patch.ParentID != r.ParentID {
			if old := s.requirement(r.ParentID); old != nil {
				old.Children = removeString(old.Children, id)
				changes = append(changes, Change{OpUpdate, KindRequirement, old.ID})
			}
			r.ParentID = *patch.ParentID
			if parent := s.requirement(r.ParentID); parent != nil {
				parent.Children = appendUnique(parent.Children, id)
				changes = append(changes, Change{OpUpdate, KindRequirement, parent.ID})
			}
		}
		if len(core) > 0 {
			r.Version++
		}
		r.UpdatedAt = now
		for _, f := range core {
			if f == "title" || f == "status" || f == "description" {
				changes = append(changes, s.markSuspect(id)...)
				break
			}
		}
		out = s.requirement(id).Clone()
		return changes, nil
	})
	return out, err
}

func checkCoverage(c int) error {
	if c < 0 || c > 100 {
		return invalid("test coverage %d is outside 0-100", c)
	}
	return nil
}

func (s *Service) isRequirementAncestor(ancestorID, id string) bool {
	seen := map[string]bool{}
	for cur := id; cur != "" && !seen[cur]; {
		if cur == ancestorID {
			return true
		}
		seen[cur] = true
		r := s.requirement(cur)
		if r == nil {
			return false
		}
		cur = r.ParentID
	}
	return false
}

// DeleteRequirement removes an unlocked requirement and the references to it
// held by its parent, children, project, milestones and notes. Trace links
// on other requirements that target it are left in place.
func (s *Service) DeleteRequirement(id string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		r := s.requirement(id)
		if r == nil {
			return nil, nil
		}
		if r.IsLocked {
			return nil, fmt.Errorf("requirement %s: cannot delete: %w", r.Key, ErrLocked)
		}
		changes := []Change{{OpDelete, KindRequirement, id}}
		if parent := s.requirement(r.ParentID); parent != nil {
			parent.Children = removeString(parent.Children, id)
			changes = append(changes, Change{OpUpdate, KindRequirement, parent.ID})
		}
		for _, cid := range r.Children {
			if c := s.requirement(cid); c != nil && c.ParentID == id {
				c.ParentID = ""
				changes = append(changes, Change{OpUpdate, KindRequirement, cid})
			}
		}
		for i := range s.doc.Projects {
			p := &s.doc.Projects[i]
			if containsString(p.RequirementIDs, id) {
				p.RequirementIDs = removeString(p.RequirementIDs, id)
				changes = append(changes, Change{OpUpdate, KindProject, p.ID})
			}
			for j := range p.Milestones {
				m := &p.Milestones[j]
				if containsString(m.LinkedRequirementIDs, id) {
					m.LinkedRequirementIDs = removeString(m.LinkedRequirementIDs, id)
					changes = append(changes, Change{OpUpdate, KindMilestone, m.ID})
				}
			}
		}
		for i := range s.doc.Notes {
			n := &s.doc.Notes[i]
			if containsString(n.LinkedRequirementIDs, id) {
				n.LinkedRequirementIDs = removeString(n.LinkedRequirementIDs, id)
				changes = append(changes, Change{OpUpdate, KindNote, n.ID})
			}
		}
		idx := s.requirements[id]
		s.doc.Requirements = append(s.doc.Requirements[:idx], s.doc.Requirements[idx+1:]...)
		s.reindex()
		removed = true
		return changes, nil
	})
	return removed, err
}

// LinkRequirementToMilestone records a requirement on a milestone's
// linkedRequirementIds.
func (s *Service) LinkRequirementToMilestone(requirementID, milestoneID string) (model.Milestone, error) {
	var out model.Milestone
	err := s.update(func() ([]Change, error) {
		if s.requirement(requirementID) == nil {
			return nil, notFound("requirement", requirementID)
		}
		m, _ := s.milestone(milestoneID)
		if m == nil {
			return nil, notFound("milestone", milestoneID)
		}
		if containsString(m.LinkedRequirementIDs, requirementID) {
			out = m.Clone()
			return nil, nil
		}
		m.LinkedRequirementIDs = append(m.LinkedRequirementIDs, requirementID)
		m.UpdatedAt = s.now()
		out = m.Clone()
		return []Change{{OpUpdate, KindMilestone, milestoneID}}, nil
	})
	return out, err
}

func (s *Service) Requirement(id string) (model.Requirement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.requirement(id); r != nil {
		return r.Clone(), true
	}
	return model.Requirement{}, false
}

// RequirementByKey looks a requirement up by its REQ key. "req-3" and
// "REQ-003" name the same requirement.
func (s *Service) RequirementByKey(key string) (model.Requirement, bool) {
	n, ok := model.ParseRequirementKey(key)
	if !ok {
		return model.Requirement{}, false
	}
	want := model.RequirementKey(n)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.doc.Requirements {
		if r.Key == want {
			return r.Clone(), true
		}
	}
	return model.Requirement{}, false
}

func (s *Service) Requirements() []model.Requirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequirements(func(model.Requirement) bool { return true })
}

// RequirementsByActiveProject returns the active project's requirements, or
// every requirement when no project is active.
func (s *Service) RequirementsByActiveProject() []model.Requirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterRequirements(func(r model.Requirement) bool { return s.inScope(r.ProjectID) })
}

func (s *Service) filterRequirements(keep func(model.Requirement) bool) []model.Requirement {
	out := []model.Requirement{}
	for _, r := range s.doc.Requirements {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}
