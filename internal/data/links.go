package data

import (
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// LinkTaskToMilestone links a task to a milestone, first detaching it from
// any other milestone. Linking twice is a no-op. A task without a project
// joins the milestone's project; a task in another project is rejected.
func (s *Service) LinkTaskToMilestone(taskID, milestoneID string) (model.Task, error) {
	var out model.Task
	err := s.update(func() ([]Change, error) {
		t := s.task(taskID)
		if t == nil {
			return nil, notFound("task", taskID)
		}
		if err := s.checkLink(t.ProjectID, milestoneID); err != nil {
			return nil, err
		}
		changes := s.link(t, milestoneID, s.now())
		out = t.Clone()
		return changes, nil
	})
	return out, err
}

// UnlinkTaskFromMilestone detaches a task from its milestone, if any.
func (s *Service) UnlinkTaskFromMilestone(taskID string) (model.Task, error) {
	var out model.Task
	err := s.update(func() ([]Change, error) {
		t := s.task(taskID)
		if t == nil {
			return nil, notFound("task", taskID)
		}
		changes := s.unlink(t, s.now())
		out = t.Clone()
		return changes, nil
	})
	return out, err
}

// checkLink validates that a task in projectID may link to milestoneID.
func (s *Service) checkLink(projectID, milestoneID string) error {
	m, p := s.milestone(milestoneID)
	if m == nil {
		return notFound("milestone", milestoneID)
	}
	if projectID != "" && projectID != p.ID {
		return invalid("milestone %q belongs to project %q, not the task's project", m.Name, p.Name)
	}
	return nil
}

// link assumes checkLink passed. It updates both sides of the relation.
func (s *Service) link(t *model.Task, milestoneID string, now time.Time) []Change {
	m, p := s.milestone(milestoneID)
	if t.LinkedMilestoneID == milestoneID && containsString(m.LinkedTaskIDs, t.ID) {
		return nil
	}
	var changes []Change
	if t.LinkedMilestoneID != "" && t.LinkedMilestoneID != milestoneID {
		changes = append(changes, s.unlink(t, now)...)
	}
	if t.ProjectID == "" {
		t.ProjectID = p.ID
		p.TaskIDs = appendUnique(p.TaskIDs, t.ID)
		s.recomputeProgress(p.ID)
		changes = append(changes, Change{OpUpdate, KindProject, p.ID})
	}
	t.LinkedMilestoneID = milestoneID
	t.UpdatedAt = now
	m.LinkedTaskIDs = appendUnique(m.LinkedTaskIDs, t.ID)
	m.UpdatedAt = now
	return append(changes,
		Change{OpUpdate, KindTask, t.ID},
		Change{OpUpdate, KindMilestone, milestoneID})
}

func (s *Service) unlink(t *model.Task, now time.Time) []Change {
	old := t.LinkedMilestoneID
	if old == "" {
		return nil
	}
	changes := []Change{{OpUpdate, KindTask, t.ID}}
	if m, _ := s.milestone(old); m != nil {
		m.LinkedTaskIDs = removeString(m.LinkedTaskIDs, t.ID)
		m.UpdatedAt = now
		changes = append(changes, Change{OpUpdate, KindMilestone, old})
	}
	t.LinkedMilestoneID = ""
	t.UpdatedAt = now
	return changes
}
