package data

import (
	"strings"
	"time"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type TaskInput struct {
	Title             string
	Description       string
	Status            model.TaskStatus
	Priority          model.TaskPriority
	DueDate           *time.Time
	StartDate         *time.Time
	Assignee          string
	EstimatedHours    float64
	ProjectID         string
	ParentTaskID      string
	LinkedMilestoneID string
	Tags              []string
}

// TaskPatch fields left nil are unchanged. An empty ProjectID,
// ParentTaskID or LinkedMilestoneID clears that reference.
type TaskPatch struct {
	Title             *string
	Description       *string
	Status            *model.TaskStatus
	Priority          *model.TaskPriority
	DueDate           *time.Time
	StartDate         *time.Time
	Assignee          *string
	EstimatedHours    *float64
	ProjectID         *string
	ParentTaskID      *string
	LinkedMilestoneID *string
	Tags              *[]string
}

// AddTask creates a task. Without an explicit project the task joins the
// linked milestone's project, else the active project.
func (s *Service) AddTask(in TaskInput) (model.Task, error) {
	var out model.Task
	err := s.update(func() ([]Change, error) {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, invalid("task title is required")
		}
		if in.EstimatedHours < 0 {
			return nil, invalid("estimated hours cannot be negative")
		}
		projectID := in.ProjectID
		if projectID == "" && in.LinkedMilestoneID != "" {
			if _, p := s.milestone(in.LinkedMilestoneID); p != nil {
				projectID = p.ID
			}
		}
		if projectID == "" {
			projectID = s.doc.Metadata.ActiveProjectID
		}
		if projectID != "" && s.project(projectID) == nil {
			return nil, notFound("project", projectID)
		}
		if in.ParentTaskID != "" && s.task(in.ParentTaskID) == nil {
			return nil, notFound("parent task", in.ParentTaskID)
		}
		if in.LinkedMilestoneID != "" {
			if err := s.checkLink(projectID, in.LinkedMilestoneID); err != nil {
				return nil, err
			}
		}

		now := s.now()
		t := model.NewTask(title, now)
		t.ID = s.newID()
		t.Description = in.Description
		if in.Status != "" {
			t.Status = in.Status
		}
		if in.Priority != "" {
			t.Priority = in.Priority
		}
		t.DueDate = copyTime(in.DueDate)
		t.StartDate = copyTime(in.StartDate)
		t.Assignee = in.Assignee
		t.EstimatedHours = in.EstimatedHours
		t.ProjectID = projectID
		t.ParentTaskID = in.ParentTaskID
		if in.Tags != nil {
			t.Tags = append([]string{}, in.Tags...)
		}
		if t.Status == model.TaskDone {
			t.CompletedDate = &now
		}
		s.doc.Tasks = append(s.doc.Tasks, t)
		s.tasks[t.ID] = len(s.doc.Tasks) - 1
		tp := s.task(t.ID)

		changes := []Change{{OpCreate, KindTask, t.ID}}
		if p := s.project(projectID); p != nil {
			p.TaskIDs = appendUnique(p.TaskIDs, t.ID)
			changes = append(changes, Change{OpUpdate, KindProject, p.ID})
		}
		if parent := s.task(in.ParentTaskID); parent != nil {
			parent.SubtaskIDs = appendUnique(parent.SubtaskIDs, t.ID)
			changes = append(changes, Change{OpUpdate, KindTask, parent.ID})
		}
		if in.LinkedMilestoneID != "" {
			changes = append(changes, s.link(tp, in.LinkedMilestoneID, now)...)
		}
		s.recomputeProgress(projectID)
		out = tp.Clone()
		return changes, nil
	})
	return out, err
}

func (s *Service) UpdateTask(id string, patch TaskPatch) (model.Task, error) {
	var out model.Task
	err := s.update(func() ([]Change, error) {
		t := s.task(id)
		if t == nil {
			return nil, notFound("task", id)
		}
		if err := s.checkTaskPatch(t, patch); err != nil {
			return nil, err
		}
		now := s.now()
		changes := []Change{{OpUpdate, KindTask, id}}
		oldProject := t.ProjectID

		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.DueDate != nil {
			t.DueDate = copyTime(patch.DueDate)
		}
		if patch.StartDate != nil {
			t.StartDate = copyTime(patch.StartDate)
		}
		if patch.Assignee != nil {
			t.Assignee = *patch.Assignee
		}
		if patch.EstimatedHours != nil {
			t.EstimatedHours = *patch.EstimatedHours
		}
		if patch.Tags != nil {
			t.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.Status != nil {
			setTaskStatus(t, *patch.Status, now)
		}
		if patch.ParentTaskID != nil && *patch.ParentTaskID != t.ParentTaskID {
			if old := s.task(t.ParentTaskID); old != nil {
				old.SubtaskIDs = removeString(old.SubtaskIDs, id)
				changes = append(changes, Change{OpUpdate, KindTask, old.ID})
			}
			t.ParentTaskID = *patch.ParentTaskID
			if parent := s.task(t.ParentTaskID); parent != nil {
				parent.SubtaskIDs = appendUnique(parent.SubtaskIDs, id)
				changes = append(changes, Change{OpUpdate, KindTask, parent.ID})
			}
		}
		if patch.ProjectID != nil && *patch.ProjectID != oldProject {
			if p := s.project(oldProject); p != nil {
				p.TaskIDs = removeString(p.TaskIDs, id)
				changes = append(changes, Change{OpUpdate, KindProject, p.ID})
			}
			t.ProjectID = *patch.ProjectID
			if p := s.project(t.ProjectID); p != nil {
				p.TaskIDs = appendUnique(p.TaskIDs, id)
				changes = append(changes, Change{OpUpdate, KindProject, p.ID})
			}
			if _, mp := s.milestone(t.LinkedMilestoneID); mp != nil && mp.ID != t.ProjectID {
				changes = append(changes, s.unlink(t, now)...)
			}
		}
		if patch.LinkedMilestoneID != nil {
			if *patch.LinkedMilestoneID == "" {
				changes = append(changes, s.unlink(t, now)...)
			} else {
				changes = append(changes, s.link(t, *patch.LinkedMilestoneID, now)...)
			}
		}
		t.UpdatedAt = now
		s.recomputeProgress(oldProject)
		if t.ProjectID != oldProject {
			s.recomputeProgress(t.ProjectID)
		}
		out = t.Clone()
		return changes, nil
	})
	return out, err
}

func (s *Service) checkTaskPatch(t *model.Task, patch TaskPatch) error {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return invalid("task title cannot be empty")
	}
	if patch.EstimatedHours != nil && *patch.EstimatedHours < 0 {
		return invalid("estimated hours cannot be negative")
	}
	projectID := t.ProjectID
	if patch.ProjectID != nil {
		projectID = *patch.ProjectID
		if projectID != "" && s.project(projectID) == nil {
			return notFound("project", projectID)
		}
	}
	if patch.ParentTaskID != nil && *patch.ParentTaskID != "" {
		pid := *patch.ParentTaskID
		if s.task(pid) == nil {
			return notFound("parent task", pid)
		}
		if s.isAncestor(t.ID, pid) {
			return invalid("task %q cannot be a subtask of itself or of its own subtask", t.Title)
		}
	}
	if patch.LinkedMilestoneID != nil && *patch.LinkedMilestoneID != "" {
		return s.checkLink(projectID, *patch.LinkedMilestoneID)
	}
	return nil
}

// isAncestor reports whether ancestorID is id or one of its parents.
func (s *Service) isAncestor(ancestorID, id string) bool {
	seen := map[string]bool{}
	for cur := id; cur != "" && !seen[cur]; {
		if cur == ancestorID {
			return true
		}
		seen[cur] = true
		t := s.task(cur)
		if t == nil {
			return false
		}
		cur = t.ParentTaskID
	}
	return false
}

func setTaskStatus(t *model.Task, status model.TaskStatus, now time.Time) {
	if t.Status == status {
		return
	}
	t.Status = status
	if status == model.TaskDone {
		t.CompletedDate = &now
	} else {
		t.CompletedDate = nil
	}
}

// CompleteTask marks a task done.
func (s *Service) CompleteTask(id string) (model.Task, error) {
	done := model.TaskDone
	return s.UpdateTask(id, TaskPatch{Status: &done})
}

// DeleteTask removes a task and every reference to it from milestones,
// parent and subtasks, its project and notes.
func (s *Service) DeleteTask(id string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		t := s.task(id)
		if t == nil {
			return nil, nil
		}
		now := s.now()
		changes := s.unlink(t, now)
		changes = append(changes, Change{OpDelete, KindTask, id})
		if parent := s.task(t.ParentTaskID); parent != nil {
			parent.SubtaskIDs = removeString(parent.SubtaskIDs, id)
			parent.UpdatedAt = now
			changes = append(changes, Change{OpUpdate, KindTask, parent.ID})
		}
		for _, sid := range t.SubtaskIDs {
			if sub := s.task(sid); sub != nil && sub.ParentTaskID == id {
				sub.ParentTaskID = ""
				sub.UpdatedAt = now
				changes = append(changes, Change{OpUpdate, KindTask, sid})
			}
		}
		projectID := t.ProjectID
		if p := s.project(projectID); p != nil {
			p.TaskIDs = removeString(p.TaskIDs, id)
			changes = append(changes, Change{OpUpdate, KindProject, p.ID})
		}
		for i := range s.doc.Notes {
			n := &s.doc.Notes[i]
			if containsString(n.LinkedTaskIDs, id) {
				n.LinkedTaskIDs = removeString(n.LinkedTaskIDs, id)
				changes = append(changes, Change{OpUpdate, KindNote, n.ID})
			}
		}
		idx := s.tasks[id]
		s.doc.Tasks = append(s.doc.Tasks[:idx], s.doc.Tasks[idx+1:]...)
		s.reindex()
		s.recomputeProgress(projectID)
		removed = true
		return changes, nil
	})
	return removed, err
}

func (s *Service) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.task(id); t != nil {
		return t.Clone(), true
	}
	return model.Task{}, false
}

func (s *Service) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterTasks(func(model.Task) bool { return true })
}

// TasksByActiveProject returns the active project's tasks, or every task
// when no project is active.
func (s *Service) TasksByActiveProject() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterTasks(func(t model.Task) bool { return s.inScope(t.ProjectID) })
}

func (s *Service) TasksInProject(projectID string) []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterTasks(func(t model.Task) bool { return t.ProjectID == projectID })
}

func (s *Service) filterTasks(keep func(model.Task) bool) []model.Task {
	out := []model.Task{}
	for _, t := range s.doc.Tasks {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (s *Service) AddFollowUp(taskID, content string, due time.Time) (model.FollowUp, error) {
	var out model.FollowUp
	err := s.update(func() ([]Change, error) {
		t := s.task(taskID)
		if t == nil {
			return nil, notFound("task", taskID)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return nil, invalid("follow-up content is required")
		}
		now := s.now()
		f := model.NewFollowUp(content, due, now)
		f.ID = s.newID()
		t.FollowUps = append(t.FollowUps, f)
		t.UpdatedAt = now
		out = f
		return []Change{{OpUpdate, KindTask, taskID}}, nil
	})
	return out, err
}

func (s *Service) CompleteFollowUp(taskID, followUpID string) (model.FollowUp, error) {
	var out model.FollowUp
	err := s.update(func() ([]Change, error) {
		t := s.task(taskID)
		if t == nil {
			return nil, notFound("task", taskID)
		}
		for i := range t.FollowUps {
			f := &t.FollowUps[i]
			if f.ID != followUpID {
				continue
			}
			if f.Completed {
				out = *f
				out.CompletedDate = copyTime(f.CompletedDate)
				return nil, nil
			}
			now := s.now()
			f.Completed = true
			f.CompletedDate = &now
			t.UpdatedAt = now
			out = *f
			out.CompletedDate = copyTime(f.CompletedDate)
			return []Change{{OpUpdate, KindTask, taskID}}, nil
		}
		return nil, notFound("follow-up", followUpID)
	})
	return out, err
}

func (s *Service) DeleteFollowUp(taskID, followUpID string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		t := s.task(taskID)
		if t == nil {
			return nil, notFound("task", taskID)
		}
		for i, f := range t.FollowUps {
			if f.ID == followUpID {
				t.FollowUps = append(t.FollowUps[:i], t.FollowUps[i+1:]...)
				t.UpdatedAt = s.now()
				removed = true
				return []Change{{OpUpdate, KindTask, taskID}}, nil
			}
		}
		return nil, nil
	})
	return removed, err
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
