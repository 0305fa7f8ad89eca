package data

import (
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type NoteInput struct {
	Title                string
	Content              string
	Category             model.NoteCategory
	ProjectID            string
	LinkedRequirementIDs []string
	LinkedTaskIDs        []string
	Tags                 []string
	IsPinned             bool
}

type NotePatch struct {
	Title                *string
	Content              *string
	Category             *model.NoteCategory
	LinkedRequirementIDs *[]string
	LinkedTaskIDs        *[]string
	Tags                 *[]string
	IsPinned             *bool
}

func (s *Service) checkNoteLinks(reqIDs, taskIDs []string) error {
	for _, id := range reqIDs {
		if s.requirement(id) == nil {
			return notFound("requirement", id)
		}
	}
	for _, id := range taskIDs {
		if s.task(id) == nil {
			return notFound("task", id)
		}
	}
	return nil
}

func (s *Service) AddNote(in NoteInput) (model.Note, error) {
	var out model.Note
	err := s.update(func() ([]Change, error) {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, invalid("note title is required")
		}
		projectID := in.ProjectID
		if projectID == "" {
			projectID = s.doc.Metadata.ActiveProjectID
		}
		if projectID != "" && s.project(projectID) == nil {
			return nil, notFound("project", projectID)
		}
		if err := s.checkNoteLinks(in.LinkedRequirementIDs, in.LinkedTaskIDs); err != nil {
			return nil, err
		}
		n := model.NewNote(title, s.now())
		n.ID = s.newID()
		n.Content = in.Content
		if in.Category != "" {
			n.Category = in.Category
		}
		n.ProjectID = projectID
		n.IsPinned = in.IsPinned
		for _, id := range in.LinkedRequirementIDs {
			n.LinkedRequirementIDs = appendUnique(n.LinkedRequirementIDs, id)
		}
		for _, id := range in.LinkedTaskIDs {
			n.LinkedTaskIDs = appendUnique(n.LinkedTaskIDs, id)
		}
		if in.Tags != nil {
			n.Tags = append([]string{}, in.Tags...)
		}
		s.doc.Notes = append(s.doc.Notes, n)
		s.notes[n.ID] = len(s.doc.Notes) - 1
		changes := []Change{{OpCreate, KindNote, n.ID}}
		if p := s.project(projectID); p != nil {
			p.NoteIDs = appendUnique(p.NoteIDs, n.ID)
			changes = append(changes, Change{OpUpdate, KindProject, p.ID})
		}
		out = n.Clone()
		return changes, nil
	})
	return out, err
}

func (s *Service) UpdateNote(id string, patch NotePatch) (model.Note, error) {
	var out model.Note
	err := s.update(func() ([]Change, error) {
		n := s.note(id)
		if n == nil {
			return nil, notFound("note", id)
		}
		if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
			return nil, invalid("note title cannot be empty")
		}
		var reqIDs, taskIDs []string
		if patch.LinkedRequirementIDs != nil {
			reqIDs = *patch.LinkedRequirementIDs
		}
		if patch.LinkedTaskIDs != nil {
			taskIDs = *patch.LinkedTaskIDs
		}
		if err := s.checkNoteLinks(reqIDs, taskIDs); err != nil {
			return nil, err
		}
		if patch.Title != nil {
			n.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Content != nil {
			n.Content = *patch.Content
		}
		if patch.Category != nil {
			n.Category = *patch.Category
		}
		if patch.LinkedRequirementIDs != nil {
			n.LinkedRequirementIDs = append([]string{}, reqIDs...)
		}
		if patch.LinkedTaskIDs != nil {
			n.LinkedTaskIDs = append([]string{}, taskIDs...)
		}
		if patch.Tags != nil {
			n.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.IsPinned != nil {
			n.IsPinned = *patch.IsPinned
		}
		n.UpdatedAt = s.now()
		out = n.Clone()
		return []Change{{OpUpdate, KindNote, id}}, nil
	})
	return out, err
}

func (s *Service) DeleteNote(id string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		n := s.note(id)
		if n == nil {
			return nil, nil
		}
		changes := []Change{{OpDelete, KindNote, id}}
		if p := s.project(n.ProjectID); p != nil {
			p.NoteIDs = removeString(p.NoteIDs, id)
			changes = append(changes, Change{OpUpdate, KindProject, p.ID})
		}
		idx := s.notes[id]
		s.doc.Notes = append(s.doc.Notes[:idx], s.doc.Notes[idx+1:]...)
		s.reindex()
		removed = true
		return changes, nil
	})
	return removed, err
}

func (s *Service) Note(id string) (model.Note, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.note(id); n != nil {
		return n.Clone(), true
	}
	return model.Note{}, false
}

func (s *Service) Notes() []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterNotes(func(model.Note) bool { return true })
}

// NotesByActiveProject returns the active project's notes, pinned first.
func (s *Service) NotesByActiveProject() []model.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.filterNotes(func(n model.Note) bool { return s.inScope(n.ProjectID) })
	pinned := notes[:0:0]
	var rest []model.Note
	for _, n := range notes {
		if n.IsPinned {
			pinned = append(pinned, n)
		} else {
			rest = append(rest, n)
		}
	}
	return append(pinned, rest...)
}

func (s *Service) filterNotes(keep func(model.Note) bool) []model.Note {
	out := []model.Note{}
	for _, n := range s.doc.Notes {
		if keep(n) {
			out = append(out, n.Clone())
		}
	}
	return out
}
