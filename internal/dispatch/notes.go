package dispatch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/model"
)

func (d *Dispatcher) noteLinks(reqs, tasks []string) (reqIDs, taskIDs []string, err error) {
	for _, q := range reqs {
		r, err := d.requirement(q)
		if err != nil {
			return nil, nil, err
		}
		reqIDs = append(reqIDs, r.ID)
	}
	for _, q := range tasks {
		t, err := d.task(q)
		if err != nil {
			return nil, nil, err
		}
		taskIDs = append(taskIDs, t.ID)
	}
	return reqIDs, taskIDs, nil
}

func (d *Dispatcher) createNote(in *CreateNoteInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	reqIDs, taskIDs, err := d.noteLinks(in.Requirements, in.Tasks)
	if err != nil {
		return d.fail(err)
	}
	n, err := d.svc.AddNote(data.NoteInput{
		Title:                in.Title,
		Content:              in.Content,
		Category:             in.category,
		ProjectID:            pid,
		LinkedRequirementIDs: reqIDs,
		LinkedTaskIDs:        taskIDs,
		Tags:                 in.Tags,
		IsPinned:             in.Pinned,
	})
	return d.finish(OK(fmt.Sprintf("Created note %q", n.Title)).With("note", n), err)
}

func (d *Dispatcher) updateNote(in *UpdateNoteInput) Result {
	n, err := d.note(in.Note)
	if err != nil {
		return d.fail(err)
	}
	patch := data.NotePatch{
		Title:    in.Title,
		Content:  in.Content,
		Category: in.category,
		Tags:     in.Tags,
		IsPinned: in.Pinned,
	}
	if in.Requirements != nil {
		ids, _, err := d.noteLinks(*in.Requirements, nil)
		if err != nil {
			return d.fail(err)
		}
		if ids == nil {
			ids = []string{}
		}
		patch.LinkedRequirementIDs = &ids
	}
	if in.Tasks != nil {
		_, ids, err := d.noteLinks(nil, *in.Tasks)
		if err != nil {
			return d.fail(err)
		}
		if ids == nil {
			ids = []string{}
		}
		patch.LinkedTaskIDs = &ids
	}
	n, err = d.svc.UpdateNote(n.ID, patch)
	return d.finish(OK(fmt.Sprintf("Updated note %q", n.Title)).With("note", n), err)
}

func (d *Dispatcher) deleteNote(in *DeleteNoteInput) Result {
	n, err := d.note(in.Note)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.DeleteNote(n.ID)
	if err == nil && !removed {
		return Fail("note %q no longer exists", n.Title)
	}
	return d.finish(OK(fmt.Sprintf("Deleted note %q", n.Title)).With("noteId", n.ID), err)
}

func (d *Dispatcher) listNotes(in *ListNotesInput) Result {
	var notes []model.Note
	switch {
	case in.AllProjects:
		notes = d.svc.Notes()
	case strings.TrimSpace(in.Project) != "":
		p, err := d.project(in.Project)
		if err != nil {
			return d.fail(err)
		}
		for _, n := range d.svc.Notes() {
			if n.ProjectID == p.ID {
				notes = append(notes, n)
			}
		}
	default:
		notes = d.svc.NotesByActiveProject()
	}
	out := []model.Note{}
	for _, n := range notes {
		switch {
		case in.category != "" && n.Category != in.category:
		case in.PinnedOnly && !n.IsPinned:
		default:
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IsPinned && !out[j].IsPinned })
	return OK(plural(len(out), "note")).With("notes", out).With("count", len(out))
}
