package model

import "time"

type Note struct {
	ID                   string       `json:"id"`
	Title                string       `json:"title"`
	Content              string       `json:"content"`
	Category             NoteCategory `json:"category"`
	ProjectID            string       `json:"projectId,omitempty"`
	LinkedRequirementIDs []string     `json:"linkedRequirementIds"`
	LinkedTaskIDs        []string     `json:"linkedTaskIds"`
	Tags                 []string     `json:"tags"`
	IsPinned             bool         `json:"isPinned"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`
}

func NewNote(title string, now time.Time) Note {
	return Note{
		ID:                   NewID(),
		Title:                title,
		Category:             NoteGeneral,
		LinkedRequirementIDs: []string{},
		LinkedTaskIDs:        []string{},
		Tags:                 []string{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func (n Note) Clone() Note {
	cp := n
	cp.LinkedRequirementIDs = cloneStrings(n.LinkedRequirementIDs)
	cp.LinkedTaskIDs = cloneStrings(n.LinkedTaskIDs)
	cp.Tags = cloneStrings(n.Tags)
	return cp
}
