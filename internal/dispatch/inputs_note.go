package dispatch

import "github.com/jorge-barreto/reqtrack/internal/model"

type CreateNoteInput struct {
	Title        string   `json:"title" required:"true"`
	Content      string   `json:"content,omitempty"`
	Category     string   `json:"category,omitempty" enum:"noteCategory"`
	Project      string   `json:"project,omitempty" desc:"defaults to the active project"`
	Requirements []string `json:"requirements,omitempty" desc:"linked requirement ids, keys or titles"`
	Tasks        []string `json:"tasks,omitempty" desc:"linked task ids or titles"`
	Tags         []string `json:"tags,omitempty"`
	Pinned       bool     `json:"pinned,omitempty"`

	category model.NoteCategory
}

func (*CreateNoteInput) Tool() string { return "create_note" }

func (in *CreateNoteInput) Validate() (err error) {
	if err = required("title", in.Title); err != nil {
		return err
	}
	in.category, err = parseOptional(in.Category, model.ParseNoteCategory)
	return err
}

type UpdateNoteInput struct {
	Note         string    `json:"note" required:"true" desc:"note id or title"`
	Title        *string   `json:"title,omitempty"`
	Content      *string   `json:"content,omitempty"`
	Category     *string   `json:"category,omitempty" enum:"noteCategory"`
	Requirements *[]string `json:"requirements,omitempty"`
	Tasks        *[]string `json:"tasks,omitempty"`
	Tags         *[]string `json:"tags,omitempty"`
	Pinned       *bool     `json:"pinned,omitempty"`

	category *model.NoteCategory
}

func (*UpdateNoteInput) Tool() string { return "update_note" }

func (in *UpdateNoteInput) Validate() (err error) {
	if err = required("note", in.Note); err != nil {
		return err
	}
	in.category, err = parsePatch(in.Category, model.ParseNoteCategory)
	return err
}

type DeleteNoteInput struct {
	Note string `json:"note" required:"true" desc:"note id or title"`
}

func (*DeleteNoteInput) Tool() string { return "delete_note" }

func (in *DeleteNoteInput) Validate() error {
	return required("note", in.Note)
}

type ListNotesInput struct {
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	AllProjects bool   `json:"allProjects,omitempty"`
	Category    string `json:"category,omitempty" enum:"noteCategory"`
	PinnedOnly  bool   `json:"pinnedOnly,omitempty"`

	category model.NoteCategory
}

func (*ListNotesInput) Tool() string { return "list_notes" }

func (in *ListNotesInput) Validate() (err error) {
	in.category, err = parseOptional(in.Category, model.ParseNoteCategory)
	return err
}
