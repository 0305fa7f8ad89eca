package model

import (
	"encoding/json"
	"time"
)

// SchemaVersion is written to metadata.version on every save.
const SchemaVersion = "1.0.0"

// Document is the whole persisted workspace state.
// Reviews, Documents and CustomFieldDefinitions are carried through unchanged.
type Document struct {
	Requirements           []Requirement     `json:"requirements"`
	Baselines              []Baseline        `json:"baselines"`
	Reviews                []json.RawMessage `json:"reviews"`
	Documents              []json.RawMessage `json:"documents"`
	CustomFieldDefinitions []json.RawMessage `json:"customFieldDefinitions"`
	Projects               []Project         `json:"projects"`
	Tasks                  []Task            `json:"tasks"`
	Notes                  []Note            `json:"notes"`
	Metadata               Metadata          `json:"metadata"`
}

type Metadata struct {
	Version               string    `json:"version"`
	LastUpdated           time.Time `json:"lastUpdated"`
	RequirementKeyCounter int       `json:"requirementKeyCounter"`
	ActiveProjectID       string    `json:"activeProjectId,omitempty"`
}

// NewDocument returns an empty document with every collection non-nil.
func NewDocument() *Document {
	return &Document{
		Requirements:           []Requirement{},
		Baselines:              []Baseline{},
		Reviews:                []json.RawMessage{},
		Documents:              []json.RawMessage{},
		CustomFieldDefinitions: []json.RawMessage{},
		Projects:               []Project{},
		Tasks:                  []Task{},
		Notes:                  []Note{},
		Metadata:               Metadata{Version: SchemaVersion},
	}
}

func (d *Document) Clone() *Document {
	cp := &Document{
		Requirements:           make([]Requirement, len(d.Requirements)),
		Baselines:              make([]Baseline, len(d.Baselines)),
		Reviews:                cloneRaw(d.Reviews),
		Documents:              cloneRaw(d.Documents),
		CustomFieldDefinitions: cloneRaw(d.CustomFieldDefinitions),
		Projects:               make([]Project, len(d.Projects)),
		Tasks:                  make([]Task, len(d.Tasks)),
		Notes:                  make([]Note, len(d.Notes)),
		Metadata:               d.Metadata,
	}
	for i, r := range d.Requirements {
		cp.Requirements[i] = r.Clone()
	}
	for i, b := range d.Baselines {
		cp.Baselines[i] = b.Clone()
	}
	for i, p := range d.Projects {
		cp.Projects[i] = p.Clone()
	}
	for i, t := range d.Tasks {
		cp.Tasks[i] = t.Clone()
	}
	for i, n := range d.Notes {
		cp.Notes[i] = n.Clone()
	}
	return cp
}

func cloneRaw(in []json.RawMessage) []json.RawMessage {
	if in == nil {
		return nil
	}
	out := make([]json.RawMessage, len(in))
	for i, r := range in {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}
