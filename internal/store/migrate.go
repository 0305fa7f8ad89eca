package store

import (
	"encoding/json"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// Migrate fills fields that older documents may lack: nil collections become
// empty, the schema version is set, and the requirement key counter is raised
// to at least the highest key already issued so keys are never reused.
func Migrate(doc *model.Document) {
	if doc.Requirements == nil {
		doc.Requirements = []model.Requirement{}
	}
	if doc.Baselines == nil {
		doc.Baselines = []model.Baseline{}
	}
	if doc.Reviews == nil {
		doc.Reviews = []json.RawMessage{}
	}
	if doc.Documents == nil {
		doc.Documents = []json.RawMessage{}
	}
	if doc.CustomFieldDefinitions == nil {
		doc.CustomFieldDefinitions = []json.RawMessage{}
	}
	if doc.Projects == nil {
		doc.Projects = []model.Project{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	if doc.Notes == nil {
		doc.Notes = []model.Note{}
	}
	if doc.Metadata.Version == "" {
		doc.Metadata.Version = model.SchemaVersion
	}

	for i := range doc.Projects {
		p := &doc.Projects[i]
		fill(&p.Milestones)
		fill(&p.RequirementIDs)
		fill(&p.TaskIDs)
		fill(&p.NoteIDs)
		fill(&p.Tags)
		for j := range p.Milestones {
			m := &p.Milestones[j]
			fill(&m.LinkedTaskIDs)
			fill(&m.LinkedRequirementIDs)
			if m.Status == "" {
				m.Status = model.MilestoneNotStarted
			}
		}
		if p.Status == "" {
			p.Status = model.ProjectPlanning
		}
	}
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		fill(&t.SubtaskIDs)
		fill(&t.FollowUps)
		fill(&t.Tags)
		if t.Status == "" {
			t.Status = model.TaskTodo
		}
		if t.Priority == "" {
			t.Priority = model.PriorityMedium
		}
	}
	for i := range doc.Requirements {
		r := &doc.Requirements[i]
		fill(&r.Children)
		fill(&r.Traces)
		fill(&r.SuspectLinkIDs)
		fill(&r.Tags)
		if r.Version == 0 {
			r.Version = 1
		}
		if n, ok := model.ParseRequirementKey(r.Key); ok && n > doc.Metadata.RequirementKeyCounter {
			doc.Metadata.RequirementKeyCounter = n
		}
	}
	for i := range doc.Notes {
		n := &doc.Notes[i]
		fill(&n.LinkedRequirementIDs)
		fill(&n.LinkedTaskIDs)
		fill(&n.Tags)
		if n.Category == "" {
			n.Category = model.NoteGeneral
		}
	}
	for i := range doc.Baselines {
		fill(&doc.Baselines[i].RequirementSnapshots)
	}
}

func fill[T any](s *[]T) {
	if *s == nil {
		*s = []T{}
	}
}
