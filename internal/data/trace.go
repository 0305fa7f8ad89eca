package data

import (
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type TraceInput struct {
	SourceID    string
	TargetID    string
	TargetType  model.TargetType
	LinkType    model.LinkType
	Description string
}

// AddTraceLink appends a link to the source requirement. Requirement and
// task targets must exist; other target types are free-form references.
// Cycles are allowed. Adding a link that already exists returns it unchanged.
func (s *Service) AddTraceLink(in TraceInput) (model.TraceLink, error) {
	var out model.TraceLink
	err := s.update(func() ([]Change, error) {
		src := s.requirement(in.SourceID)
		if src == nil {
			return nil, notFound("requirement", in.SourceID)
		}
		if strings.TrimSpace(in.TargetID) == "" {
			return nil, invalid("trace target is required")
		}
		if in.TargetType == "" {
			in.TargetType = model.TargetRequirement
		}
		if in.LinkType == "" {
			in.LinkType = model.LinkRelatedTo
		}
		switch in.TargetType {
		case model.TargetRequirement:
			if s.requirement(in.TargetID) == nil {
				return nil, notFound("requirement", in.TargetID)
			}
		case model.TargetTask:
			if s.task(in.TargetID) == nil {
				return nil, notFound("task", in.TargetID)
			}
		}
		for _, l := range src.Traces {
			if l.TargetID == in.TargetID && l.TargetType == in.TargetType && l.LinkType == in.LinkType {
				out = l
				return nil, nil
			}
		}
		now := s.now()
		l := model.NewTraceLink(in.TargetID, in.TargetType, in.LinkType, now)
		l.ID = s.newID()
		l.Description = in.Description
		src.Traces = append(src.Traces, l)
		src.UpdatedAt = now
		out = l
		return []Change{{OpUpdate, KindRequirement, src.ID}}, nil
	})
	return out, err
}

func (s *Service) RemoveTraceLink(sourceID, linkID string) (bool, error) {
	removed := false
	err := s.update(func() ([]Change, error) {
		src := s.requirement(sourceID)
		if src == nil {
			return nil, notFound("requirement", sourceID)
		}
		for i, l := range src.Traces {
			if l.ID != linkID {
				continue
			}
			src.Traces = append(src.Traces[:i], src.Traces[i+1:]...)
			src.SuspectLinkIDs = removeString(src.SuspectLinkIDs, linkID)
			src.HasSuspectLinks = len(src.SuspectLinkIDs) > 0
			src.UpdatedAt = s.now()
			removed = true
			return []Change{{OpUpdate, KindRequirement, sourceID}}, nil
		}
		return nil, nil
	})
	return removed, err
}

// ClearSuspectLink clears the suspect flag on one of the source's links.
func (s *Service) ClearSuspectLink(sourceID, linkID string) (model.Requirement, error) {
	var out model.Requirement
	err := s.update(func() ([]Change, error) {
		src := s.requirement(sourceID)
		if src == nil {
			return nil, notFound("requirement", sourceID)
		}
		l := src.Trace(linkID)
		if l == nil {
			return nil, notFound("trace link", linkID)
		}
		if !l.IsSuspect && !containsString(src.SuspectLinkIDs, linkID) {
			out = src.Clone()
			return nil, nil
		}
		l.IsSuspect = false
		src.SuspectLinkIDs = removeString(src.SuspectLinkIDs, linkID)
		src.HasSuspectLinks = len(src.SuspectLinkIDs) > 0
		src.UpdatedAt = s.now()
		out = src.Clone()
		return []Change{{OpUpdate, KindRequirement, sourceID}}, nil
	})
	return out, err
}

// ClearAllSuspectLinks clears every suspect flag on the requirement.
func (s *Service) ClearAllSuspectLinks(sourceID string) (model.Requirement, error) {
	var out model.Requirement
	err := s.update(func() ([]Change, error) {
		src := s.requirement(sourceID)
		if src == nil {
			return nil, notFound("requirement", sourceID)
		}
		if !src.HasSuspectLinks && len(src.SuspectLinkIDs) == 0 {
			out = src.Clone()
			return nil, nil
		}
		for i := range src.Traces {
			src.Traces[i].IsSuspect = false
		}
		src.SuspectLinkIDs = []string{}
		src.HasSuspectLinks = false
		src.UpdatedAt = s.now()
		out = src.Clone()
		return []Change{{OpUpdate, KindRequirement, sourceID}}, nil
	})
	return out, err
}

// markSuspect flags every link on other requirements that targets id.
func (s *Service) markSuspect(id string) []Change {
	var changes []Change
	for i := range s.doc.Requirements {
		r := &s.doc.Requirements[i]
		if r.ID == id {
			continue
		}
		marked := false
		for j := range r.Traces {
			l := &r.Traces[j]
			if l.TargetType != model.TargetRequirement || l.TargetID != id {
				continue
			}
			l.IsSuspect = true
			r.SuspectLinkIDs = appendUnique(r.SuspectLinkIDs, l.ID)
			marked = true
		}
		if marked {
			r.HasSuspectLinks = true
			changes = append(changes, Change{OpUpdate, KindRequirement, r.ID})
		}
	}
	return changes
}

type SuspectRequirement struct {
	Requirement  model.Requirement `json:"requirement"`
	SuspectCount int               `json:"suspectCount"`
}

// GetSuspectRequirements returns requirements that have suspect links.
func (s *Service) GetSuspectRequirements() []SuspectRequirement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []SuspectRequirement{}
	for _, r := range s.doc.Requirements {
		if r.HasSuspectLinks {
			out = append(out, SuspectRequirement{Requirement: r.Clone(), SuspectCount: len(r.SuspectLinkIDs)})
		}
	}
	return out
}

const (
	DirectionOutgoing = "outgoing"
	DirectionIncoming = "incoming"
)

// ImpactItem is one node reached from the analyzed requirement.
type ImpactItem struct {
	ID         string           `json:"id"`
	Key        string           `json:"key,omitempty"`
	Title      string           `json:"title,omitempty"`
	TargetType model.TargetType `json:"type"`
	LinkType   model.LinkType   `json:"linkType"`
	Direction  string           `json:"direction"`
	Depth      int              `json:"depth"`
	Via        string           `json:"via"`
	Missing    bool             `json:"missing,omitempty"`
}

type ImpactReport struct {
	RequirementID string       `json:"requirementId"`
	Key           string       `json:"key"`
	Title         string       `json:"title"`
	Items         []ImpactItem `json:"items"`
	Direct        int          `json:"direct"`
	Transitive    int          `json:"transitive"`
}

type traceRef struct {
	source int
	link   int
}

// AnalyzeImpact walks the trace graph breadth first from id, following both
// the requirement's own links and other requirements' links that target it.
// Each node is reported once, at the depth it was first reached.
func (s *Service) AnalyzeImpact(id string) (ImpactReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	root := s.requirement(id)
	if root == nil {
		return ImpactReport{}, notFound("requirement", id)
	}

	incoming := map[string][]traceRef{}
	for i, r := range s.doc.Requirements {
		for j, l := range r.Traces {
			if l.TargetType == model.TargetRequirement {
				incoming[l.TargetID] = append(incoming[l.TargetID], traceRef{i, j})
			}
		}
	}

	rep := ImpactReport{RequirementID: root.ID, Key: root.Key, Title: root.Title, Items: []ImpactItem{}}
	nodeKey := func(t model.TargetType, id string) string { return string(t) + ":" + id }
	visited := map[string]bool{nodeKey(model.TargetRequirement, root.ID): true}
	type step struct {
		id    string
		depth int
	}
	queue := []step{{root.ID, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		r := s.requirement(cur.id)
		depth := cur.depth + 1

		for _, l := range r.Traces {
			k := nodeKey(l.TargetType, l.TargetID)
			if visited[k] {
				continue
			}
			visited[k] = true
			item := s.impactItem(l.TargetType, l.TargetID)
			item.LinkType, item.Direction, item.Depth, item.Via = l.LinkType, DirectionOutgoing, depth, r.Key
			rep.Items = append(rep.Items, item)
			if l.TargetType == model.TargetRequirement && !item.Missing {
				queue = append(queue, step{l.TargetID, depth})
			}
		}
		for _, ref := range incoming[r.ID] {
			src := &s.doc.Requirements[ref.source]
			k := nodeKey(model.TargetRequirement, src.ID)
			if visited[k] {
				continue
			}
			visited[k] = true
			rep.Items = append(rep.Items, ImpactItem{
				ID:         src.ID,
				Key:        src.Key,
				Title:      src.Title,
				TargetType: model.TargetRequirement,
				LinkType:   src.Traces[ref.link].LinkType,
				Direction:  DirectionIncoming,
				Depth:      depth,
				Via:        r.Key,
			})
			queue = append(queue, step{src.ID, depth})
		}
	}
	for _, it := range rep.Items {
		if it.Depth == 1 {
			rep.Direct++
		} else {
			rep.Transitive++
		}
	}
	return rep, nil
}

func (s *Service) impactItem(t model.TargetType, id string) ImpactItem {
	item := ImpactItem{ID: id, TargetType: t}
	switch t {
	case model.TargetRequirement:
		if r := s.requirement(id); r != nil {
			item.Key, item.Title = r.Key, r.Title
		} else {
			item.Missing = true
		}
	case model.TargetTask:
		if tk := s.task(id); tk != nil {
			item.Title = tk.Title
		} else {
			item.Missing = true
		}
	}
	return item
}

type RequirementSummary struct {
	ID           string                  `json:"id"`
	Key          string                  `json:"key"`
	Title        string                  `json:"title"`
	Status       model.RequirementStatus `json:"status"`
	TestCoverage int                     `json:"testCoverage"`
}

func summarize(r model.Requirement) RequirementSummary {
	return RequirementSummary{ID: r.ID, Key: r.Key, Title: r.Title, Status: r.Status, TestCoverage: r.TestCoverage}
}

type CoverageReport struct {
	ProjectID        string               `json:"projectId,omitempty"`
	Total            int                  `json:"total"`
	Covered          int                  `json:"covered"`
	PartiallyCovered int                  `json:"partiallyCovered"`
	Uncovered        int                  `json:"uncovered"`
	Percentage       float64              `json:"percentage"`
	UncoveredItems   []RequirementSummary `json:"uncoveredItems"`
}

// GenerateCoverageReport buckets the active project's requirements by test
// coverage. Percentage is the fully covered share, 0 when there are none.
func (s *Service) GenerateCoverageReport() CoverageReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep := CoverageReport{ProjectID: s.doc.Metadata.ActiveProjectID, UncoveredItems: []RequirementSummary{}}
	for _, r := range s.doc.Requirements {
		if !s.inScope(r.ProjectID) {
			continue
		}
		rep.Total++
		switch {
		case r.TestCoverage >= 100:
			rep.Covered++
		case r.TestCoverage > 0:
			rep.PartiallyCovered++
		default:
			rep.Uncovered++
			rep.UncoveredItems = append(rep.UncoveredItems, summarize(r))
		}
	}
	if rep.Total > 0 {
		rep.Percentage = float64(rep.Covered) / float64(rep.Total) * 100
	}
	return rep
}
