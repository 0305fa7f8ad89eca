package dispatch

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/reqtrack/internal/data"
	"github.com/jorge-barreto/reqtrack/internal/match"
	"github.com/jorge-barreto/reqtrack/internal/model"
)

type requirementMatch struct {
	Requirement model.Requirement `json:"requirement"`
	Score       float64           `json:"score"`
}

type baselineView struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	ProjectID    string               `json:"projectId,omitempty"`
	Status       model.BaselineStatus `json:"status"`
	Requirements int                  `json:"requirements"`
}

func (d *Dispatcher) createRequirement(in *CreateRequirementInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	var parentID string
	if strings.TrimSpace(in.Parent) != "" {
		parent, err := d.requirement(in.Parent)
		if err != nil {
			return d.fail(err)
		}
		parentID = parent.ID
	}
	r, err := d.svc.AddRequirement(data.RequirementInput{
		Title:              in.Title,
		Description:        in.Description,
		Type:               in.typ,
		Status:             in.status,
		Priority:           in.priority,
		ProjectID:          pid,
		ParentID:           parentID,
		TestCoverage:       in.TestCoverage,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Rationale:          in.Rationale,
		Tags:               in.Tags,
	})
	res := OK(fmt.Sprintf("Created %s %q", r.Key, r.Title)).With("requirement", r)
	return d.finish(res, err)
}

func (d *Dispatcher) updateRequirement(in *UpdateRequirementInput) Result {
	r, err := d.requirement(in.Requirement)
	if err != nil {
		return d.fail(err)
	}
	patch := data.RequirementPatch{
		Title:              in.Title,
		Description:        in.Description,
		Type:               in.typ,
		Status:             in.status,
		Priority:           in.priority,
		TestCoverage:       in.TestCoverage,
		AcceptanceCriteria: in.AcceptanceCriteria,
		Rationale:          in.Rationale,
		Tags:               in.Tags,
	}
	if in.Parent != nil {
		patch.ParentID = ptr("")
		if strings.TrimSpace(*in.Parent) != "" {
			parent, err := d.requirement(*in.Parent)
			if err != nil {
				return d.fail(err)
			}
			patch.ParentID = &parent.ID
		}
	}
	r, err = d.svc.UpdateRequirement(r.ID, patch)
	return d.finish(OK(fmt.Sprintf("Updated %s", r.Key)).With("requirement", r), err)
}

func (d *Dispatcher) deleteRequirement(in *DeleteRequirementInput) Result {
	r, err := d.requirement(in.Requirement)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.DeleteRequirement(r.ID)
	if err == nil && !removed {
		return Fail("requirement %s no longer exists", r.Key)
	}
	return d.finish(OK(fmt.Sprintf("Deleted %s %q", r.Key, r.Title)).With("requirementId", r.ID), err)
}

func (d *Dispatcher) listRequirements(in *ListRequirementsInput) Result {
	var reqs []model.Requirement
	switch {
	case in.AllProjects:
		reqs = d.svc.Requirements()
	case strings.TrimSpace(in.Project) != "":
		p, err := d.project(in.Project)
		if err != nil {
			return d.fail(err)
		}
		for _, r := range d.svc.Requirements() {
			if r.ProjectID == p.ID {
				reqs = append(reqs, r)
			}
		}
	default:
		reqs = d.svc.RequirementsByActiveProject()
	}
	out := []model.Requirement{}
	for _, r := range reqs {
		switch {
		case in.status != "" && r.Status != in.status:
		case in.typ != "" && r.Type != in.typ:
		case in.SuspectOnly && !r.HasSuspectLinks:
		default:
			out = append(out, r)
		}
	}
	return OK(plural(len(out), "requirement")).With("requirements", out).With("count", len(out))
}

func (d *Dispatcher) findRequirement(in *FindRequirementInput) Result {
	if r, ok := d.svc.RequirementByKey(in.Query); ok {
		return OK(fmt.Sprintf("Found %s", r.Key)).
			With("matches", []requirementMatch{{Requirement: r, Score: 1}}).
			With("count", 1)
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultFindLimit
	}
	ranked := match.Rank(in.Query, d.svc.RequirementsByActiveProject(), requirementTitle)
	if len(ranked) == 0 {
		ranked = match.Rank(in.Query, d.svc.Requirements(), requirementTitle)
	}
	if len(ranked) == 0 {
		_, err := pick("requirement", "availableRequirements", in.Query,
			d.svc.RequirementsByActiveProject(), d.svc.Requirements(), requirementTitle, requirementCandidate)
		return d.fail(err)
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]requirementMatch, len(ranked))
	for i, s := range ranked {
		out[i] = requirementMatch{Requirement: s.Item, Score: s.Score}
	}
	best := out[0].Requirement
	return OK(fmt.Sprintf("Best match: %s %q", best.Key, best.Title)).With("matches", out).With("count", len(out))
}

func (d *Dispatcher) addTraceLink(in *AddTraceLinkInput) Result {
	src, err := d.requirement(in.Source)
	if err != nil {
		return d.fail(err)
	}
	targetID, err := d.traceTarget(in.Target, in.targetType)
	if err != nil {
		return d.fail(err)
	}
	l, err := d.svc.AddTraceLink(data.TraceInput{
		SourceID:    src.ID,
		TargetID:    targetID,
		TargetType:  in.targetType,
		LinkType:    in.linkType,
		Description: in.Description,
	})
	if !data.Applied(err) {
		return d.fail(err)
	}
	res := OK(fmt.Sprintf("%s %s %s", src.Key, l.LinkType, d.describeTarget(l))).
		With("link", l).
		With("sourceId", src.ID)
	return d.finish(res, err)
}

func (d *Dispatcher) removeTraceLink(in *RemoveTraceLinkInput) Result {
	src, err := d.requirement(in.Source)
	if err != nil {
		return d.fail(err)
	}
	l, err := d.traceLink(src, in.Link)
	if err != nil {
		return d.fail(err)
	}
	removed, err := d.svc.RemoveTraceLink(src.ID, l.ID)
	if err == nil && !removed {
		return Fail("trace link %s no longer exists", l.ID)
	}
	return d.finish(OK(fmt.Sprintf("Removed link from %s", src.Key)).With("linkId", l.ID), err)
}

func (d *Dispatcher) clearSuspect(in *ClearSuspectInput) Result {
	r, err := d.requirement(in.Requirement)
	if err != nil {
		return d.fail(err)
	}
	if strings.TrimSpace(in.Link) == "" {
		r, err = d.svc.ClearAllSuspectLinks(r.ID)
		return d.finish(OK(fmt.Sprintf("Cleared all suspect links on %s", r.Key)).With("requirement", r), err)
	}
	l, err := d.traceLink(r, in.Link)
	if err != nil {
		return d.fail(err)
	}
	r, err = d.svc.ClearSuspectLink(r.ID, l.ID)
	return d.finish(OK(fmt.Sprintf("Cleared suspect link on %s", r.Key)).With("requirement", r), err)
}

func (d *Dispatcher) suspectRequirements() Result {
	sus := d.svc.GetSuspectRequirements()
	return OK(fmt.Sprintf("%s with suspect links", plural(len(sus), "requirement"))).
		With("requirements", sus).
		With("count", len(sus))
}

func (d *Dispatcher) analyzeImpact(in *AnalyzeImpactInput) Result {
	r, err := d.requirement(in.Requirement)
	if err != nil {
		return d.fail(err)
	}
	rep, err := d.svc.AnalyzeImpact(r.ID)
	if err != nil {
		return d.fail(err)
	}
	msg := fmt.Sprintf("%s affects %d directly and %d transitively", rep.Key, rep.Direct, rep.Transitive)
	return OK(msg).With("impact", rep)
}

func (d *Dispatcher) coverageReport() Result {
	rep := d.svc.GenerateCoverageReport()
	return OK(fmt.Sprintf("%.1f%% of %s covered", rep.Percentage, plural(rep.Total, "requirement"))).
		With("coverage", rep)
}

func (d *Dispatcher) createBaseline(in *CreateBaselineInput) Result {
	pid, err := d.projectID(in.Project)
	if err != nil {
		return d.fail(err)
	}
	ids := make([]string, 0, len(in.Requirements))
	for _, q := range in.Requirements {
		r, err := d.requirement(q)
		if err != nil {
			return d.fail(err)
		}
		ids = append(ids, r.ID)
	}
	b, err := d.svc.CreateBaseline(data.BaselineInput{
		Name:           in.Name,
		Description:    in.Description,
		ProjectID:      pid,
		RequirementIDs: ids,
		Lock:           in.Lock,
	})
	res := OK(fmt.Sprintf("Created baseline %q with %s", b.Name, plural(len(b.RequirementSnapshots), "requirement"))).
		With("baseline", viewBaseline(b))
	return d.finish(res, err)
}

func (d *Dispatcher) lockBaseline(in *LockBaselineInput) Result {
	b, err := d.baseline(in.Baseline)
	if err != nil {
		return d.fail(err)
	}
	b, err = d.svc.LockBaseline(b.ID)
	return d.finish(OK(fmt.Sprintf("Locked baseline %q", b.Name)).With("baseline", viewBaseline(b)), err)
}

func (d *Dispatcher) listBaselines() Result {
	bs := d.svc.Baselines()
	views := make([]baselineView, len(bs))
	for i, b := range bs {
		views[i] = viewBaseline(b)
	}
	return OK(plural(len(views), "baseline")).With("baselines", views).With("count", len(views))
}

func (d *Dispatcher) compareBaseline(in *CompareBaselineInput) Result {
	b, err := d.baseline(in.Baseline)
	if err != nil {
		return d.fail(err)
	}
	diff, err := d.svc.CompareBaseline(b.ID)
	if err != nil {
		return d.fail(err)
	}
	msg := fmt.Sprintf("%d changed, %d removed, %d unchanged since %q",
		len(diff.Changed), len(diff.Removed), diff.Unchanged, b.Name)
	return OK(msg).With("diff", diff)
}

func viewBaseline(b model.Baseline) baselineView {
	return baselineView{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		ProjectID:    b.ProjectID,
		Status:       b.Status,
		Requirements: len(b.RequirementSnapshots),
	}
}
