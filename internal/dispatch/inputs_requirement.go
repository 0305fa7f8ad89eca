package dispatch

import (
	"fmt"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

type CreateRequirementInput struct {
	Title              string   `json:"title" required:"true"`
	Description        string   `json:"description,omitempty"`
	Type               string   `json:"type,omitempty" enum:"requirementType"`
	Status             string   `json:"status,omitempty" enum:"requirementStatus"`
	Priority           string   `json:"priority,omitempty" enum:"requirementPriority"`
	Project            string   `json:"project,omitempty" desc:"defaults to the active project"`
	Parent             string   `json:"parent,omitempty" desc:"parent requirement id, key or title"`
	TestCoverage       int      `json:"testCoverage,omitempty" desc:"0-100"`
	AcceptanceCriteria string   `json:"acceptanceCriteria,omitempty"`
	Rationale          string   `json:"rationale,omitempty"`
	Tags               []string `json:"tags,omitempty"`

	typ      model.RequirementType
	status   model.RequirementStatus
	priority model.RequirementPriority
}

func (*CreateRequirementInput) Tool() string { return "create_requirement" }

func (in *CreateRequirementInput) Validate() (err error) {
	if err = required("title", in.Title); err != nil {
		return err
	}
	if err = checkCoverage(in.TestCoverage); err != nil {
		return err
	}
	if in.typ, err = parseOptional(in.Type, model.ParseRequirementType); err != nil {
		return err
	}
	if in.status, err = parseOptional(in.Status, model.ParseRequirementStatus); err != nil {
		return err
	}
	in.priority, err = parseOptional(in.Priority, model.ParseRequirementPriority)
	return err
}

type UpdateRequirementInput struct {
	Requirement        string    `json:"requirement" required:"true" desc:"requirement id, key or title"`
	Title              *string   `json:"title,omitempty"`
	Description        *string   `json:"description,omitempty"`
	Type               *string   `json:"type,omitempty" enum:"requirementType"`
	Status             *string   `json:"status,omitempty" enum:"requirementStatus"`
	Priority           *string   `json:"priority,omitempty" enum:"requirementPriority"`
	Parent             *string   `json:"parent,omitempty" desc:"empty detaches from the parent"`
	TestCoverage       *int      `json:"testCoverage,omitempty"`
	AcceptanceCriteria *string   `json:"acceptanceCriteria,omitempty"`
	Rationale          *string   `json:"rationale,omitempty"`
	Tags               *[]string `json:"tags,omitempty"`

	typ      *model.RequirementType
	status   *model.RequirementStatus
	priority *model.RequirementPriority
}

func (*UpdateRequirementInput) Tool() string { return "update_requirement" }

func (in *UpdateRequirementInput) Validate() (err error) {
	if err = required("requirement", in.Requirement); err != nil {
		return err
	}
	if in.TestCoverage != nil {
		if err = checkCoverage(*in.TestCoverage); err != nil {
			return err
		}
	}
	if in.typ, err = parsePatch(in.Type, model.ParseRequirementType); err != nil {
		return err
	}
	if in.status, err = parsePatch(in.Status, model.ParseRequirementStatus); err != nil {
		return err
	}
	in.priority, err = parsePatch(in.Priority, model.ParseRequirementPriority)
	return err
}

func checkCoverage(c int) error {
	if c < 0 || c > 100 {
		return fmt.Errorf("testCoverage must be between 0 and 100, got %d", c)
	}
	return nil
}

type DeleteRequirementInput struct {
	Requirement string `json:"requirement" required:"true" desc:"requirement id, key or title"`
}

func (*DeleteRequirementInput) Tool() string { return "delete_requirement" }

func (in *DeleteRequirementInput) Validate() error {
	return required("requirement", in.Requirement)
}

type ListRequirementsInput struct {
	Project     string `json:"project,omitempty" desc:"defaults to the active project"`
	AllProjects bool   `json:"allProjects,omitempty"`
	Status      string `json:"status,omitempty" enum:"requirementStatus"`
	Type        string `json:"type,omitempty" enum:"requirementType"`
	SuspectOnly bool   `json:"suspectOnly,omitempty"`

	status model.RequirementStatus
	typ    model.RequirementType
}

func (*ListRequirementsInput) Tool() string { return "list_requirements" }

func (in *ListRequirementsInput) Validate() (err error) {
	if in.status, err = parseOptional(in.Status, model.ParseRequirementStatus); err != nil {
		return err
	}
	in.typ, err = parseOptional(in.Type, model.ParseRequirementType)
	return err
}

type FindRequirementInput struct {
	Query string `json:"query" required:"true" desc:"key or title fragment"`
	Limit int    `json:"limit,omitempty" desc:"maximum matches, default 5"`
}

func (*FindRequirementInput) Tool() string { return "find_requirement" }

func (in *FindRequirementInput) Validate() error {
	if in.Limit < 0 {
		return fmt.Errorf("limit must be >= 0")
	}
	return required("query", in.Query)
}

type LinkRequirementInput struct {
	Requirement string `json:"requirement" required:"true" desc:"requirement id, key or title"`
	Milestone   string `json:"milestone" required:"true" desc:"milestone id or name"`
}

func (*LinkRequirementInput) Tool() string { return "link_requirement_to_milestone" }

func (in *LinkRequirementInput) Validate() error {
	if err := required("requirement", in.Requirement); err != nil {
		return err
	}
	return required("milestone", in.Milestone)
}

type AddTraceLinkInput struct {
	Source      string `json:"source" required:"true" desc:"source requirement id, key or title"`
	Target      string `json:"target" required:"true" desc:"target id; requirement and task targets may be keys or titles"`
	TargetType  string `json:"targetType,omitempty" enum:"targetType" desc:"default requirement"`
	LinkType    string `json:"linkType,omitempty" enum:"linkType" desc:"default related-to"`
	Description string `json:"description,omitempty"`

	targetType model.TargetType
	linkType   model.LinkType
}

func (*AddTraceLinkInput) Tool() string { return "add_trace_link" }

func (in *AddTraceLinkInput) Validate() (err error) {
	if err = required("source", in.Source); err != nil {
		return err
	}
	if err = required("target", in.Target); err != nil {
		return err
	}
	if in.targetType, err = parseOptional(in.TargetType, model.ParseTargetType); err != nil {
		return err
	}
	if in.targetType == "" {
		in.targetType = model.TargetRequirement
	}
	if in.linkType, err = parseOptional(in.LinkType, model.ParseLinkType); err != nil {
		return err
	}
	if in.linkType == "" {
		in.linkType = model.LinkRelatedTo
	}
	return nil
}

type RemoveTraceLinkInput struct {
	Source string `json:"source" required:"true" desc:"source requirement id, key or title"`
	Link   string `json:"link" required:"true" desc:"trace link id or target id"`
}

func (*RemoveTraceLinkInput) Tool() string { return "remove_trace_link" }

func (in *RemoveTraceLinkInput) Validate() error {
	if err := required("source", in.Source); err != nil {
		return err
	}
	return required("link", in.Link)
}

type ClearSuspectInput struct {
	Requirement string `json:"requirement" required:"true" desc:"requirement id, key or title"`
	Link        string `json:"link,omitempty" desc:"trace link id or target id; empty clears every suspect link"`
}

func (*ClearSuspectInput) Tool() string { return "clear_suspect_link" }

func (in *ClearSuspectInput) Validate() error {
	return required("requirement", in.Requirement)
}

type SuspectRequirementsInput struct{}

func (*SuspectRequirementsInput) Tool() string    { return "get_suspect_requirements" }
func (*SuspectRequirementsInput) Validate() error { return nil }

type AnalyzeImpactInput struct {
	Requirement string `json:"requirement" required:"true" desc:"requirement id, key or title"`
}

func (*AnalyzeImpactInput) Tool() string { return "analyze_impact" }

func (in *AnalyzeImpactInput) Validate() error {
	return required("requirement", in.Requirement)
}

type CoverageReportInput struct{}

func (*CoverageReportInput) Tool() string    { return "coverage_report" }
func (*CoverageReportInput) Validate() error { return nil }

type CreateBaselineInput struct {
	Name         string   `json:"name" required:"true"`
	Description  string   `json:"description,omitempty"`
	Project      string   `json:"project,omitempty" desc:"defaults to the active project"`
	Requirements []string `json:"requirements,omitempty" desc:"requirement ids or keys; default every requirement in the project"`
	Lock         bool     `json:"lock,omitempty" desc:"lock the baseline and its requirements"`
}

func (*CreateBaselineInput) Tool() string { return "create_baseline" }

func (in *CreateBaselineInput) Validate() error {
	return required("name", in.Name)
}

type LockBaselineInput struct {
	Baseline string `json:"baseline" required:"true" desc:"baseline id or name"`
}

func (*LockBaselineInput) Tool() string { return "lock_baseline" }

func (in *LockBaselineInput) Validate() error {
	return required("baseline", in.Baseline)
}

type ListBaselinesInput struct{}

func (*ListBaselinesInput) Tool() string    { return "list_baselines" }
func (*ListBaselinesInput) Validate() error { return nil }

type CompareBaselineInput struct {
	Baseline string `json:"baseline" required:"true" desc:"baseline id or name"`
}

func (*CompareBaselineInput) Tool() string { return "compare_baseline" }

func (in *CompareBaselineInput) Validate() error {
	return required("baseline", in.Baseline)
}
