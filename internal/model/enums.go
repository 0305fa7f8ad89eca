package model

import (
	"fmt"
	"strings"
)

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on-hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

var ProjectStatuses = []ProjectStatus{ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled}

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "not-started"
	MilestoneInProgress MilestoneStatus = "in-progress"
	MilestoneCompleted  MilestoneStatus = "completed"
	MilestoneDelayed    MilestoneStatus = "delayed"
	MilestoneCancelled  MilestoneStatus = "cancelled"
)

var MilestoneStatuses = []MilestoneStatus{MilestoneNotStarted, MilestoneInProgress, MilestoneCompleted, MilestoneDelayed, MilestoneCancelled}

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskInReview   TaskStatus = "in-review"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskBlocked, TaskInReview, TaskDone, TaskCancelled}

// Open reports whether work on the task is still expected.
func (s TaskStatus) Open() bool {
	return s != TaskDone && s != TaskCancelled
}

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

var TaskPriorities = []TaskPriority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

type RequirementType string

const (
	TypeFunctional    RequirementType = "functional"
	TypeNonFunctional RequirementType = "non-functional"
	TypeInterface     RequirementType = "interface"
	TypeConstraint    RequirementType = "constraint"
	TypeBusiness      RequirementType = "business"
	TypeSystem        RequirementType = "system"
	TypeSoftware      RequirementType = "software"
	TypeHardware      RequirementType = "hardware"
	TypePerformance   RequirementType = "performance"
	TypeSafety        RequirementType = "safety"
	TypeSecurity      RequirementType = "security"
	TypeStakeholder   RequirementType = "stakeholder"
)

var RequirementTypes = []RequirementType{
	TypeFunctional, TypeNonFunctional, TypeInterface, TypeConstraint, TypeBusiness, TypeSystem,
	TypeSoftware, TypeHardware, TypePerformance, TypeSafety, TypeSecurity, TypeStakeholder,
}

// RequirementStatus follows Draft → … → Released with side exits.
// Transitions are not validated: any status may be set from any other.
type RequirementStatus string

const (
	ReqDraft       RequirementStatus = "draft"
	ReqProposed    RequirementStatus = "proposed"
	ReqUnderReview RequirementStatus = "under-review"
	ReqReviewed    RequirementStatus = "reviewed"
	ReqApproved    RequirementStatus = "approved"
	ReqActive      RequirementStatus = "active"
	ReqImplemented RequirementStatus = "implemented"
	ReqVerified    RequirementStatus = "verified"
	ReqValidated   RequirementStatus = "validated"
	ReqReleased    RequirementStatus = "released"
	ReqRejected    RequirementStatus = "rejected"
	ReqDeferred    RequirementStatus = "deferred"
	ReqDeprecated  RequirementStatus = "deprecated"
	ReqDeleted     RequirementStatus = "deleted"
)

var RequirementStatuses = []RequirementStatus{
	ReqDraft, ReqProposed, ReqUnderReview, ReqReviewed, ReqApproved, ReqActive, ReqImplemented,
	ReqVerified, ReqValidated, ReqReleased, ReqRejected, ReqDeferred, ReqDeprecated, ReqDeleted,
}

type RequirementPriority string

const (
	ReqPriorityCritical RequirementPriority = "critical"
	ReqPriorityHigh     RequirementPriority = "high"
	ReqPriorityMedium   RequirementPriority = "medium"
	ReqPriorityLow      RequirementPriority = "low"
)

var RequirementPriorities = []RequirementPriority{ReqPriorityCritical, ReqPriorityHigh, ReqPriorityMedium, ReqPriorityLow}

type TargetType string

const (
	TargetRequirement TargetType = "requirement"
	TargetTask        TargetType = "task"
	TargetTestCase    TargetType = "test-case"
	TargetCode        TargetType = "code"
	TargetDocument    TargetType = "document"
	TargetExternal    TargetType = "external"
	TargetComponent   TargetType = "component"
	TargetDefect      TargetType = "defect"
	TargetRiskItem    TargetType = "risk-item"
)

var TargetTypes = []TargetType{
	TargetRequirement, TargetTask, TargetTestCase, TargetCode, TargetDocument,
	TargetExternal, TargetComponent, TargetDefect, TargetRiskItem,
}

type LinkType string

const (
	LinkDerivesFrom   LinkType = "derives-from"
	LinkRefines       LinkType = "refines"
	LinkSatisfies     LinkType = "satisfies"
	LinkVerifies      LinkType = "verifies"
	LinkImplements    LinkType = "implements"
	LinkRelatedTo     LinkType = "related-to"
	LinkConflictsWith LinkType = "conflicts-with"
	LinkDependsOn     LinkType = "depends-on"
)

var LinkTypes = []LinkType{
	LinkDerivesFrom, LinkRefines, LinkSatisfies, LinkVerifies,
	LinkImplements, LinkRelatedTo, LinkConflictsWith, LinkDependsOn,
}

type NoteCategory string

const (
	NoteGeneral       NoteCategory = "general"
	NoteMeetingNotes  NoteCategory = "meeting-notes"
	NoteDecision      NoteCategory = "decision"
	NoteTechnicalNote NoteCategory = "technical-note"
	NoteReview        NoteCategory = "review"
	NoteIdea          NoteCategory = "idea"
	NoteIssue         NoteCategory = "issue"
)

var NoteCategories = []NoteCategory{NoteGeneral, NoteMeetingNotes, NoteDecision, NoteTechnicalNote, NoteReview, NoteIdea, NoteIssue}

type BaselineStatus string

const (
	BaselineDraft  BaselineStatus = "draft"
	BaselineLocked BaselineStatus = "locked"
)

// aliases maps normalized free-text spellings onto canonical enum values.
// Keys are already normalized; values must be members of the target enum.
var aliases = map[string]string{
	"complete":      "completed",
	"finished":      "completed",
	"to-do":         "todo",
	"open":          "todo",
	"notstarted":    "not-started",
	"inprogress":    "in-progress",
	"doing":         "in-progress",
	"wip":           "in-progress",
	"started":       "in-progress",
	"inreview":      "in-review",
	"review":        "in-review",
	"onhold":        "on-hold",
	"paused":        "on-hold",
	"hold":          "on-hold",
	"canceled":      "cancelled",
	"underreview":   "under-review",
	"nonfunctional": "non-functional",
	"nfr":           "non-functional",
	"testcase":      "test-case",
	"test":          "test-case",
	"riskitem":      "risk-item",
	"risk":          "risk-item",
	"derivesfrom":   "derives-from",
	"derived-from":  "derives-from",
	"relatedto":     "related-to",
	"related":       "related-to",
	"conflictswith": "conflicts-with",
	"conflicts":     "conflicts-with",
	"dependson":     "depends-on",
	"depends":       "depends-on",
	"meeting":       "meeting-notes",
	"meetingnotes":  "meeting-notes",
	"meeting-note":  "meeting-notes",
	"technical":     "technical-note",
	"technicalnote": "technical-note",
	"tech-note":     "technical-note",
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}

func parseEnum[T ~string](kind, raw string, values []T, extra map[string]T) (T, error) {
	n := normalize(raw)
	if v, ok := extra[n]; ok {
		return v, nil
	}
	for _, v := range values {
		if string(v) == n {
			return v, nil
		}
	}
	if a, ok := aliases[n]; ok {
		for _, v := range values {
			if string(v) == a {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("invalid %s %q (must be one of %s)", kind, raw, joinValues(values))
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Values returns the string forms of an enum's members, for catalogs and prompts.
func Values[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	return parseEnum("project status", s, ProjectStatuses, nil)
}

func ParseMilestoneStatus(s string) (MilestoneStatus, error) {
	return parseEnum("milestone status", s, MilestoneStatuses, map[string]MilestoneStatus{
		"done":    MilestoneCompleted,
		"pending": MilestoneNotStarted,
		"todo":    MilestoneNotStarted,
		"late":    MilestoneDelayed,
	})
}

func ParseTaskStatus(s string) (TaskStatus, error) {
	return parseEnum("task status", s, TaskStatuses, map[string]TaskStatus{
		"completed": TaskDone,
		"complete":  TaskDone,
		"finished":  TaskDone,
		"closed":    TaskDone,
		"pending":   TaskTodo,
	})
}

func ParseTaskPriority(s string) (TaskPriority, error) {
	return parseEnum("task priority", s, TaskPriorities, map[string]TaskPriority{
		"critical": PriorityUrgent,
		"normal":   PriorityMedium,
		"med":      PriorityMedium,
	})
}

func ParseRequirementType(s string) (RequirementType, error) {
	return parseEnum("requirement type", s, RequirementTypes, nil)
}

func ParseRequirementStatus(s string) (RequirementStatus, error) {
	return parseEnum("requirement status", s, RequirementStatuses, map[string]RequirementStatus{
		"in-review": ReqUnderReview,
		"review":    ReqUnderReview,
		"done":      ReqImplemented,
	})
}

func ParseRequirementPriority(s string) (RequirementPriority, error) {
	return parseEnum("requirement priority", s, RequirementPriorities, map[string]RequirementPriority{
		"urgent": ReqPriorityCritical,
		"normal": ReqPriorityMedium,
	})
}

func ParseTargetType(s string) (TargetType, error) {
	return parseEnum("target type", s, TargetTypes, nil)
}

func ParseLinkType(s string) (LinkType, error) {
	return parseEnum("link type", s, LinkTypes, nil)
}

func ParseNoteCategory(s string) (NoteCategory, error) {
	return parseEnum("note category", s, NoteCategories, nil)
}
