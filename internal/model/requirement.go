package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const keyPrefix = "REQ-"

type Requirement struct {
	ID                 string              `json:"id"`
	Key                string              `json:"key"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Type               RequirementType     `json:"type"`
	Status             RequirementStatus   `json:"status"`
	Priority           RequirementPriority `json:"priority"`
	ProjectID          string              `json:"projectId,omitempty"`
	ParentID           string              `json:"parentId,omitempty"`
	Children           []string            `json:"children"`
	Traces             []TraceLink         `json:"traces"`
	SuspectLinkIDs     []string            `json:"suspectLinkIds"`
	HasSuspectLinks    bool                `json:"hasSuspectLinks"`
	TestCoverage       int                 `json:"testCoverage"`
	IsLocked           bool                `json:"isLocked"`
	AcceptanceCriteria string              `json:"acceptanceCriteria,omitempty"`
	Rationale          string              `json:"rationale,omitempty"`
	Tags               []string            `json:"tags"`
	Version            int                 `json:"version"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// TraceLink is owned by its source requirement.
type TraceLink struct {
	ID          string     `json:"id"`
	TargetID    string     `json:"targetId"`
	TargetType  TargetType `json:"targetType"`
	LinkType    LinkType   `json:"linkType"`
	IsSuspect   bool       `json:"isSuspect"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Baseline struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	ProjectID            string         `json:"projectId,omitempty"`
	RequirementSnapshots []Requirement  `json:"requirementSnapshots"`
	Status               BaselineStatus `json:"status"`
	CreatedAt            time.Time      `json:"createdAt"`
	LockedAt             *time.Time     `json:"lockedAt,omitempty"`
}

// RequirementKey formats the human-readable key for counter value n.
func RequirementKey(n int) string {
	return fmt.Sprintf("%s%03d", keyPrefix, n)
}

// ParseRequirementKey returns the counter value encoded in key, if it is one.
func ParseRequirementKey(key string) (int, bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	if !strings.HasPrefix(k, keyPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(k[len(keyPrefix):])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func NewRequirement(title string, counter int, now time.Time) Requirement {
	return Requirement{
		ID:             NewID(),
		Key:            RequirementKey(counter),
		Title:          title,
		Type:           TypeFunctional,
		Status:         ReqDraft,
		Priority:       ReqPriorityMedium,
		Children:       []string{},
		Traces:         []TraceLink{},
		SuspectLinkIDs: []string{},
		Tags:           []string{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NewTraceLink(targetID string, targetType TargetType, linkType LinkType, now time.Time) TraceLink {
	return TraceLink{
		ID:         NewID(),
		TargetID:   targetID,
		TargetType: targetType,
		LinkType:   linkType,
		CreatedAt:  now,
	}
}

func NewBaseline(name string, snapshots []Requirement, now time.Time) Baseline {
	return Baseline{
		ID:                   NewID(),
		Name:                 name,
		RequirementSnapshots: snapshots,
		Status:               BaselineDraft,
		CreatedAt:            now,
	}
}

// Trace returns a pointer to the link with the given id, or nil.
func (r *Requirement) Trace(linkID string) *TraceLink {
	for i := range r.Traces {
		if r.Traces[i].ID == linkID {
			return &r.Traces[i]
		}
	}
	return nil
}

func (r Requirement) Clone() Requirement {
	cp := r
	cp.Children = cloneStrings(r.Children)
	cp.Traces = cloneSlice(r.Traces)
	cp.SuspectLinkIDs = cloneStrings(r.SuspectLinkIDs)
	cp.Tags = cloneStrings(r.Tags)
	return cp
}

func (b Baseline) Clone() Baseline {
	cp := b
	cp.LockedAt = cloneTime(b.LockedAt)
	cp.RequirementSnapshots = make([]Requirement, len(b.RequirementSnapshots))
	for i, r := range b.RequirementSnapshots {
		cp.RequirementSnapshots[i] = r.Clone()
	}
	return cp
}
