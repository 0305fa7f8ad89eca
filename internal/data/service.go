package data

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// Store is the persistence the service writes through.
type Store interface {
	Load() (*model.Document, error)
	Save(*model.Document) error
}

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

type Kind string

const (
	KindProject     Kind = "project"
	KindMilestone   Kind = "milestone"
	KindTask        Kind = "task"
	KindRequirement Kind = "requirement"
	KindNote        Kind = "note"
	KindBaseline    Kind = "baseline"
	KindWorkspace   Kind = "workspace"
)

// Change describes one applied mutation.
type Change struct {
	Op   Op
	Kind Kind
	ID   string
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

type milestoneRef struct {
	project int
	index   int
}

// Service owns the in-memory document and is its only mutator. Every
// mutation is applied and persisted under one lock, so the on-disk order of
// writes matches the order in which mutations were applied.
type Service struct {
	mu    sync.Mutex
	store Store
	doc   *model.Document
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	projects     map[string]int
	milestones   map[string]milestoneRef
	tasks        map[string]int
	requirements map[string]int
	notes        map[string]int
	baselines    map[string]int

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// New loads the document from store and returns a ready service.
func New(store Store, opts ...Option) (*Service, error) {
	s := &Service{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: model.NewID,
		subs:  map[int]func(Change){},
	}
	for _, o := range opts {
		o(s)
	}
	doc, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	s.doc = doc
	s.reindex()
	return s, nil
}

// Subscribe registers fn to be called after every applied mutation.
// Callbacks run after the service lock is released.
func (s *Service) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) notify(changes []Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.Unlock()
	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// update runs fn under the lock. fn must validate before it mutates: a
// non-nil error from fn means nothing changed. The document is saved when fn
// reports changes, and subscribers are told once the lock is released.
func (s *Service) update(fn func() ([]Change, error)) error {
	s.mu.Lock()
	changes, err := fn()
	if err == nil && len(changes) > 0 {
		err = s.persist(changes)
	}
	s.mu.Unlock()
	if len(changes) > 0 && Applied(err) {
		s.notify(changes)
	}
	return err
}

func (s *Service) persist(changes []Change) error {
	if err := s.store.Save(s.doc); err != nil {
		s.log.Warn("saving document",
			zap.String("kind", string(changes[0].Kind)),
			zap.String("id", changes[0].ID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Service) view(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *Service) reindex() {
	d := s.doc
	s.projects = make(map[string]int, len(d.Projects))
	s.milestones = map[string]milestoneRef{}
	for i, p := range d.Projects {
		s.projects[p.ID] = i
		for j, m := range p.Milestones {
			s.milestones[m.ID] = milestoneRef{project: i, index: j}
		}
	}
	s.tasks = indexOf(d.Tasks, func(t model.Task) string { return t.ID })
	s.requirements = indexOf(d.Requirements, func(r model.Requirement) string { return r.ID })
	s.notes = indexOf(d.Notes, func(n model.Note) string { return n.ID })
	s.baselines = indexOf(d.Baselines, func(b model.Baseline) string { return b.ID })
}

func indexOf[T any](items []T, id func(T) string) map[string]int {
	m := make(map[string]int, len(items))
	for i, it := range items {
		m[id(it)] = i
	}
	return m
}

func (s *Service) project(id string) *model.Project {
	if i, ok := s.projects[id]; ok {
		return &s.doc.Projects[i]
	}
	return nil
}

func (s *Service) milestone(id string) (*model.Milestone, *model.Project) {
	ref, ok := s.milestones[id]
	if !ok {
		return nil, nil
	}
	p := &s.doc.Projects[ref.project]
	return &p.Milestones[ref.index], p
}

func (s *Service) task(id string) *model.Task {
	if i, ok := s.tasks[id]; ok {
		return &s.doc.Tasks[i]
	}
	return nil
}

func (s *Service) requirement(id string) *model.Requirement {
	if i, ok := s.requirements[id]; ok {
		return &s.doc.Requirements[i]
	}
	return nil
}

func (s *Service) note(id string) *model.Note {
	if i, ok := s.notes[id]; ok {
		return &s.doc.Notes[i]
	}
	return nil
}

func (s *Service) baseline(id string) *model.Baseline {
	if i, ok := s.baselines[id]; ok {
		return &s.doc.Baselines[i]
	}
	return nil
}

// Document returns a deep copy of the current state.
func (s *Service) Document() *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// ActiveProjectID returns the selected project id, or "".
func (s *Service) ActiveProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Metadata.ActiveProjectID
}

// ActiveProject returns the selected project.
func (s *Service) ActiveProject() (model.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.project(s.doc.Metadata.ActiveProjectID); p != nil {
		return p.Clone(), true
	}
	return model.Project{}, false
}

// SetActiveProject selects the project that scoped queries filter by.
// An empty id clears the selection.
func (s *Service) SetActiveProject(id string) error {
	return s.update(func() ([]Change, error) {
		if id != "" && s.project(id) == nil {
			return nil, notFound("project", id)
		}
		if s.doc.Metadata.ActiveProjectID == id {
			return nil, nil
		}
		s.doc.Metadata.ActiveProjectID = id
		return []Change{{OpUpdate, KindWorkspace, id}}, nil
	})
}

// inScope reports whether an entity's project id passes the active-project filter.
func (s *Service) inScope(projectID string) bool {
	active := s.doc.Metadata.ActiveProjectID
	return active == "" || projectID == active
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
