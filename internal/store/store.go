package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jorge-barreto/reqtrack/internal/model"
)

// DefaultCacheTTL is how long a loaded document is served from memory.
const DefaultCacheTTL = time.Second

// ErrNoWorkspace is returned by Save when the store has no backing file.
var ErrNoWorkspace = errors.New("no workspace: data file path is not set")

// Options configures a Store. Zero values select defaults.
type Options struct {
	Path            string
	BackupDir       string
	BackupRetention int
	CacheTTL        time.Duration
	Logger          *zap.Logger
	Now             func() time.Time
}

// Store loads and saves the single JSON document.
//
// Reads are served from a short-lived cache. Writes are serialized: at most
// one write is in flight and at most one is queued behind it; a newer Save
// replaces the queued payload rather than adding to the queue.
type Store struct {
	path      string
	backupDir string
	retention int
	ttl       time.Duration
	log       *zap.Logger
	now       func() time.Time
	writeFile func(path string, data []byte, perm os.FileMode) error

	reads singleflight.Group

	cacheMu  sync.Mutex
	cached   []byte
	cachedAt time.Time

	writeMu sync.Mutex
	writing bool
	pending *pendingWrite
}

type pendingWrite struct {
	data []byte
	done chan struct{}
	err  error
}

func New(opts Options) *Store {
	s := &Store{
		path:      opts.Path,
		backupDir: opts.BackupDir,
		retention: opts.BackupRetention,
		ttl:       opts.CacheTTL,
		log:       opts.Logger,
		now:       opts.Now,
		writeFile: writeFileAtomic,
	}
	if s.ttl < 0 {
		s.ttl = 0
	}
	if s.retention <= 0 {
		s.retention = DefaultBackupRetention
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Path returns the data file path ("" when there is no workspace).
func (s *Store) Path() string {
	return s.path
}

// Load returns the current document. A missing workspace or data file yields
// an empty document. Every call returns an independent copy.
func (s *Store) Load() (*model.Document, error) {
	if s.path == "" {
		return model.NewDocument(), nil
	}
	if data, ok := s.fromCache(); ok {
		return decode(data)
	}

	v, err, _ := s.reads.Do(s.path, func() (any, error) {
		data, err := os.ReadFile(s.path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return []byte(nil), nil
			}
			return nil, err
		}
		s.setCache(data)
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	data := v.([]byte)
	if len(data) == 0 {
		s.log.Debug("data file not found, starting empty", zap.String("path", s.path))
		return model.NewDocument(), nil
	}
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return doc, nil
}

// Save persists doc. It returns once doc, or a newer document that replaced
// it in the queue, has been written.
func (s *Store) Save(doc *model.Document) error {
	if s.path == "" {
		return ErrNoWorkspace
	}
	cp := *doc
	cp.Metadata.LastUpdated = s.now()
	if cp.Metadata.Version == "" {
		cp.Metadata.Version = model.SchemaVersion
	}
	data, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	return s.enqueue(data)
}

func (s *Store) enqueue(data []byte) error {
	s.writeMu.Lock()
	if s.writing {
		p := s.pending
		if p == nil {
			p = &pendingWrite{done: make(chan struct{})}
			s.pending = p
		} else {
			s.log.Debug("replacing queued write")
		}
		p.data = data
		s.writeMu.Unlock()
		<-p.done
		return p.err
	}
	s.writing = true
	s.writeMu.Unlock()

	err := s.write(data)
	for {
		s.writeMu.Lock()
		p := s.pending
		s.pending = nil
		if p == nil {
			s.writing = false
			s.writeMu.Unlock()
			break
		}
		s.writeMu.Unlock()
		p.err = s.write(p.data)
		close(p.done)
	}
	return err
}

func (s *Store) write(data []byte) error {
	if err := s.writeFile(s.path, data, 0644); err != nil {
		s.log.Error("writing data file", zap.String("path", s.path), zap.Error(err))
		s.invalidate()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	s.setCache(data)
	return nil
}

func (s *Store) fromCache() ([]byte, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cached == nil || s.ttl == 0 {
		return nil, false
	}
	if s.now().Sub(s.cachedAt) >= s.ttl {
		return nil, false
	}
	return s.cached, true
}

func (s *Store) setCache(data []byte) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cached = data
	s.cachedAt = s.now()
}

func (s *Store) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cached = nil
}

func decode(data []byte) (*model.Document, error) {
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	Migrate(&doc)
	return &doc, nil
}
