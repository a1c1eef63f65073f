// memory based implementation for testing and for serving plan files
package memory

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"sync"
	"time"

	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/server/storage"
)

// Store implements storage.Storage interface using in-memory maps
type Store struct {
	mu    sync.RWMutex
	plans map[string]*storage.Plan
	now   func() time.Time
}

// New creates a new in-memory storage
func New() *Store {
	return &Store{
		plans: make(map[string]*storage.Plan),
		now:   time.Now,
	}
}

func generateETag(data []byte) string {
	hash := sha1.Sum(data)
	return `"` + hex.EncodeToString(hash[:]) + `"`
}

// prepare validates def and computes its ETag from the YAML encoding.
func prepare(id string, def *plan.Definition) (string, error) {
	if id == "" {
		return "", &storage.Error{Type: storage.ErrInvalidInput, Message: "plan id is empty"}
	}
	if def == nil {
		return "", &storage.Error{Type: storage.ErrInvalidInput, Message: "plan definition is nil"}
	}
	if err := def.Validate(); err != nil {
		return "", &storage.Error{Type: storage.ErrInvalidInput, Message: "invalid plan definition", Err: err}
	}
	var buf bytes.Buffer
	if err := def.Encode(&buf); err != nil {
		return "", &storage.Error{Type: storage.ErrInvalidInput, Message: "failed to serialise plan", Err: err}
	}
	return generateETag(buf.Bytes()), nil
}

func (s *Store) GetPlan(_ context.Context, id string) (*storage.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "plan not found",
		}
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListPlans(_ context.Context) ([]*storage.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		cp := *p
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *storage.Plan) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) CreatePlan(_ context.Context, id string, def *plan.Definition) (*storage.Plan, error) {
	etag, err := prepare(id, def)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[id]; exists {
		return nil, &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "plan already exists",
		}
	}

	now := s.now()
	p := &storage.Plan{ID: id, Definition: def, ETag: etag, Created: now, Modified: now}
	s.plans[id] = p
	cp := *p
	return &cp, nil
}

func (s *Store) PutPlan(_ context.Context, id string, def *plan.Definition) (*storage.Plan, bool, error) {
	etag, err := prepare(id, def)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := &storage.Plan{ID: id, Definition: def, ETag: etag, Created: now, Modified: now}
	old, exists := s.plans[id]
	if exists {
		p.Created = old.Created
		if old.ETag == etag {
			p.Modified = old.Modified
		}
	}
	s.plans[id] = p
	cp := *p
	return &cp, !exists, nil
}

func (s *Store) DeletePlan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.plans[id]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "plan not found",
		}
	}

	delete(s.plans, id)
	return nil
}
