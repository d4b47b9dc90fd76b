// Package memory keeps the shared document in process memory. Data is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/aniladanir/hirechat/internal/domain"
)

type Store struct {
	mtx sync.RWMutex
	doc *domain.Document
}

// New returns a store seeded with seed, or an empty document when seed is nil
func New(seed *domain.Document) *Store {
	if seed == nil {
		seed = domain.NewDocument()
	}
	doc := seed.Clone()
	doc.Normalize()
	return &Store{doc: doc}
}

func (s *Store) Read(_ context.Context) (*domain.Document, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.doc.Clone(), nil
}

func (s *Store) Write(_ context.Context, doc *domain.Document) error {
	next := doc.Clone()
	next.Normalize()

	s.mtx.Lock()
	s.doc = next
	s.mtx.Unlock()
	return nil
}

// Update applies fn to a copy of the document and swaps it in when fn succeeds
func (s *Store) Update(_ context.Context, fn func(doc *domain.Document) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.Normalize()
	s.doc = next
	return nil
}
