package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/markmywords/core/document"
)

// Store keeps the encoded document in process memory.
type Store struct {
	mu      sync.RWMutex
	data    []byte
	saves   int
	saveErr error
}

var _ document.Repository = (*Store)(nil) // interface compliance check

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Load(ctx context.Context) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return document.Document{}, document.ErrNotFound
	}
	return document.Decode(s.data)
}

func (s *Store) Save(ctx context.Context, doc document.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := document.Encode(doc)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

func (s *Store) Close() error { return nil }

// Bytes returns the stored encoding, nil when nothing was saved.
func (s *Store) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Saves counts successful saves.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailSaves makes every following Save return err; nil restores normal behaviour.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}
