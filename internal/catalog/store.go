package catalog

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonathan/career-recommender/internal/logger"
)

// Store holds the current catalog snapshot. Readers always see a fully built
// catalog; reloads build a new one and swap the pointer.
type Store struct {
	current atomic.Pointer[Catalog]
	path    string
	log     *logger.Logger

	mu        sync.Mutex
	listeners []func(*Catalog)
}

// NewStore returns a store serving c. path is used by Reload and may be empty.
func NewStore(c *Catalog, path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	s := &Store{path: path, log: log}
	s.current.Store(c)
	return s
}

// Open loads the catalog at path and returns a store serving it
func Open(path string, log *logger.Logger) (*Store, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(c, path, log), nil
}

// Current returns the catalog snapshot in effect
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Path returns the file the store reloads from
func (s *Store) Path() string {
	return s.path
}

// OnChange registers fn to be called with every newly swapped catalog
func (s *Store) OnChange(fn func(*Catalog)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Swap replaces the current catalog with c
func (s *Store) Swap(c *Catalog) {
	if c == nil {
		return
	}
	s.mu.Lock()
	s.current.Store(c)
	listeners := append([]func(*Catalog){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}

// Reload rebuilds the catalog from the store's path and swaps it in.
// On failure the previous snapshot stays in effect.
func (s *Store) Reload() (*Catalog, error) {
	if s.path == "" {
		return nil, fmt.Errorf("catalog store has no path to reload from")
	}

	c, err := Load(s.path)
	if err != nil {
		s.log.Warn("catalog reload failed, keeping previous snapshot", "path", s.path, "error", err)
		return nil, err
	}

	s.Swap(c)
	s.log.Info("catalog reloaded", "path", s.path, "version", c.Version(),
		"skills", len(c.skillIDs), "roles", len(c.roleIDs))
	return c, nil
}
