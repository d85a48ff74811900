// Package store holds session state in a flat map addressed by query key.
// Every read and write is in-memory and synchronous.
package store

import (
	"fmt"
	"sync"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

// NotFoundError is returned when a key is read before it was ever written.
// After startup seeding this indicates a wiring defect.
type NotFoundError struct {
	Key schema.Name
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("query key %q has not been initialized", e.Key)
}

// Unwrap lets errors.Is match apperrors.ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return apperrors.ErrNotFound
}

// Change describes one committed write.
type Change struct {
	Names []schema.Name
}

// Has reports whether the change wrote the named key.
func (c Change) Has(n schema.Name) bool {
	for _, name := range c.Names {
		if name == n {
			return true
		}
	}
	return false
}

// Observer is called after each commit, outside the store lock.
type Observer func(Change)

// Reader is implemented by *Store and *Tx.
type Reader interface {
	lookup(n schema.Name) (any, bool)
}

// Writer is implemented by *Store and *Tx.
type Writer interface {
	assign(n schema.Name, v any)
}

// Store is the keyed state cache.
type Store struct {
	mu        sync.RWMutex
	values    map[schema.Name]any
	observers map[uint64]Observer
	nextID    uint64
}

// New returns an empty store. Call Seed before the first read.
func New() *Store {
	return &Store{
		values:    make(map[schema.Name]any),
		observers: make(map[uint64]Observer),
	}
}

// Read returns the current value under key. Slices and pointers are copied
// so the caller cannot change stored state through them.
func Read[T any](r Reader, key schema.Key[T]) (T, error) {
	var zero T
	v, ok := r.lookup(key.Name())
	if !ok {
		return zero, &NotFoundError{Key: key.Name()}
	}
	typed, ok := v.(T)
	if !ok {
		return zero, apperrors.Internal(fmt.Errorf("query key %q holds %T", key.Name(), v))
	}
	return clone(typed), nil
}

// Write replaces the value under key. It never fails.
func Write[T any](w Writer, key schema.Key[T], value T) {
	w.assign(key.Name(), clone(value))
}

func clone[T any](v T) T {
	if c, ok := any(v).(interface{ Clone() T }); ok {
		return c.Clone()
	}
	return v
}

func (s *Store) lookup(n schema.Name) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[n]
	return v, ok
}

func (s *Store) assign(n schema.Name, v any) {
	s.mu.Lock()
	s.values[n] = v
	observers := s.observerList()
	s.mu.Unlock()

	notify(observers, Change{Names: []schema.Name{n}})
}

// Update runs fn inside a transaction. Writes staged through the Tx become
// visible together when fn returns nil and are discarded otherwise.
func (s *Store) Update(fn func(tx *Tx) error) error {
	change, observers, err := s.commit(fn)
	if err != nil {
		return err
	}
	if len(change.Names) > 0 {
		notify(observers, change)
	}
	return nil
}

func (s *Store) commit(fn func(tx *Tx) error) (Change, []Observer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{values: s.values, staged: make(map[schema.Name]any)}
	if err := fn(tx); err != nil {
		return Change{}, nil, err
	}
	for _, n := range tx.order {
		s.values[n] = tx.staged[n]
	}
	return Change{Names: tx.order}, s.observerList(), nil
}

// Seed writes every key of snap in one transaction.
func (s *Store) Seed(snap schema.Snapshot) {
	_ = s.Update(func(tx *Tx) error {
		Write(tx, schema.CartHidden, snap.CartHidden)
		Write(tx, schema.CartItems, snap.CartItems)
		Write(tx, schema.ItemCount, snap.ItemCount)
		Write(tx, schema.CartTotal, snap.CartTotal)
		Write(tx, schema.CurrentUser, snap.CurrentUser)
		return nil
	})
}

// Seeded reports whether every query key holds a value.
func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range schema.Names() {
		if _, ok := s.values[n]; !ok {
			return false
		}
	}
	return true
}

// Snapshot reads every key under one lock.
func (s *Store) Snapshot() (schema.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := view(s.values)
	var (
		snap schema.Snapshot
		err  error
	)
	if snap.CartHidden, err = Read(v, schema.CartHidden); err != nil {
		return schema.Snapshot{}, err
	}
	if snap.CartItems, err = Read(v, schema.CartItems); err != nil {
		return schema.Snapshot{}, err
	}
	if snap.ItemCount, err = Read(v, schema.ItemCount); err != nil {
		return schema.Snapshot{}, err
	}
	if snap.CartTotal, err = Read(v, schema.CartTotal); err != nil {
		return schema.Snapshot{}, err
	}
	if snap.CurrentUser, err = Read(v, schema.CurrentUser); err != nil {
		return schema.Snapshot{}, err
	}
	return snap, nil
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// observerList must be called with s.mu held.
func (s *Store) observerList() []Observer {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o)
	}
	return out
}

func notify(observers []Observer, c Change) {
	for _, o := range observers {
		o(c)
	}
}

// view reads a map the caller has already locked.
type view map[schema.Name]any

func (v view) lookup(n schema.Name) (any, bool) {
	val, ok := v[n]
	return val, ok
}
