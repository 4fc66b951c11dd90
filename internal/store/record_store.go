// Package store holds the in-memory record collections shared by the ledger
// and payment services.
package store

import (
	"errors"
	"sync"
)

// ErrNotFound is returned both when a record does not exist and when it is
// not visible to the caller.
var ErrNotFound = errors.New("record not found")

// OwnershipFunc reports whether callerID may see rec.
type OwnershipFunc[T any] func(callerID string, rec T) bool

// RecordStore is an insertion ordered, append-only collection guarded by a
// single mutex. Records are stored by value and handed out as copies, so no
// caller ever holds a reference into the collection.
type RecordStore[T any] struct {
	mu      sync.Mutex
	records []T
	idOf    func(T) string
	ownedBy OwnershipFunc[T]
}

func New[T any](idOf func(T) string, ownedBy OwnershipFunc[T]) *RecordStore[T] {
	return &RecordStore[T]{
		idOf:    idOf,
		ownedBy: ownedBy,
	}
}

func (s *RecordStore[T]) Append(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
}

// List returns the records callerID owns, in insertion order. The result is
// never nil.
func (s *RecordStore[T]) List(callerID string) []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]T, 0)
	for _, rec := range s.records {
		if s.ownedBy(callerID, rec) {
			owned = append(owned, rec)
		}
	}
	return owned
}

func (s *RecordStore[T]) Get(callerID, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if s.idOf(rec) == id && s.ownedBy(callerID, rec) {
			return rec, nil
		}
	}

	var zero T
	return zero, ErrNotFound
}

// Update applies mutate to the record with the given id in place. It does no
// ownership check and must only be reached from trusted background work; a
// caller facing mutation has to check ownership itself. Reports whether the
// record was found.
func (s *RecordStore[T]) Update(id string, mutate func(*T)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.idOf(s.records[i]) == id {
			mutate(&s.records[i])
			return true
		}
	}
	return false
}

func (s *RecordStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
