// Package memstore is an in-memory implementation of service.Store used by
// the test suites and by DB_DRIVER=memory. Transactions clone the whole state
// and swap it in on success.
package memstore

import (
	"context"
	"sync"
	"time"

	"akreditasi-jurnal/internal/apperrors"
	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

type record[T any] struct {
	val     T
	deleted bool
}

type response struct {
	assessmentID uint
	indicatorID  uint
}

type assessment struct {
	templateID uint
	status     string
}

type state struct {
	nextID      uint
	templates   map[uint]record[models.Template]
	categories  map[uint]record[models.Category]
	subs        map[uint]record[models.SubCategory]
	indicators  map[uint]record[models.Indicator]
	essays      map[uint]record[models.EssayQuestion]
	assessments map[uint]assessment
	responses   []response
	auditLogs   []models.AuditLog
}

func newState() *state {
	return &state{
		templates:   map[uint]record[models.Template]{},
		categories:  map[uint]record[models.Category]{},
		subs:        map[uint]record[models.SubCategory]{},
		indicators:  map[uint]record[models.Indicator]{},
		essays:      map[uint]record[models.EssayQuestion]{},
		assessments: map[uint]assessment{},
	}
}

func cloneMap[T any](m map[uint]record[T]) map[uint]record[T] {
	out := make(map[uint]record[T], len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	c := &state{
		nextID:      s.nextID,
		templates:   cloneMap(s.templates),
		categories:  cloneMap(s.categories),
		subs:        cloneMap(s.subs),
		indicators:  cloneMap(s.indicators),
		essays:      cloneMap(s.essays),
		assessments: make(map[uint]assessment, len(s.assessments)),
		responses:   append([]response(nil), s.responses...),
		auditLogs:   append([]models.AuditLog(nil), s.auditLogs...),
	}
	for k, v := range s.assessments {
		c.assessments[k] = v
	}
	return c
}

func (s *state) newID() uint {
	s.nextID++
	return s.nextID
}

// Store keeps the whole template hierarchy in memory. The zero value is not
// usable; call New.
type Store struct {
	// mu is nil for a store bound to a running transaction
	mu  *sync.RWMutex
	st  *state
	now func() time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		mu:  &sync.RWMutex{},
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

var _ service.Store = (*Store)(nil)

// Concurrent reports whether the store may serve parallel reads
func (s *Store) Concurrent() bool {
	return s.mu != nil
}

// InTx runs fn against a private copy of the state and publishes it when fn
// succeeds. Calls made on a store that is already inside a transaction join it.
func (s *Store) InTx(_ context.Context, fn func(tx service.Store) error) error {
	if s.mu == nil {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(&Store{st: next, now: s.now}); err != nil {
		return err
	}
	s.st = next
	return nil
}

func (s *Store) read(fn func(st *state) error) error {
	if s.mu != nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return fn(s.st)
}

// write applies fn atomically. Outside a transaction a failed fn leaves the
// state untouched.
func (s *Store) write(fn func(st *state) error) error {
	if s.mu == nil {
		return fn(s.st)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	s.st = next
	return nil
}

// AddAssessment registers an assessment of a template with the given status
// and returns its id. Assessments are owned by another workflow; this is how
// tests and seed data model them.
func (s *Store) AddAssessment(templateID uint, status string) uint {
	var id uint
	_ = s.write(func(st *state) error {
		id = st.newID()
		st.assessments[id] = assessment{templateID: templateID, status: status}
		return nil
	})
	return id
}

// SetAssessmentStatus changes the status of an assessment
func (s *Store) SetAssessmentStatus(assessmentID uint, status string) error {
	return s.write(func(st *state) error {
		a, ok := st.assessments[assessmentID]
		if !ok {
			return apperrors.NotFound("assessment", assessmentID)
		}
		a.status = status
		st.assessments[assessmentID] = a
		return nil
	})
}

// AddResponse records an answer of an assessment to an indicator
func (s *Store) AddResponse(assessmentID, indicatorID uint) error {
	return s.write(func(st *state) error {
		if _, ok := st.assessments[assessmentID]; !ok {
			return apperrors.NotFound("assessment", assessmentID)
		}
		if _, ok := st.indicators[indicatorID]; !ok {
			return apperrors.NotFound("indicator", indicatorID)
		}
		st.responses = append(st.responses, response{assessmentID: assessmentID, indicatorID: indicatorID})
		return nil
	})
}
