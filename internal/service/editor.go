package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/utils"
)

// EditView is what a detail page renders: the record, its lifecycle state and
// the edits not yet submitted.
type EditView[T any] struct {
	Record         T                `json:"record"`
	State          domain.EditState `json:"state"`
	PendingChanges utils.ChangeSet  `json:"pending_changes,omitempty"`
}

// SubmitFunc sends a change set and returns the record merged with the answer.
type SubmitFunc[T any] func(ctx context.Context, current T, changes utils.ChangeSet) (T, error)

// EditSession holds the displayed copy of a record and the snapshot taken when
// it was last loaded or saved.
type EditSession[T any] struct {
	mu      sync.Mutex
	state   domain.EditState
	current T
	initial T
	exclude []string
}

func NewEditSession[T any](record T, exclude ...string) (*EditSession[T], error) {
	initial, err := utils.Clone(record)
	if err != nil {
		return nil, err
	}
	return &EditSession[T]{
		state:   domain.EditStateViewing,
		current: record,
		initial: initial,
		exclude: exclude,
	}, nil
}

func (s *EditSession[T]) State() domain.EditState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *EditSession[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// View returns the record, the state and the pending edits.
func (s *EditSession[T]) View() (EditView[T], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *EditSession[T]) viewLocked() (EditView[T], error) {
	view := EditView[T]{Record: s.current, State: s.state}
	changes, err := utils.Diff(s.current, s.initial, s.exclude...)
	if err != nil {
		return view, err
	}
	if !changes.Empty() {
		view.PendingChanges = changes
	}
	return view, nil
}

// Enter switches to edit mode. Entering twice is a no-op.
func (s *EditSession[T]) Enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case domain.EditStateSubmitting:
		return domain.ErrSubmitting
	case domain.EditStateViewing:
		s.state = domain.EditStateEditing
	}
	return nil
}

// Update mutates the displayed copy. Only allowed in edit mode.
func (s *EditSession[T]) Update(fn func(T) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.EditStateEditing {
		return domain.ErrNotEditing
	}
	next, err := fn(s.current)
	if err != nil {
		return err
	}
	s.current = next
	return nil
}

// Reload replaces both copies with a freshly fetched record unless edits are
// in progress or were left unsent by a failed submit.
func (s *EditSession[T]) Reload(record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != domain.EditStateViewing {
		return nil
	}
	pending, err := utils.Diff(s.current, s.initial, s.exclude...)
	if err != nil {
		return err
	}
	if !pending.Empty() {
		return nil
	}
	initial, err := utils.Clone(record)
	if err != nil {
		return err
	}
	s.current = record
	s.initial = initial
	return nil
}

// Exit leaves edit mode. The change set is computed once; when it is empty
// nothing is sent. Otherwise the session stays in SUBMITTING until submit
// returns. On failure the edited copy is kept and the session is back in VIEWING.
func (s *EditSession[T]) Exit(ctx context.Context, submit SubmitFunc[T]) (utils.ChangeSet, error) {
	s.mu.Lock()
	if s.state != domain.EditStateEditing {
		state := s.state
		s.mu.Unlock()
		if state == domain.EditStateSubmitting {
			return nil, domain.ErrSubmitting
		}
		return nil, domain.ErrNotEditing
	}

	changes, err := utils.Diff(s.current, s.initial, s.exclude...)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if changes.Empty() {
		s.state = domain.EditStateViewing
		s.mu.Unlock()
		return changes, nil
	}
	s.state = domain.EditStateSubmitting
	current := s.current
	s.mu.Unlock()

	merged, err := submit(ctx, current, changes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.EditStateViewing
	if err != nil {
		return changes, err
	}
	return changes, s.replaceLocked(merged)
}

// Patch sends changes outside of the edit lifecycle, e.g. a status toggle.
// Pending edits survive: the patched fields are applied to both copies.
func (s *EditSession[T]) Patch(ctx context.Context, changes utils.ChangeSet, submit SubmitFunc[T]) error {
	s.mu.Lock()
	if s.state == domain.EditStateSubmitting {
		s.mu.Unlock()
		return domain.ErrSubmitting
	}
	prev := s.state
	s.state = domain.EditStateSubmitting
	current := s.current
	s.mu.Unlock()

	merged, err := submit(ctx, current, changes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = prev
	if err != nil {
		return err
	}
	if prev == domain.EditStateViewing {
		return s.replaceLocked(merged)
	}

	// Keep the user's other edits pending.
	edited, err := utils.Apply(s.current, changes)
	if err != nil {
		return err
	}
	initial, err := utils.Apply(s.initial, changes)
	if err != nil {
		return err
	}
	s.current = edited
	s.initial = initial
	return nil
}

func (s *EditSession[T]) replaceLocked(record T) error {
	initial, err := utils.Clone(record)
	if err != nil {
		return fmt.Errorf("failed to snapshot record: %w", err)
	}
	s.current = record
	s.initial = initial
	return nil
}

// sessions keeps one edit session per caller and record.
type sessions[T any] struct {
	mu sync.Mutex
	m  map[string]*EditSession[T]
}

func newSessions[T any]() *sessions[T] {
	return &sessions[T]{m: map[string]*EditSession[T]{}}
}

func sessionKey(identity, id string) string {
	return identity + "\x00" + id
}

func (s *sessions[T]) get(identity, id string) (*EditSession[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.m[sessionKey(identity, id)]
	return session, ok
}

func (s *sessions[T]) put(identity, id string, session *EditSession[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sessionKey(identity, id)] = session
}

// drop removes the sessions of every caller for the given record.
func (s *sessions[T]) drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	suffix := "\x00" + id
	for k := range s.m {
		if strings.HasSuffix(k, suffix) {
			delete(s.m, k)
		}
	}
}
