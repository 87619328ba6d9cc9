package sdk

import (
	"context"
	"fmt"
	"time"

	sessionuc "github.com/kailas-cloud/itemfilter/internal/usecase/session"
)

// SessionService runs filtering sessions.
type SessionService struct {
	svc sessionUseCase
	obs *observer
}

// Create starts a session over a stored collection. An empty view selects the
// default view.
func (s *SessionService) Create(ctx context.Context, collection, view string) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.create", start, err, "collection", collection, "view", view) }()

	snap, err := s.svc.Create(ctx, collection, view)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return fromSnapshot(snap), nil
}

// Get returns the current state of a session and extends its lifetime.
func (s *SessionService) Get(ctx context.Context, id string) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.get", start, err, "session", id) }()

	snap, err := s.svc.Get(ctx, id)
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return fromSnapshot(snap), nil
}

// Click presses a filter button. The boolean reports whether the selection changed.
func (s *SessionService) Click(ctx context.Context, id, group, value string) (_ Session, changed bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.click", start, err, "session", id) }()

	snap, changed, err := s.svc.Click(ctx, id, group, value)
	if err != nil {
		return Session{}, false, fmt.Errorf("click: %w", err)
	}
	s.obs.click(changed)
	return fromSnapshot(snap), changed, nil
}

// Sort reorders a session by a "selector, type" attribute; "*" restores the
// original order.
func (s *SessionService) Sort(ctx context.Context, id, by string, ascending bool) (Session, error) {
	return s.sort(ctx, id, sessionuc.SortRequest{By: by, Ascending: ascending})
}

// SortOption reorders a session by the view's sort option i.
func (s *SessionService) SortOption(ctx context.Context, id string, i int) (Session, error) {
	return s.sort(ctx, id, sessionuc.SortRequest{Option: &i})
}

func (s *SessionService) sort(ctx context.Context, id string, req sessionuc.SortRequest) (_ Session, err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.sort", start, err, "session", id) }()

	snap, err := s.svc.Sort(ctx, id, req)
	if err != nil {
		return Session{}, fmt.Errorf("sort: %w", err)
	}
	return fromSnapshot(snap), nil
}

// Delete ends a session.
func (s *SessionService) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("session.delete", start, err, "session", id) }()

	if err = s.svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
