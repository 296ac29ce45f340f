package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"go.uber.org/zap"
)

// FieldUserProfile is the identity record field referencing the user's profile
const FieldUserProfile = "userProfile"

// Session caches the signed-in user's identity record and profile id.
// The identity record is fetched at most once; the first successful fetch wins.
type Session struct {
	store recordstore.Store
	prefs prefs.Store
	log   *zap.Logger

	mu       sync.Mutex
	identity *recordstore.Record
}

// New creates a session over the record store and the user's durable prefs
func New(store recordstore.Store, p prefs.Store, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, prefs: p, log: log}
}

// IdentityRecord returns a copy of the cached identity record, fetching it
// on first use
func (s *Session) IdentityRecord(ctx context.Context) (*recordstore.Record, error) {
	s.mu.Lock()
	cached := s.identity
	s.mu.Unlock()
	if cached != nil {
		return cached.Clone(), nil
	}

	id, err := s.store.CurrentUserRootID(ctx)
	if err != nil {
		return nil, fmt.Errorf("identity record id: %w", err)
	}
	record, err := s.store.FetchRecord(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("identity record: %w", err)
	}

	s.mu.Lock()
	if s.identity == nil {
		s.identity = record
	}
	winner := s.identity
	s.mu.Unlock()

	return winner.Clone(), nil
}

// AdoptIdentityRecord replaces the cached identity record with one this
// session has just saved
func (s *Session) AdoptIdentityRecord(record *recordstore.Record) {
	if record == nil {
		return
	}
	s.mu.Lock()
	s.identity = record.Clone()
	s.mu.Unlock()
}

// ResolveProfileID finds the user's profile id. The durable cache answers
// without touching the store; otherwise the identity record's profile
// reference is used and written back to the cache. ok is false when the
// user has no profile yet.
func (s *Session) ResolveProfileID(ctx context.Context) (id string, ok bool, err error) {
	cached, found, err := s.prefs.GetString(ctx, prefs.KeyUserProfileID)
	if err != nil {
		s.log.Warn("profile id cache unavailable", zap.Error(err))
	} else if found && cached != "" {
		return cached, true, nil
	}

	identity, err := s.IdentityRecord(ctx)
	if err != nil {
		return "", false, err
	}

	ref := identity.GetReference(FieldUserProfile)
	if ref == nil {
		return "", false, nil
	}

	if err := s.RememberProfileID(ctx, ref.RecordID); err != nil {
		s.log.Warn("failed to cache profile id", zap.String("profile_id", ref.RecordID), zap.Error(err))
	}
	return ref.RecordID, true, nil
}

// RememberProfileID writes the profile id to the durable cache
func (s *Session) RememberProfileID(ctx context.Context, id string) error {
	return s.prefs.SetString(ctx, prefs.KeyUserProfileID, id)
}

// HasSeenOnboarding reports whether the walkthrough was already shown
func (s *Session) HasSeenOnboarding(ctx context.Context) (bool, error) {
	return s.prefs.GetBool(ctx, prefs.KeyHasSeenOnboarding)
}

// MarkOnboardingSeen records that the walkthrough was shown
func (s *Session) MarkOnboardingSeen(ctx context.Context) error {
	return s.prefs.SetBool(ctx, prefs.KeyHasSeenOnboarding, true)
}
