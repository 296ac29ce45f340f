package presence

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/jurados-presence/internal/location"
	"github.com/localnerve/jurados-presence/internal/metrics"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"go.uber.org/zap"
)

var (
	// ErrProfileNotFound is returned when the profile id does not resolve
	ErrProfileNotFound = errors.New("profile not found")
	// ErrLocationNotFound is returned when a check-in names a record that is not a location
	ErrLocationNotFound = errors.New("location not found")
)

// Kind of presence transition
type Kind string

const (
	CheckedIn  Kind = "checkedIn"
	CheckedOut Kind = "checkedOut"
)

// Event describes a completed transition. For CheckedOut, LocationID is the
// location the profile left, if any.
type Event struct {
	Kind       Kind            `json:"kind"`
	ProfileID  string          `json:"profileId"`
	LocationID string          `json:"locationId,omitempty"`
	Profile    profile.Profile `json:"profile"`
}

// Status of a profile relative to one location
type Status struct {
	CheckedIn  bool    `json:"checkedIn"`
	IsPresent  bool    `json:"isPresent"`
	LocationID *string `json:"locationId,omitempty"`
}

// Service performs presence transitions and queries. A profile counts as
// present when it carries both the location reference and the marker; the
// reference names the location.
type Service struct {
	store recordstore.Store
	log   *zap.Logger
}

func NewService(store recordstore.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// setPresence and clearPresence are the only writers of the presence fields
func setPresence(rec *recordstore.Record, locationID string) {
	rec.Set(profile.FieldIsHere, recordstore.NewReference(locationID, recordstore.ActionNone))
	rec.Set(profile.FieldIsHereNil, 1)
}

func clearPresence(rec *recordstore.Record) {
	rec.Set(profile.FieldIsHere, nil)
	rec.Set(profile.FieldIsHereNil, nil)
}

func (s *Service) fetchProfile(ctx context.Context, profileID string) (*recordstore.Record, error) {
	rec, err := s.store.FetchRecord(ctx, profileID)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if rec.Type != profile.RecordType {
		return nil, ErrProfileNotFound
	}
	return rec, nil
}

func (s *Service) requireLocation(ctx context.Context, locationID string) error {
	rec, err := s.store.FetchRecord(ctx, locationID)
	if errors.Is(err, recordstore.ErrNotFound) {
		return ErrLocationNotFound
	}
	if err != nil {
		return fmt.Errorf("fetch location: %w", err)
	}
	if rec.Type != location.RecordType {
		return ErrLocationNotFound
	}
	return nil
}

// CheckIn marks the profile present at the location, replacing any prior
// location. The location id must name a stored location.
func (s *Service) CheckIn(ctx context.Context, profileID, locationID string) (Event, error) {
	if locationID == "" {
		return Event{}, ErrLocationNotFound
	}
	rec, err := s.fetchProfile(ctx, profileID)
	if err != nil {
		metrics.PresenceTransitions.WithLabelValues("checkin", "error").Inc()
		return Event{}, err
	}
	if err := s.requireLocation(ctx, locationID); err != nil {
		metrics.PresenceTransitions.WithLabelValues("checkin", "error").Inc()
		return Event{}, err
	}

	setPresence(rec, locationID)
	saved, err := s.store.SaveOne(ctx, rec)
	if err != nil {
		metrics.PresenceTransitions.WithLabelValues("checkin", "error").Inc()
		return Event{}, fmt.Errorf("check in: %w", err)
	}

	p, err := profile.FromRecord(saved)
	if err != nil {
		return Event{}, err
	}
	metrics.PresenceTransitions.WithLabelValues("checkin", "ok").Inc()
	return Event{Kind: CheckedIn, ProfileID: profileID, LocationID: locationID, Profile: p}, nil
}

// CheckOut clears the profile's presence
func (s *Service) CheckOut(ctx context.Context, profileID string) (Event, error) {
	rec, err := s.fetchProfile(ctx, profileID)
	if err != nil {
		metrics.PresenceTransitions.WithLabelValues("checkout", "error").Inc()
		return Event{}, err
	}

	var previous string
	if ref := rec.GetReference(profile.FieldIsHere); ref != nil {
		previous = ref.RecordID
	}

	clearPresence(rec)
	saved, err := s.store.SaveOne(ctx, rec)
	if err != nil {
		metrics.PresenceTransitions.WithLabelValues("checkout", "error").Inc()
		return Event{}, fmt.Errorf("check out: %w", err)
	}

	p, err := profile.FromRecord(saved)
	if err != nil {
		return Event{}, err
	}
	metrics.PresenceTransitions.WithLabelValues("checkout", "ok").Inc()
	return Event{Kind: CheckedOut, ProfileID: profileID, LocationID: previous, Profile: p}, nil
}

// Status reports whether the profile is checked in anywhere and at locationID
func (s *Service) Status(ctx context.Context, profileID, locationID string) (Status, error) {
	rec, err := s.fetchProfile(ctx, profileID)
	if err != nil {
		return Status{}, err
	}

	ref := rec.GetReference(profile.FieldIsHere)
	if ref == nil {
		return Status{}, nil
	}
	id := ref.RecordID
	return Status{CheckedIn: true, IsPresent: id == locationID, LocationID: &id}, nil
}

// Counts returns the number of present profiles per location. Locations
// with nobody present are absent.
func (s *Service) Counts(ctx context.Context) (map[string]int, error) {
	present, err := s.present(ctx, recordstore.Equals(profile.FieldIsHereNil, 1))
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, p := range present {
		counts[*p.IsHere]++
	}
	return counts, nil
}

// Listing returns present profiles grouped by location
func (s *Service) Listing(ctx context.Context) (map[string][]profile.Profile, error) {
	present, err := s.present(ctx, recordstore.Equals(profile.FieldIsHereNil, 1))
	if err != nil {
		return nil, err
	}
	listing := make(map[string][]profile.Profile)
	for _, p := range present {
		listing[*p.IsHere] = append(listing[*p.IsHere], p)
	}
	return listing, nil
}

// ProfilesAt returns the profiles present at one location
func (s *Service) ProfilesAt(ctx context.Context, locationID string) ([]profile.Profile, error) {
	return s.present(ctx, recordstore.Equals(profile.FieldIsHere, locationID).And(profile.FieldIsHereNil, 1))
}

func (s *Service) present(ctx context.Context, predicate recordstore.Predicate) ([]profile.Profile, error) {
	records, err := s.store.Query(ctx, profile.RecordType, predicate, recordstore.Ascending(profile.FieldFullName))
	if err != nil {
		return nil, fmt.Errorf("query presence: %w", err)
	}

	present := make([]profile.Profile, 0, len(records))
	for _, rec := range records {
		p, err := profile.FromRecord(rec)
		if err != nil {
			s.skip(rec.ID, err)
			continue
		}
		if p.IsHere == nil || !p.Consistent() {
			s.skip(rec.ID, errors.New("presence marker without location reference"))
			continue
		}
		present = append(present, p)
	}
	return present, nil
}

func (s *Service) skip(recordID string, err error) {
	metrics.SkippedRecords.WithLabelValues(profile.RecordType).Inc()
	s.log.Warn("excluding profile from presence results", zap.String("record_id", recordID), zap.Error(err))
}
