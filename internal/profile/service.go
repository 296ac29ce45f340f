package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/metrics"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"github.com/localnerve/jurados-presence/internal/session"
	"go.uber.org/zap"
)

// ErrIdentityUnavailable wraps failures to load the signed-in user's identity record
var ErrIdentityUnavailable = errors.New("identity record unavailable")

// Outcome of a save
type Outcome string

const (
	OutcomeInvalid Outcome = "invalid"
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// SaveResult reports what a save did. Problems is set for OutcomeInvalid.
type SaveResult struct {
	Outcome  Outcome
	Profile  Profile
	Problems []Problem
}

// Service creates, updates and loads the signed-in user's profile
type Service struct {
	store   recordstore.Store
	storage assets.Storage
	log     *zap.Logger
}

func NewService(store recordstore.Store, storage assets.Storage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, storage: storage, log: log}
}

// Save creates the user's profile or updates the existing one. The identity
// record and the profile are written in a single atomic batch; the profile id
// is cached only after that batch succeeds.
func (s *Service) Save(ctx context.Context, sess *session.Session, in Input) (SaveResult, error) {
	in.Biography = TruncateBiography(in.Biography)
	if problems := Validate(in); len(problems) > 0 {
		metrics.ProfileSaves.WithLabelValues(string(OutcomeInvalid)).Inc()
		return SaveResult{Outcome: OutcomeInvalid, Problems: problems}, nil
	}

	var avatar []byte
	if len(in.Avatar) > 0 {
		encoded, err := assets.EncodeJPEG(in.Avatar)
		if err != nil {
			s.log.Info("rejected avatar image", zap.Error(err))
			metrics.ProfileSaves.WithLabelValues(string(OutcomeInvalid)).Inc()
			return SaveResult{Outcome: OutcomeInvalid, Problems: []Problem{ProblemAvatar}}, nil
		}
		avatar = encoded
	}

	identity, err := sess.IdentityRecord(ctx)
	if err != nil {
		return SaveResult{}, fmt.Errorf("%w: %w", ErrIdentityUnavailable, err)
	}

	rec, outcome, err := s.target(ctx, identity)
	if err != nil {
		return SaveResult{}, err
	}

	rec.Set(FieldFullName, strings.TrimSpace(in.FullName))
	rec.Set(FieldProfession, strings.TrimSpace(in.Profession))
	rec.Set(FieldBiography, strings.TrimSpace(in.Biography))

	var uploaded, replaced *recordstore.Asset
	if avatar != nil {
		asset := recordstore.Asset{Key: assets.NewAvatarKey(), ContentType: assets.ContentTypeJPEG, Size: int64(len(avatar))}
		if err := s.storage.Put(ctx, asset.Key, bytes.NewReader(avatar), asset.Size, asset.ContentType); err != nil {
			return SaveResult{}, fmt.Errorf("upload avatar: %w", err)
		}
		uploaded = &asset
		replaced = rec.GetAsset(FieldAvatar)
		rec.Set(FieldAvatar, asset)
	}

	if err := s.store.SaveBatch(ctx, []*recordstore.Record{identity, rec}); err != nil {
		if uploaded != nil {
			s.discard(ctx, uploaded.Key)
		}
		return SaveResult{}, fmt.Errorf("save profile: %w", err)
	}

	if replaced != nil {
		s.discard(ctx, replaced.Key)
	}
	sess.AdoptIdentityRecord(identity)
	if err := sess.RememberProfileID(ctx, rec.ID); err != nil {
		s.log.Warn("failed to cache profile id", zap.String("profile_id", rec.ID), zap.Error(err))
	}

	p, err := FromRecord(rec)
	if err != nil {
		return SaveResult{}, err
	}
	metrics.ProfileSaves.WithLabelValues(string(outcome)).Inc()
	return SaveResult{Outcome: outcome, Profile: p}, nil
}

// target returns the profile record to write. A new record is referenced
// from the identity record with cascade delete.
func (s *Service) target(ctx context.Context, identity *recordstore.Record) (*recordstore.Record, Outcome, error) {
	if ref := identity.GetReference(session.FieldUserProfile); ref != nil {
		rec, err := s.store.FetchRecord(ctx, ref.RecordID)
		switch {
		case err == nil:
			return rec, OutcomeUpdated, nil
		case errors.Is(err, recordstore.ErrNotFound):
			s.log.Warn("identity references a missing profile, creating a new one", zap.String("profile_id", ref.RecordID))
		default:
			return nil, "", fmt.Errorf("fetch profile: %w", err)
		}
	}

	rec := recordstore.NewRecord(RecordType)
	identity.Set(session.FieldUserProfile, recordstore.NewReference(rec.ID, recordstore.ActionCascade))
	return rec, OutcomeCreated, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete avatar", zap.String("key", key), zap.Error(err))
	}
}

// Load returns the signed-in user's profile. ok is false when there is none.
func (s *Service) Load(ctx context.Context, sess *session.Session) (Profile, bool, error) {
	id, ok, err := sess.ResolveProfileID(ctx)
	if err != nil || !ok {
		return Profile{}, false, err
	}

	rec, err := s.store.FetchRecord(ctx, id)
	if errors.Is(err, recordstore.ErrNotFound) {
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, fmt.Errorf("fetch profile: %w", err)
	}

	p, err := FromRecord(rec)
	if err != nil {
		return Profile{}, false, err
	}
	return p, true, nil
}
