package recordstore

import (
	"context"
	"errors"
)

// Record types shared across the service
const (
	TypeUsers = "Users"
)

var (
	// ErrNotFound is returned when a record id does not exist
	ErrNotFound = errors.New("record not found")

	// ErrNotAuthenticated is returned when no signed-in identity is available
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Store is the record store contract the presence, session and profile
// services depend on
type Store interface {
	// FetchRecord returns the record with the given id or ErrNotFound
	FetchRecord(ctx context.Context, id string) (*Record, error)

	// Query returns records of recordType matching predicate. Records that
	// fail to decode are skipped.
	Query(ctx context.Context, recordType string, predicate Predicate, sorts ...Sort) ([]*Record, error)

	// SaveOne upserts a single record, replacing all of its fields
	SaveOne(ctx context.Context, record *Record) (*Record, error)

	// SaveBatch upserts all records atomically
	SaveBatch(ctx context.Context, records []*Record) error

	// CurrentUserRootID returns the identity record id of the signed-in user
	CurrentUserRootID(ctx context.Context) (string, error)
}

type userIDKey struct{}

// WithUserID attaches the signed-in identity provider user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the identity provider user id, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// IdentityRecordID maps an identity provider user id to its identity record id
func IdentityRecordID(userID string) string {
	return "_" + userID
}
