package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/jurados-presence/internal/recordstore"
	"go.uber.org/zap"
)

// RecordType and field names of a stored location
const (
	RecordType       = "JuradosLocation"
	FieldName        = "name"
	FieldAddress     = "address"
	FieldDescription = "description"
	FieldWebsite     = "website"
	FieldPhone       = "phone"
	FieldCoordinate  = "location"
	FieldAvatar      = "avatarAsset"
	FieldBanner      = "bannerAsset"
)

// ErrNotFound is returned for an unknown location id
var ErrNotFound = errors.New("location not found")

// Location is a restaurant. Read-only at runtime.
type Location struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Address     string                `json:"address"`
	Description string                `json:"description"`
	Website     string                `json:"website"`
	Phone       string                `json:"phone"`
	Coordinate  *recordstore.GeoPoint `json:"location,omitempty"`
	Avatar      *recordstore.Asset    `json:"avatarAsset,omitempty"`
	Banner      *recordstore.Asset    `json:"bannerAsset,omitempty"`
}

// FromRecord decodes a stored location. Missing text fields read as "N/A".
func FromRecord(rec *recordstore.Record) (Location, error) {
	if rec == nil || rec.Type != RecordType {
		return Location{}, fmt.Errorf("not a location record")
	}
	l := Location{
		ID:          rec.ID,
		Name:        stringOr(rec, FieldName),
		Address:     stringOr(rec, FieldAddress),
		Description: stringOr(rec, FieldDescription),
		Website:     stringOr(rec, FieldWebsite),
		Phone:       stringOr(rec, FieldPhone),
		Avatar:      rec.GetAsset(FieldAvatar),
		Banner:      rec.GetAsset(FieldBanner),
	}
	if point, ok := rec.GetGeoPoint(FieldCoordinate); ok {
		l.Coordinate = &point
	}
	return l, nil
}

// Service reads locations
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

// List returns every location sorted by name
func (s *Service) List(ctx context.Context) ([]Location, error) {
	records, err := s.store.Query(ctx, RecordType, recordstore.All(), recordstore.Ascending(FieldName))
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}

	locations := make([]Location, 0, len(records))
	for _, rec := range records {
		l, err := FromRecord(rec)
		if err != nil {
			s.log.Warn("skipping location", zap.String("record_id", rec.ID), zap.Error(err))
			continue
		}
		locations = append(locations, l)
	}
	return locations, nil
}

// Get returns one location
func (s *Service) Get(ctx context.Context, id string) (Location, error) {
	rec, err := s.store.FetchRecord(ctx, id)
	if errors.Is(err, recordstore.ErrNotFound) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("get location: %w", err)
	}
	if rec.Type != RecordType {
		return Location{}, ErrNotFound
	}
	return FromRecord(rec)
}

func stringOr(rec *recordstore.Record, field string) string {
	if v, ok := rec.GetString(field); ok {
		return v
	}
	return "N/A"
}
