package location

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localnerve/jurados-presence/internal/recordstore"
)

// Seed is one location in the reference data file
type Seed struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Description string  `json:"description"`
	Website     string  `json:"website"`
	Phone       string  `json:"phone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	AvatarKey   string  `json:"avatarKey,omitempty"`
	BannerKey   string  `json:"bannerKey,omitempty"`
}

// ParseSeeds decodes the reference data file
func ParseSeeds(data []byte) ([]Seed, error) {
	var seeds []Seed
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse location seeds: %w", err)
	}
	for i, seed := range seeds {
		if seed.ID == "" || seed.Name == "" {
			return nil, fmt.Errorf("location seed %d needs an id and a name", i)
		}
	}
	return seeds, nil
}

// SeedLocations writes the reference locations when none exist yet. It returns the
// number of locations written.
func SeedLocations(ctx context.Context, store recordstore.Store, seeds []Seed) (int, error) {
	existing, err := store.Query(ctx, RecordType, recordstore.All())
	if err != nil {
		return 0, fmt.Errorf("check locations: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	records := make([]*recordstore.Record, 0, len(seeds))
	for _, seed := range seeds {
		rec := recordstore.NewRecordWithID(RecordType, seed.ID)
		rec.Set(FieldName, seed.Name)
		rec.Set(FieldAddress, seed.Address)
		rec.Set(FieldDescription, seed.Description)
		rec.Set(FieldWebsite, seed.Website)
		rec.Set(FieldPhone, seed.Phone)
		rec.Set(FieldCoordinate, recordstore.GeoPoint{Latitude: seed.Latitude, Longitude: seed.Longitude})
		if seed.AvatarKey != "" {
			rec.Set(FieldAvatar, recordstore.Asset{Key: seed.AvatarKey, ContentType: "image/jpeg"})
		}
		if seed.BannerKey != "" {
			rec.Set(FieldBanner, recordstore.Asset{Key: seed.BannerKey, ContentType: "image/jpeg"})
		}
		records = append(records, rec)
	}

	if err := store.SaveBatch(ctx, records); err != nil {
		return 0, fmt.Errorf("seed locations: %w", err)
	}
	return len(records), nil
}
