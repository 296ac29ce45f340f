package assets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/localnerve/jurados-presence/internal/recordstore"
)

// Resolver opens the blob behind a record's asset field on demand
type Resolver struct {
	store   recordstore.Store
	storage Storage
}

func NewResolver(store recordstore.Store, storage Storage) *Resolver {
	return &Resolver{store: store, storage: storage}
}

// Open returns the asset descriptor and a reader over its bytes. The caller
// closes the reader.
func (r *Resolver) Open(ctx context.Context, recordID, field string) (*recordstore.Asset, io.ReadCloser, error) {
	rec, err := r.store.FetchRecord(ctx, recordID)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch record: %w", err)
	}

	asset := rec.GetAsset(field)
	if asset == nil {
		return nil, nil, ErrNotFound
	}

	body, err := r.storage.Get(ctx, asset.Key)
	if err != nil {
		return nil, nil, err
	}
	return asset, body, nil
}
