// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/localnerve/jurados-presence/internal/database"
	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	goredis "github.com/redis/go-redis/v9"
)

// NewStore returns a record store over a private in-memory database
func NewStore(t *testing.T) *recordstore.GormStore {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return recordstore.NewGormStore(db, nil, 0)
}

// NewPrefs returns redis prefs backed by miniredis
func NewPrefs(t *testing.T) *prefs.Redis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return prefs.NewRedis(client)
}

// CountingStore wraps a store, counting calls and optionally failing them
type CountingStore struct {
	recordstore.Store

	mu      sync.Mutex
	calls   map[string]int
	batches [][]*recordstore.Record

	FailFetch       error
	FailQuery       error
	FailSaveOne     error
	FailSaveBatch   error
	FailCurrentUser error
}

// NewCountingStore wraps store
func NewCountingStore(store recordstore.Store) *CountingStore {
	return &CountingStore{Store: store, calls: make(map[string]int)}
}

func (c *CountingStore) count(name string) {
	c.mu.Lock()
	c.calls[name]++
	c.mu.Unlock()
}

// Calls returns how many times a method was invoked
func (c *CountingStore) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// Writes returns the number of SaveOne plus SaveBatch calls
func (c *CountingStore) Writes() int {
	return c.Calls("SaveOne") + c.Calls("SaveBatch")
}

// Batches returns a snapshot of the records passed to each SaveBatch call
func (c *CountingStore) Batches() [][]*recordstore.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]*recordstore.Record(nil), c.batches...)
}

func (c *CountingStore) FetchRecord(ctx context.Context, id string) (*recordstore.Record, error) {
	c.count("FetchRecord")
	if c.FailFetch != nil {
		return nil, c.FailFetch
	}
	return c.Store.FetchRecord(ctx, id)
}

func (c *CountingStore) Query(ctx context.Context, recordType string, predicate recordstore.Predicate, sorts ...recordstore.Sort) ([]*recordstore.Record, error) {
	c.count("Query")
	if c.FailQuery != nil {
		return nil, c.FailQuery
	}
	return c.Store.Query(ctx, recordType, predicate, sorts...)
}

func (c *CountingStore) SaveOne(ctx context.Context, record *recordstore.Record) (*recordstore.Record, error) {
	c.count("SaveOne")
	if c.FailSaveOne != nil {
		return nil, c.FailSaveOne
	}
	return c.Store.SaveOne(ctx, record)
}

func (c *CountingStore) SaveBatch(ctx context.Context, records []*recordstore.Record) error {
	c.count("SaveBatch")
	c.mu.Lock()
	snapshot := make([]*recordstore.Record, len(records))
	for i, r := range records {
		snapshot[i] = r.Clone()
	}
	c.batches = append(c.batches, snapshot)
	c.mu.Unlock()

	if c.FailSaveBatch != nil {
		return c.FailSaveBatch
	}
	return c.Store.SaveBatch(ctx, records)
}

func (c *CountingStore) CurrentUserRootID(ctx context.Context) (string, error) {
	c.count("CurrentUserRootID")
	if c.FailCurrentUser != nil {
		return "", c.FailCurrentUser
	}
	return c.Store.CurrentUserRootID(ctx)
}
