package presence_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/localnerve/jurados-presence/internal/location"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/recordstore"
	"github.com/localnerve/jurados-presence/internal/testutil"
)

func setup(t *testing.T) (*testutil.CountingStore, *presence.Service) {
	t.Helper()
	gorm := testutil.NewStore(t)
	for _, id := range []string{"L1", "L2", "L3"} {
		rec := recordstore.NewRecordWithID(location.RecordType, id)
		rec.Set(location.FieldName, id)
		if _, err := gorm.SaveOne(context.Background(), rec); err != nil {
			t.Fatalf("Failed to seed location %s: %v", id, err)
		}
	}
	store := testutil.NewCountingStore(gorm)
	return store, presence.NewService(store, nil)
}

func newProfile(t *testing.T, store recordstore.Store, name string) string {
	t.Helper()
	rec := recordstore.NewRecord(profile.RecordType)
	rec.Set(profile.FieldFullName, name)
	if _, err := store.SaveOne(context.Background(), rec); err != nil {
		t.Fatalf("SaveOne failed: %v", err)
	}
	return rec.ID
}

func assertConsistent(t *testing.T, store recordstore.Store, profileID string) {
	t.Helper()
	rec, err := store.FetchRecord(context.Background(), profileID)
	if err != nil {
		t.Fatalf("FetchRecord failed: %v", err)
	}
	p, err := profile.FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if !p.Consistent() {
		t.Errorf("Marker and reference disagree for %s: marked=%v isHere=%v", profileID, p.Marked, p.IsHere)
	}
}

func TestCheckInSetsPresence(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	id := newProfile(t, store, "Ana")

	event, err := svc.CheckIn(ctx, id, "L1")
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if event.Kind != presence.CheckedIn || event.LocationID != "L1" || event.ProfileID != id {
		t.Errorf("Unexpected event %+v", event)
	}
	if event.Profile.IsHere == nil || *event.Profile.IsHere != "L1" {
		t.Errorf("Expected event profile at L1, got %+v", event.Profile.IsHere)
	}
	assertConsistent(t, store, id)

	status, err := svc.Status(ctx, id, "L1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.CheckedIn || !status.IsPresent {
		t.Errorf("Expected present at L1, got %+v", status)
	}
	other, err := svc.Status(ctx, id, "L2")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !other.CheckedIn || other.IsPresent {
		t.Errorf("Expected checked in elsewhere, got %+v", other)
	}
}

func TestCheckInMovesBetweenLocations(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	id := newProfile(t, store, "Ana")

	if _, err := svc.CheckIn(ctx, id, "L1"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if _, err := svc.CheckIn(ctx, id, "L2"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	assertConsistent(t, store, id)

	listing, err := svc.Listing(ctx)
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	if _, ok := listing["L1"]; ok {
		t.Error("Expected L1 to no longer list the profile")
	}
	if len(listing["L2"]) != 1 || listing["L2"][0].ID != id {
		t.Errorf("Expected the profile at L2, got %+v", listing["L2"])
	}

	at1, err := svc.ProfilesAt(ctx, "L1")
	if err != nil {
		t.Fatalf("ProfilesAt failed: %v", err)
	}
	if len(at1) != 0 {
		t.Errorf("Expected nobody at L1, got %d", len(at1))
	}
}

func TestCheckOutClearsPresence(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	id := newProfile(t, store, "Ana")

	if _, err := svc.CheckIn(ctx, id, "L1"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	event, err := svc.CheckOut(ctx, id)
	if err != nil {
		t.Fatalf("CheckOut failed: %v", err)
	}
	if event.Kind != presence.CheckedOut || event.LocationID != "L1" {
		t.Errorf("Unexpected event %+v", event)
	}
	assertConsistent(t, store, id)

	listing, err := svc.Listing(ctx)
	if err != nil {
		t.Fatalf("Listing failed: %v", err)
	}
	if len(listing) != 0 {
		t.Errorf("Expected empty listing, got %v", listing)
	}

	status, err := svc.Status(ctx, id, "L1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CheckedIn || status.IsPresent || status.LocationID != nil {
		t.Errorf("Expected not present anywhere, got %+v", status)
	}

	again, err := svc.CheckOut(ctx, id)
	if err != nil {
		t.Fatalf("Second CheckOut failed: %v", err)
	}
	if again.LocationID != "" {
		t.Errorf("Expected no previous location, got %s", again.LocationID)
	}
}

func TestCountsMatchPresentProfiles(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()

	plan := map[string]int{"L1": 3, "L2": 1}
	total := 0
	for loc, n := range plan {
		for i := 0; i < n; i++ {
			id := newProfile(t, store, fmt.Sprintf("%s-%d", loc, i))
			if _, err := svc.CheckIn(ctx, id, loc); err != nil {
				t.Fatalf("CheckIn failed: %v", err)
			}
			total++
		}
	}
	newProfile(t, store, "Stays Home")

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	sum := 0
	for loc, n := range counts {
		if n != plan[loc] {
			t.Errorf("Location %s: expected %d, got %d", loc, plan[loc], n)
		}
		sum += n
	}
	if sum != total {
		t.Errorf("Expected counts to sum to %d, got %d", total, sum)
	}
	if _, ok := counts["L3"]; ok {
		t.Error("Expected empty locations to be absent")
	}
}

func TestInconsistentRecordsExcluded(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()

	rec := recordstore.NewRecord(profile.RecordType)
	rec.Set(profile.FieldFullName, "Marker Only")
	rec.Set(profile.FieldIsHereNil, 1)
	if _, err := store.SaveOne(ctx, rec); err != nil {
		t.Fatalf("SaveOne failed: %v", err)
	}
	good := newProfile(t, store, "Good")
	if _, err := svc.CheckIn(ctx, good, "L1"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if len(counts) != 1 || counts["L1"] != 1 {
		t.Errorf("Expected only the consistent profile to count, got %v", counts)
	}
}

func TestFailedSaveChangesNothing(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	id := newProfile(t, store, "Ana")
	if _, err := svc.CheckIn(ctx, id, "L1"); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	roster := presence.NewRoster(map[string][]profile.Profile{"L1": {{ID: id, FullName: "Ana"}}})
	store.FailSaveOne = errors.New("offline")

	if _, err := svc.CheckIn(ctx, id, "L2"); err == nil {
		t.Fatal("Expected check-in to fail")
	}
	if _, err := svc.CheckOut(ctx, id); err == nil {
		t.Fatal("Expected check-out to fail")
	}

	if roster.Count("L1") != 1 || roster.Count("L2") != 0 {
		t.Errorf("Expected roster untouched, got %v", roster.Counts())
	}
	status, err := svc.Status(ctx, id, "L1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if !status.IsPresent {
		t.Error("Expected stored presence untouched by failed transitions")
	}
}

func TestUnknownProfile(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, "missing", "L1"); !errors.Is(err, presence.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.Status(ctx, "missing", "L1"); !errors.Is(err, presence.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
	if store.Writes() != 0 {
		t.Error("Expected no writes for an unknown profile")
	}
}

func TestQueryFailure(t *testing.T) {
	store, svc := setup(t)
	store.FailQuery = errors.New("offline")

	if _, err := svc.Counts(context.Background()); err == nil {
		t.Error("Expected Counts to fail")
	}
	if _, err := svc.Listing(context.Background()); err == nil {
		t.Error("Expected Listing to fail")
	}
}

func TestCheckInRequiresLocation(t *testing.T) {
	store, svc := setup(t)
	ctx := context.Background()
	ana := newProfile(t, store, "Ana")
	beto := newProfile(t, store, "Beto")
	writes := store.Writes()

	for _, target := range []string{"no-such-location", ana, ""} {
		if _, err := svc.CheckIn(ctx, beto, target); !errors.Is(err, presence.ErrLocationNotFound) {
			t.Errorf("CheckIn at %q: expected ErrLocationNotFound, got %v", target, err)
		}
	}
	if store.Writes() != writes {
		t.Error("Expected no writes for a check-in at an unknown location")
	}

	counts, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("Expected no counts, got %v", counts)
	}
}
