package presence

import (
	"sort"
	"sync"

	"github.com/localnerve/jurados-presence/internal/profile"
)

// Roster is a caller-owned view of who is present where, for presentation
// clients that keep a listing on screen between queries. Seed it with
// Service.Listing, then feed it the Events returned by CheckIn and CheckOut.
// The server itself never holds one. It changes only through Replace and Apply.
type Roster struct {
	mu         sync.RWMutex
	byLocation map[string][]profile.Profile
}

// NewRoster builds a roster from a listing
func NewRoster(listing map[string][]profile.Profile) *Roster {
	r := &Roster{}
	r.Replace(listing)
	return r
}

// Replace swaps in a freshly queried listing
func (r *Roster) Replace(listing map[string][]profile.Profile) {
	next := make(map[string][]profile.Profile, len(listing))
	for loc, profiles := range listing {
		if len(profiles) > 0 {
			next[loc] = append([]profile.Profile(nil), profiles...)
		}
	}

	r.mu.Lock()
	r.byLocation = next
	r.mu.Unlock()
}

// Apply folds a completed transition into the roster. The profile is
// removed, by id, from whichever location holds it; a check-in then adds
// it to its new location.
func (r *Roster) Apply(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byLocation == nil {
		r.byLocation = make(map[string][]profile.Profile)
	}
	r.remove(e.ProfileID)
	if e.Kind == CheckedIn && e.LocationID != "" {
		r.byLocation[e.LocationID] = append(r.byLocation[e.LocationID], e.Profile)
	}
}

func (r *Roster) remove(profileID string) {
	for loc, profiles := range r.byLocation {
		kept := profiles[:0:0]
		for _, p := range profiles {
			if p.ID != profileID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(r.byLocation, loc)
			continue
		}
		r.byLocation[loc] = kept
	}
}

// At returns the profiles present at a location, sorted by name
func (r *Roster) At(locationID string) []profile.Profile {
	r.mu.RLock()
	profiles := append([]profile.Profile(nil), r.byLocation[locationID]...)
	r.mu.RUnlock()

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].FullName < profiles[j].FullName
	})
	return profiles
}

func (r *Roster) Count(locationID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byLocation[locationID])
}

// Counts returns the number of profiles per occupied location
func (r *Roster) Counts() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int, len(r.byLocation))
	for loc, profiles := range r.byLocation {
		counts[loc] = len(profiles)
	}
	return counts
}

// Snapshot returns a copy of the whole roster with each location sorted by name
func (r *Roster) Snapshot() map[string][]profile.Profile {
	r.mu.RLock()
	locations := make([]string, 0, len(r.byLocation))
	for loc := range r.byLocation {
		locations = append(locations, loc)
	}
	r.mu.RUnlock()

	snapshot := make(map[string][]profile.Profile, len(locations))
	for _, loc := range locations {
		if profiles := r.At(loc); len(profiles) > 0 {
			snapshot[loc] = profiles
		}
	}
	return snapshot
}
