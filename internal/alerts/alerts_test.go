package alerts

import (
	"strings"
	"testing"
)

func TestAlertsAreComplete(t *testing.T) {
	all := map[string]Alert{
		"UnableToGetLocations":      UnableToGetLocations,
		"IncompleteProfile":         IncompleteProfile,
		"InvalidAvatar":             InvalidAvatar,
		"UnknownLocation":           UnknownLocation,
		"FailedToFetchUserRecord":   FailedToFetchUserRecord,
		"ProfileSavedSuccessfully":  ProfileSavedSuccessfully,
		"ErrorSavingProfile":        ErrorSavingProfile,
		"ProfileUpdated":            ProfileUpdated,
		"ProfileCreated":            ProfileCreated,
		"UnableToGetCheckinStatus":  UnableToGetCheckinStatus,
		"UnableToGetProfile":        UnableToGetProfile,
		"UnableToCheckInOrCheckOut": UnableToCheckInOrCheckOut,
	}

	titles := make(map[string]string)
	for name, a := range all {
		if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Message) == "" {
			t.Errorf("%s: expected title and message", name)
		}
		if other, ok := titles[a.Title]; ok {
			t.Errorf("%s: title %q already used by %s", name, a.Title, other)
		}
		titles[a.Title] = name
	}
}

func TestIncompleteProfileNamesMinimum(t *testing.T) {
	if !strings.Contains(IncompleteProfile.Message, "90") {
		t.Error("Expected the incomplete profile alert to state the biography minimum")
	}
}
