// Package alerts holds the user-facing messages returned for failed and
// successful operations. Raw error text is never shown to users.
package alerts

// Alert is a title and message pair shown to the user
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var (
	UnableToGetLocations = Alert{
		Title:   "Unable to get locations",
		Message: "Unable to get locations at this time.\nPlease try again later.",
	}

	IncompleteProfile = Alert{
		Title:   "Please complete your profile",
		Message: "You must complete your profile before tapping the button. Your bio must be at least 90 characters long.\nPlease try again.",
	}

	UnknownLocation = Alert{
		Title:   "Location Not Found",
		Message: "We couldn’t find that location.\nPlease refresh the list and try again.",
	}

	InvalidAvatar = Alert{
		Title:   "Invalid Photo",
		Message: "We couldn’t read the photo you selected.\nPlease choose another image.",
	}

	FailedToFetchUserRecord = Alert{
		Title:   "User Record Not Found",
		Message: "We couldn’t fetch your user information.\nPlease make sure you are signed in and try again.",
	}

	ProfileSavedSuccessfully = Alert{
		Title:   "Profile Saved",
		Message: "Your profile has been saved successfully. Welcome to Jurado's Burger!",
	}

	ErrorSavingProfile = Alert{
		Title:   "Save Failed",
		Message: "We couldn’t save your profile.\nPlease check your connection and try again.",
	}

	ProfileUpdated = Alert{
		Title:   "Profile Updated",
		Message: "Your profile has been successfully updated.",
	}

	ProfileCreated = Alert{
		Title:   "Profile Created",
		Message: "Your new profile has been created successfully.",
	}

	UnableToGetCheckinStatus = Alert{
		Title:   "Check-in Status Unavailable",
		Message: "We couldn’t get your check-in status.\nPlease try again later.",
	}

	UnableToGetProfile = Alert{
		Title:   "Profile Unavailable",
		Message: "We couldn’t get your profile.\nPlease try again later.",
	}

	UnableToCheckInOrCheckOut = Alert{
		Title:   "Check-in/Check-out Unavailable",
		Message: "We couldn’t check you in or check you out.\nPlease try again later.",
	}
)
