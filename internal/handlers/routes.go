package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Routes groups the handlers mounted under /api
type Routes struct {
	Locations  *LocationHandler
	Presence   *PresenceHandler
	Profile    *ProfileHandler
	Onboarding *OnboardingHandler
	Assets     *AssetHandler
}

// Register mounts every route on api. authUser guards the routes that act
// for the signed-in user.
func (r *Routes) Register(api fiber.Router, authUser fiber.Handler) {
	// Public reads
	api.Get("/locations", r.Locations.ListLocations)
	api.Get("/locations/:id", r.Locations.GetLocation)
	api.Get("/locations/:id/profiles", r.Locations.GetLocationProfiles)
	api.Get("/presence/counts", r.Presence.GetCounts)
	api.Get("/presence/listing", r.Presence.GetListing)
	api.Get("/assets/:record/:field", r.Assets.GetAsset)

	// Signed-in user
	api.Get("/presence/status", authUser, r.Presence.GetStatus)
	api.Post("/presence/checkin/:location", authUser, r.Presence.CheckIn)
	api.Post("/presence/checkout", authUser, r.Presence.CheckOut)
	api.Get("/profile", authUser, r.Profile.GetProfile)
	api.Post("/profile", authUser, r.Profile.SaveProfile)
	api.Get("/onboarding", authUser, r.Onboarding.GetOnboarding)
	api.Post("/onboarding", authUser, r.Onboarding.MarkOnboarding)
}
