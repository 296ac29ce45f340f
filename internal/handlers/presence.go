// presence.go
//
// Check-in and profile service for Jurado's Burger locations
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jurados-presence.
// jurados-presence is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jurados-presence is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jurados-presence.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.


package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/alerts"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/session"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

// PresenceHandler handles check-in, check-out and presence queries
type PresenceHandler struct {
	Presence *presence.Service
	Sessions *session.Registry
	Log      *zap.Logger
}

// GetCounts handles GET /api/presence/counts?locations=...
// @Summary Checked-in counts by location
// @Description Locations with nobody checked in are omitted
// @Tags Presence
// @Produce json
// @Param locations query string false "Comma-separated list of location ids to filter"
// @Success 200 {object} map[string]int
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /presence/counts [get]
func (h *PresenceHandler) GetCounts(c *fiber.Ctx) error {
	counts, err := h.Presence.Counts(c.UserContext())
	if err != nil {
		h.Log.Error("presence counts failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetCheckinStatus, fiber.StatusServiceUnavailable, "getCounts")
	}

	if filter := parseLocations(c); filter != nil {
		filtered := make(map[string]int, len(filter))
		for _, id := range filter {
			if n, ok := counts[id]; ok {
				filtered[id] = n
			}
		}
		counts = filtered
	}

	return c.Status(fiber.StatusOK).JSON(counts)
}

// GetListing handles GET /api/presence/listing
// @Summary Checked-in profiles grouped by location
// @Tags Presence
// @Produce json
// @Success 200 {object} map[string][]profile.Profile
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /presence/listing [get]
func (h *PresenceHandler) GetListing(c *fiber.Ctx) error {
	listing, err := h.Presence.Listing(c.UserContext())
	if err != nil {
		h.Log.Error("presence listing failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusServiceUnavailable, "getListing")
	}
	return c.Status(fiber.StatusOK).JSON(listing)
}

// GetStatus handles GET /api/presence/status?location=...
// @Summary Current user's check-in status
// @Tags Presence
// @Produce json
// @Security CookieAuth
// @Param location query string false "Location ID to compare against"
// @Success 200 {object} presence.Status
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /presence/status [get]
func (h *PresenceHandler) GetStatus(c *fiber.Ctx) error {
	ctx := c.UserContext()

	profileID, ok, err := sessionFor(c, h.Sessions).ResolveProfileID(ctx)
	if err != nil {
		h.Log.Error("resolve profile failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetCheckinStatus, fiber.StatusServiceUnavailable, "getStatus")
	}
	if !ok {
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusNotFound, "getStatus")
	}

	status, err := h.Presence.Status(ctx, profileID, c.Query("location"))
	if errors.Is(err, presence.ErrProfileNotFound) {
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusNotFound, "getStatus")
	}
	if err != nil {
		h.Log.Error("presence status failed", zap.String("profile_id", profileID), zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetCheckinStatus, fiber.StatusServiceUnavailable, "getStatus")
	}
	return c.Status(fiber.StatusOK).JSON(status)
}

// CheckIn handles POST /api/presence/checkin/:location
// @Summary Check in at a location
// @Description Replaces any prior check-in
// @Tags Presence
// @Produce json
// @Security CookieAuth
// @Param location path string true "Location ID"
// @Success 200 {object} presence.Event
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /presence/checkin/{location} [post]
func (h *PresenceHandler) CheckIn(c *fiber.Ctx) error {
	locationID := c.Params("location")
	return h.transition(c, "checkIn", func(profileID string) (presence.Event, error) {
		return h.Presence.CheckIn(c.UserContext(), profileID, locationID)
	})
}

// CheckOut handles POST /api/presence/checkout
// @Summary Check out
// @Tags Presence
// @Produce json
// @Security CookieAuth
// @Success 200 {object} presence.Event
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /presence/checkout [post]
func (h *PresenceHandler) CheckOut(c *fiber.Ctx) error {
	return h.transition(c, "checkOut", func(profileID string) (presence.Event, error) {
		return h.Presence.CheckOut(c.UserContext(), profileID)
	})
}

func (h *PresenceHandler) transition(c *fiber.Ctx, errorType string, apply func(profileID string) (presence.Event, error)) error {
	profileID, ok, err := sessionFor(c, h.Sessions).ResolveProfileID(c.UserContext())
	if err != nil {
		h.Log.Error("resolve profile failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToCheckInOrCheckOut, fiber.StatusServiceUnavailable, errorType)
	}
	if !ok {
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusNotFound, errorType)
	}

	event, err := apply(profileID)
	if errors.Is(err, presence.ErrProfileNotFound) {
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusNotFound, errorType)
	}
	if errors.Is(err, presence.ErrLocationNotFound) {
		return utils.AlertResponse(c, alerts.UnknownLocation, fiber.StatusNotFound, errorType)
	}
	if err != nil {
		h.Log.Error("presence transition failed", zap.String("profile_id", profileID), zap.String("transition", errorType), zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToCheckInOrCheckOut, fiber.StatusServiceUnavailable, errorType)
	}
	return c.Status(fiber.StatusOK).JSON(event)
}
