// locations.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/alerts"
	"github.com/localnerve/jurados-presence/internal/location"
	"github.com/localnerve/jurados-presence/internal/presence"
	"github.com/localnerve/jurados-presence/internal/utils"
	"go.uber.org/zap"
)

// LocationHandler handles restaurant location routes
type LocationHandler struct {
	Locations *location.Service
	Presence  *presence.Service
	Log       *zap.Logger
}

// ListLocations handles GET /api/locations
// @Summary List locations
// @Description Get every restaurant location sorted by name
// @Tags Locations
// @Produce json
// @Success 200 {array} location.Location
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /locations [get]
func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.Locations.List(c.UserContext())
	if err != nil {
		h.Log.Error("list locations failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetLocations, fiber.StatusServiceUnavailable, "listLocations")
	}
	return c.Status(fiber.StatusOK).JSON(locations)
}

// GetLocation handles GET /api/locations/:id
// @Summary Get a location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} location.Location
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /locations/{id} [get]
func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	id := c.Params("id")

	loc, err := h.Locations.Get(c.UserContext(), id)
	if errors.Is(err, location.ErrNotFound) {
		return utils.NotFoundResponse(c, fmt.Sprintf("Location '%s' not found", id))
	}
	if err != nil {
		h.Log.Error("get location failed", zap.String("location_id", id), zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetLocations, fiber.StatusServiceUnavailable, "getLocation")
	}
	return c.Status(fiber.StatusOK).JSON(loc)
}

// GetLocationProfiles handles GET /api/locations/:id/profiles
// @Summary Profiles checked in at a location
// @Tags Locations
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {array} profile.Profile
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /locations/{id}/profiles [get]
func (h *LocationHandler) GetLocationProfiles(c *fiber.Ctx) error {
	id := c.Params("id")

	profiles, err := h.Presence.ProfilesAt(c.UserContext(), id)
	if err != nil {
		h.Log.Error("profiles at location failed", zap.String("location_id", id), zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusServiceUnavailable, "getLocationProfiles")
	}
	return c.Status(fiber.StatusOK).JSON(profiles)
}
