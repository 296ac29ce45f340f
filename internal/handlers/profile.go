// profile.go
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
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/alerts"
	"github.com/localnerve/jurados-presence/internal/assets"
	"github.com/localnerve/jurados-presence/internal/profile"
	"github.com/localnerve/jurados-presence/internal/session"
	"github.com/localnerve/jurados-presence/internal/utils"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// maxAvatarUpload bounds the raw avatar upload before conversion
const maxAvatarUpload = 10 << 20

// ProfileHandler handles the signed-in user's profile
type ProfileHandler struct {
	Profiles *profile.Service
	Sessions *session.Registry
	Log      *zap.Logger
}

// ProfileRequest is the JSON body of a profile save. Avatar is base64.
type ProfileRequest struct {
	FullName   string `json:"fullName"`
	Profession string `json:"profession"`
	Biography  string `json:"biography"`
	Avatar     []byte `json:"avatar,omitempty"`
}

// GetProfile handles GET /api/profile
// @Summary Get the current user's profile
// @Tags Profile
// @Produce json
// @Security CookieAuth
// @Success 200 {object} profile.Profile
// @Success 204 "No profile yet"
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	p, ok, err := h.Profiles.Load(c.UserContext(), sessionFor(c, h.Sessions))
	if err != nil {
		h.Log.Error("load profile failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.UnableToGetProfile, fiber.StatusServiceUnavailable, "getProfile")
	}
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

// SaveProfile handles POST /api/profile
// @Summary Create or update the current user's profile
// @Description Accepts JSON (avatar base64) or multipart/form-data (avatar file)
// @Tags Profile
// @Accept json
// @Accept mpfd
// @Produce json
// @Security CookieAuth
// @Param profile body ProfileRequest true "Profile fields"
// @Success 200 {object} utils.SaveResponseStruct
// @Success 201 {object} utils.SaveResponseStruct
// @Failure 400 {object} utils.SaveResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /profile [post]
func (h *ProfileHandler) SaveProfile(c *fiber.Ctx) error {
	in, err := readProfileInput(c)
	if err != nil {
		return utils.AlertResponse(c, alerts.IncompleteProfile, fiber.StatusBadRequest, "saveProfile")
	}

	result, err := h.Profiles.Save(c.UserContext(), sessionFor(c, h.Sessions), in)
	if errors.Is(err, profile.ErrIdentityUnavailable) {
		h.Log.Error("identity record unavailable", zap.Error(err))
		return utils.AlertResponse(c, alerts.FailedToFetchUserRecord, fiber.StatusServiceUnavailable, "saveProfile")
	}
	if err != nil {
		h.Log.Error("save profile failed", zap.Error(err))
		return utils.AlertResponse(c, alerts.ErrorSavingProfile, fiber.StatusServiceUnavailable, "saveProfile")
	}

	resp := utils.SaveResponseStruct{Outcome: string(result.Outcome)}
	switch result.Outcome {
	case profile.OutcomeInvalid:
		alert := alerts.IncompleteProfile
		for _, p := range result.Problems {
			resp.Problems = append(resp.Problems, string(p))
			if p == profile.ProblemAvatar {
				alert = alerts.InvalidAvatar
			}
		}
		resp.Alert = &alert
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case profile.OutcomeCreated:
		resp.Ok = true
		resp.Profile = result.Profile
		resp.Alert = &alerts.ProfileCreated
		return c.Status(fiber.StatusCreated).JSON(resp)
	default:
		resp.Ok = true
		resp.Profile = result.Profile
		resp.Alert = &alerts.ProfileUpdated
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}

func readProfileInput(c *fiber.Ctx) (profile.Input, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in := profile.Input{
			FullName:   c.FormValue("fullName"),
			Profession: c.FormValue("profession"),
			Biography:  c.FormValue("biography"),
		}
		file, err := c.FormFile("avatar")
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return in, nil
		}
		if err != nil {
			return in, err
		}
		if file.Size > maxAvatarUpload {
			return in, assets.ErrValidation
		}
		f, err := file.Open()
		if err != nil {
			return in, err
		}
		defer f.Close()
		in.Avatar, err = io.ReadAll(io.LimitReader(f, maxAvatarUpload))
		return in, err
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return profile.Input{}, err
	}
	return profile.Input{
		FullName:   req.FullName,
		Profession: req.Profession,
		Biography:  req.Biography,
		Avatar:     req.Avatar,
	}, nil
}
