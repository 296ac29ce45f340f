// common.go
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
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jurados-presence/internal/middleware"
	"github.com/localnerve/jurados-presence/internal/session"
)

// parseLocations extracts location ids from query parameters,
// supporting both multiple 'locations' keys and comma-separated values.
func parseLocations(c *fiber.Ctx) []string {
	locationSet := make(map[string]struct{})

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) == "locations" {
			vals := strings.Split(string(value), ",")
			for _, v := range vals {
				v = strings.TrimSpace(v)
				if v != "" {
					locationSet[v] = struct{}{}
				}
			}
		}
	}

	if len(locationSet) == 0 {
		return nil
	}

	locations := make([]string, 0, len(locationSet))
	for k := range locationSet {
		locations = append(locations, k)
	}

	return locations
}

// sessionFor returns the signed-in user's session. Routes using it sit
// behind middleware.AuthUser.
func sessionFor(c *fiber.Ctx, sessions *session.Registry) *session.Session {
	return sessions.For(middleware.UserID(c))
}
