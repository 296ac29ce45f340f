// main.go
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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/localnerve/jurados-presence/internal/config"
	"github.com/localnerve/jurados-presence/internal/database"
	"github.com/localnerve/jurados-presence/internal/logger"
	"github.com/localnerve/jurados-presence/internal/prefs"
	"github.com/localnerve/jurados-presence/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New("error")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	appDB, err := database.Connect(cfg, zlog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(appDB)

	ctx := context.Background()

	// An unreachable redis is reported by the health check itself
	var pinger services.Pinger
	if client, err := prefs.Dial(ctx, cfg.RedisURL); err != nil {
		pinger = unreachable{err}
	} else {
		defer client.Close()
		pinger = prefs.NewRedis(client)
	}

	result := services.HealthCheck(ctx, cfg, appDB, pinger, zlog)

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal health check result: %v", err)
	}

	fmt.Println(string(output))

	if result.Status != "healthy" {
		os.Exit(1)
	}
	os.Exit(0)
}

type unreachable struct{ err error }

func (u unreachable) Ping(context.Context) error { return u.err }
