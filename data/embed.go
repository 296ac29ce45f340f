package data

import (
	_ "embed"
)

// Locations is the reference list of restaurants written on first boot
//
//go:embed locations.json
var Locations []byte
