package profile

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/localnerve/jurados-presence/internal/recordstore"
)

// RecordType and field names of a stored profile
const (
	RecordType      = "JuradosProfile"
	FieldFullName   = "fullName"
	FieldProfession = "profession"
	FieldBiography  = "biography"
	FieldAvatar     = "avatar"
	FieldIsHere     = "isHere"
	FieldIsHereNil  = "isHereNil"
)

const (
	MinBiographyLength  = 90
	MaxBiographyLength  = 150
	MaxFullNameLength   = 100
	MaxProfessionLength = 100

	missingValue = "N/A"
)

// Profile is a user's public profile
type Profile struct {
	ID         string             `json:"id"`
	FullName   string             `json:"fullName"`
	Profession string             `json:"profession"`
	Biography  string             `json:"biography"`
	Avatar     *recordstore.Asset `json:"avatar,omitempty"`
	IsHere     *string            `json:"isHere,omitempty"`

	// Marked mirrors the stored presence marker
	Marked bool `json:"-"`
}

// FromRecord decodes a stored profile. Missing text fields read as "N/A".
func FromRecord(rec *recordstore.Record) (Profile, error) {
	if rec == nil || rec.Type != RecordType {
		return Profile{}, fmt.Errorf("not a profile record")
	}

	p := Profile{
		ID:         rec.ID,
		FullName:   stringOr(rec, FieldFullName),
		Profession: stringOr(rec, FieldProfession),
		Biography:  stringOr(rec, FieldBiography),
		Avatar:     rec.GetAsset(FieldAvatar),
	}
	if ref := rec.GetReference(FieldIsHere); ref != nil {
		id := ref.RecordID
		p.IsHere = &id
	}
	if marker, ok := rec.GetInt(FieldIsHereNil); ok && marker == 1 {
		p.Marked = true
	}
	return p, nil
}

func stringOr(rec *recordstore.Record, field string) string {
	if v, ok := rec.GetString(field); ok {
		return v
	}
	return missingValue
}

// FirstName is the first word of the full name
func (p Profile) FirstName() string {
	fields := strings.Fields(p.FullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Initials are the first letters of the first and last words of the full name
func (p Profile) Initials() string {
	fields := strings.Fields(p.FullName)
	switch len(fields) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(firstRune(fields[0]))
	}
	return strings.ToUpper(firstRune(fields[0]) + firstRune(fields[len(fields)-1]))
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

// Consistent reports whether the presence marker agrees with the reference
func (p Profile) Consistent() bool {
	return p.Marked == (p.IsHere != nil)
}
