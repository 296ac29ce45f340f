package profile

import (
	"strings"
	"unicode/utf8"
)

// Problem names an input field that failed validation
type Problem string

const (
	ProblemFullName   Problem = "fullName"
	ProblemProfession Problem = "profession"
	ProblemBiography  Problem = "biography"
	ProblemAvatar     Problem = "avatar"
)

// Input is a profile edit submitted by the user
type Input struct {
	FullName   string
	Profession string
	Biography  string
	Avatar     []byte
}

// Validate checks an edit before any I/O happens
func Validate(in Input) []Problem {
	var problems []Problem
	if !withinLength(in.FullName, MaxFullNameLength) {
		problems = append(problems, ProblemFullName)
	}
	if !withinLength(in.Profession, MaxProfessionLength) {
		problems = append(problems, ProblemProfession)
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.Biography)) < MinBiographyLength {
		problems = append(problems, ProblemBiography)
	}
	return problems
}

// withinLength reports whether the trimmed value is non-empty and at most max characters
func withinLength(s string, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n > 0 && n <= max
}

// TruncateBiography caps an edited biography at MaxBiographyLength characters
func TruncateBiography(s string) string {
	if utf8.RuneCountInString(s) <= MaxBiographyLength {
		return s
	}
	return string([]rune(s)[:MaxBiographyLength])
}
