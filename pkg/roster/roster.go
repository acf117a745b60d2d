// Package roster turns hand-authored doctor-on-call calendar tables into
// structured per-day, per-shift assignments.
//
// The input is a Node tree (see internal/htmldoc for loading one from HTML).
// Parsing is pure and deterministic: no I/O, no shared state.
package roster

import (
	"fmt"
	"log/slog"
	"slices"
)

// DefaultMarker is the heading substring that identifies a calendar block.
const DefaultMarker = "担当医表"

// DefaultDayClass is the class of the element holding a cell's day number.
const DefaultDayClass = "day"

// ImplicitShift decides where unmarked doctor text (a cell with no AM, PM
// or 終日 marker) is assigned.
type ImplicitShift string

const (
	// ImplicitAllDay assigns unmarked text to both AM and PM.
	ImplicitAllDay ImplicitShift = "allday"
	// ImplicitAM assigns unmarked text to AM only.
	ImplicitAM ImplicitShift = "am"
)

// ParseImplicitShift validates a policy name.
func ParseImplicitShift(s string) (ImplicitShift, error) {
	switch ImplicitShift(s) {
	case ImplicitAllDay, ImplicitAM:
		return ImplicitShift(s), nil
	case "":
		return ImplicitAllDay, nil
	default:
		return "", fmt.Errorf("unknown implicit shift policy: %s (use 'allday' or 'am')", s)
	}
}

// Options configures a Parser.
type Options struct {
	Marker        string        // heading substring, default DefaultMarker
	HeadingTags   []string      // heading element names, default h1-h6
	DayClass      string        // day marker class, default DefaultDayClass
	ImplicitShift ImplicitShift // unmarked text policy, default ImplicitAllDay
	Logger        *slog.Logger  // nil discards
}

// DefaultOptions returns the options used for the clinic calendar page.
func DefaultOptions() Options {
	return Options{
		Marker:        DefaultMarker,
		HeadingTags:   []string{"h1", "h2", "h3", "h4", "h5", "h6"},
		DayClass:      DefaultDayClass,
		ImplicitShift: ImplicitAllDay,
	}
}

// Document is one calendar: a matched heading and the entries parsed from
// the table that follows it.
type Document struct {
	Title   string  `json:"title" yaml:"title"`
	Entries []Entry `json:"entries" yaml:"entries"`
}

// Entry is one day cell of a calendar table.
type Entry struct {
	Day       int     `json:"day" yaml:"day"`
	Weekday   string  `json:"weekday" yaml:"weekday"`
	AMDoctors Doctors `json:"am_doctors" yaml:"am_doctors"`
	PMDoctors Doctors `json:"pm_doctors" yaml:"pm_doctors"`
	RawText   string  `json:"raw_text" yaml:"raw_text"`
}

// Doctors is a duplicate-free collection of doctor identifiers. Membership
// is what matters; first-seen order is kept so output is stable.
type Doctors []string

// NewDoctors builds a Doctors set from names, dropping duplicates and
// empty strings. The result is never nil.
func NewDoctors(names ...string) Doctors {
	out := make(Doctors, 0, len(names))
	for _, name := range names {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Contains reports whether name is in the set.
func (d Doctors) Contains(name string) bool {
	return slices.Contains(d, name)
}

// Equal reports set equality, ignoring order.
func (d Doctors) Equal(other Doctors) bool {
	if len(d) != len(other) {
		return false
	}
	for _, name := range d {
		if !other.Contains(name) {
			return false
		}
	}
	return true
}
