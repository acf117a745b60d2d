package roster

import "strings"

const (
	markerAM     = "AM"
	markerPM     = "PM"
	markerAllDay = "終日"
)

// ShiftKind is the marker layout found in a cell's text.
type ShiftKind int

const (
	ShiftNoMarker ShiftKind = iota // bare names after the day number
	ShiftAMOnly                    // "AM" only
	ShiftPMOnly                    // "PM" only
	ShiftAMAndPM                   // both "AM" and "PM", in either order
	ShiftAllDay                    // "終日"
)

func (k ShiftKind) String() string {
	switch k {
	case ShiftNoMarker:
		return "no-marker"
	case ShiftAMOnly:
		return "am-only"
	case ShiftPMOnly:
		return "pm-only"
	case ShiftAMAndPM:
		return "am-and-pm"
	case ShiftAllDay:
		return "all-day"
	default:
		return "unknown"
	}
}

// ClassifyShift determines which markers text carries. 終日 takes priority
// over AM/PM.
func ClassifyShift(text string) ShiftKind {
	hasAM := strings.Contains(text, markerAM)
	hasPM := strings.Contains(text, markerPM)
	switch {
	case strings.Contains(text, markerAllDay):
		return ShiftAllDay
	case hasAM && hasPM:
		return ShiftAMAndPM
	case hasAM:
		return ShiftAMOnly
	case hasPM:
		return ShiftPMOnly
	default:
		return ShiftNoMarker
	}
}

// Segments holds the raw, untokenized text of each shift bucket.
type Segments struct {
	Kind ShiftKind
	AM   string
	PM   string
}

// SegmentShifts splits a cell's text into AM and PM text. day is the cell's
// day number as it should appear in text; it is used to find where bare
// names start and to drop the leading day from all-day text.
func SegmentShifts(text, day string, policy ImplicitShift) Segments {
	seg := Segments{Kind: ClassifyShift(text)}

	switch seg.Kind {
	case ShiftAllDay:
		body := text
		if day != "" {
			body = strings.TrimPrefix(body, day)
		}
		body = strings.TrimSpace(strings.ReplaceAll(body, markerAllDay, ""))
		seg.AM, seg.PM = body, body

	case ShiftAMAndPM:
		am := strings.Index(text, markerAM)
		pm := strings.Index(text, markerPM)
		if am < pm {
			seg.AM = text[am+len(markerAM) : pm]
			seg.PM = text[pm+len(markerPM):]
		} else {
			seg.PM = text[pm+len(markerPM) : am]
			seg.AM = text[am+len(markerAM):]
		}
		seg.AM, seg.PM = strings.TrimSpace(seg.AM), strings.TrimSpace(seg.PM)

	case ShiftAMOnly:
		seg.AM = strings.TrimSpace(afterFirst(text, markerAM))

	case ShiftPMOnly:
		seg.PM = strings.TrimSpace(afterFirst(text, markerPM))

	case ShiftNoMarker:
		if day == "" {
			break
		}
		implicit := strings.TrimSpace(afterFirst(text, day))
		seg.AM = implicit
		if policy != ImplicitAM {
			seg.PM = implicit
		}
	}

	return seg
}

// afterFirst returns the text after the first occurrence of sep, or "" if
// sep does not occur.
func afterFirst(s, sep string) string {
	_, after, found := strings.Cut(s, sep)
	if !found {
		return ""
	}
	return after
}
