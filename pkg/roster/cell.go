package roster

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// parseDay reads the day marker inside cell. It returns the day number and
// the marker's own text, or ok=false when the marker is missing or is not
// a non-negative integer. Full-width digits are accepted.
func parseDay(cell *Node, dayClass string) (day int, text string, ok bool) {
	marker := cell.Find(func(n *Node) bool { return n.HasClass(dayClass) })
	if marker == nil {
		return 0, "", false
	}

	text = strings.TrimSpace(marker.Text())
	digits := width.Narrow.String(text)
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, "", false
	}

	day, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", false
	}
	return day, text, true
}

// dayToken returns the substring of raw that spells the day number, or ""
// if it cannot be found.
func dayToken(raw string, day int, markerText string) string {
	if markerText != "" && strings.HasPrefix(raw, markerText) {
		return markerText
	}
	if dec := strconv.Itoa(day); strings.Contains(raw, dec) {
		return dec
	}
	if markerText != "" && strings.Contains(raw, markerText) {
		return markerText
	}
	return ""
}

// ParseCell parses a single data cell. weekday is the label of the cell's
// column. ok is false when the cell has no usable day marker.
func (p *Parser) ParseCell(cell *Node, weekday string) (Entry, bool) {
	day, markerText, ok := parseDay(cell, p.opts.DayClass)
	if !ok {
		return Entry{}, false
	}

	raw := cell.Text()
	seg := SegmentShifts(raw, dayToken(raw, day, markerText), p.opts.ImplicitShift)

	entry := Entry{
		Day:       day,
		Weekday:   weekday,
		AMDoctors: NewDoctors(TokenizeDoctors(seg.AM)...),
		PMDoctors: NewDoctors(TokenizeDoctors(seg.PM)...),
		RawText:   raw,
	}

	p.log.Debug("cell parsed",
		"day", day,
		"weekday", weekday,
		"kind", seg.Kind.String(),
		"am", len(entry.AMDoctors),
		"pm", len(entry.PMDoctors))

	return entry, true
}
