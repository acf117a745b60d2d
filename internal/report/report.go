// Package report renders calendar documents as the plain-text duty report
// that is saved to disk and published to Notion.
package report

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/dutyroster/pkg/roster"
)

const (
	titlePrefix  = "🗓️ "
	nameSep      = "、"
	notRecorded  = "記載なし"
	lineSep      = "\n"
	previewLines = 20
)

// Lines renders documents as report lines. Blank lines separate the title
// from the entries and each entry from the next.
func Lines(docs []roster.Document) []string {
	var lines []string
	for _, doc := range docs {
		lines = append(lines, titlePrefix+doc.Title, "")
		for _, e := range doc.Entries {
			lines = append(lines,
				fmt.Sprintf("%d日（%s）", e.Day, e.Weekday),
				"AM："+names(e.AMDoctors),
				"PM："+names(e.PMDoctors),
				"",
			)
		}
	}
	return lines
}

// Text renders documents as a single report string.
func Text(docs []roster.Document) string {
	return strings.Join(Lines(docs), lineSep)
}

// Preview returns the first lines of a report, with a trailing "..." line
// when it was cut short.
func Preview(text string) string {
	lines := strings.Split(text, lineSep)
	if len(lines) <= previewLines {
		return text
	}
	return strings.Join(lines[:previewLines], lineSep) + lineSep + "..."
}

func names(d roster.Doctors) string {
	if len(d) == 0 {
		return notRecorded
	}
	return strings.Join(d, nameSep)
}
