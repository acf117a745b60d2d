package notion

import (
	"strings"
	"time"
	_ "time/tzdata" // Asia/Tokyo must resolve on hosts without zoneinfo
)

// MaxBatch is the most blocks sent in one append call. Notion's hard
// limit is 100.
const MaxBatch = 95

const stampLayout = "2006年01月02日 15:04 更新"

var jst = mustLoadJST()

func mustLoadJST() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// JST returns the Asia/Tokyo location used for timestamps and schedules.
func JST() *time.Location {
	return jst
}

// Stamp is the "updated at" line placed at the top of the page.
func Stamp(now time.Time) string {
	return "🔄 " + now.In(jst).Format(stampLayout)
}

// Compose turns report lines into paragraphs, headed by the update stamp.
// Lines that are blank after trimming become empty paragraphs.
func Compose(lines []string, now time.Time) []Paragraph {
	out := make([]Paragraph, 0, len(lines)+1)
	out = append(out, Paragraph{Text: Stamp(now)})
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			out = append(out, Paragraph{})
			continue
		}
		out = append(out, Paragraph{Text: line})
	}
	return out
}

// Batches splits paragraphs into consecutive chunks of at most size.
func Batches(paragraphs []Paragraph, size int) [][]Paragraph {
	if size <= 0 {
		size = MaxBatch
	}
	var out [][]Paragraph
	for start := 0; start < len(paragraphs); start += size {
		end := min(start+size, len(paragraphs))
		out = append(out, paragraphs[start:end])
	}
	return out
}
