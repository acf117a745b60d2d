package roster

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
)

// Block is a calendar heading paired with the table that follows it.
type Block struct {
	Title string
	Table *Node
}

// Parser extracts calendar documents from a Node tree.
type Parser struct {
	opts Options
	log  *slog.Logger
}

// NewParser creates a Parser. Zero-valued options fall back to
// DefaultOptions.
func NewParser(opts Options) *Parser {
	def := DefaultOptions()
	if opts.Marker == "" {
		opts.Marker = def.Marker
	}
	if len(opts.HeadingTags) == 0 {
		opts.HeadingTags = def.HeadingTags
	}
	if opts.DayClass == "" {
		opts.DayClass = def.DayClass
	}
	if opts.ImplicitShift == "" {
		opts.ImplicitShift = def.ImplicitShift
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Parser{opts: opts, log: log}
}

// Parse runs the whole pipeline: locate blocks, parse each table, and
// return one Document per block. An empty result means no calendars were
// found.
func (p *Parser) Parse(root *Node) []Document {
	var docs []Document
	for _, block := range p.Locate(root) {
		p.log.Debug("parsing calendar", "title", block.Title)
		docs = append(docs, Document{
			Title:   block.Title,
			Entries: p.ParseTable(block.Table),
		})
	}
	return docs
}

// Locate finds every heading whose text contains the marker and pairs it
// with the first table after it in document order. Headings with no
// following table are dropped.
func (p *Parser) Locate(root *Node) []Block {
	if root == nil {
		return nil
	}

	elements := root.Elements()
	var blocks []Block
	for i, el := range elements {
		if !p.isCalendarHeading(el) {
			continue
		}
		title := el.Text()

		var table *Node
		for _, next := range elements[i+1:] {
			if next.Kind() == KindTable {
				table = next
				break
			}
		}
		if table == nil {
			p.log.Debug("calendar heading has no table", "title", title)
			continue
		}

		p.log.Info("calendar found", "title", title)
		blocks = append(blocks, Block{Title: title, Table: table})
	}
	return blocks
}

func (p *Parser) isCalendarHeading(n *Node) bool {
	if !slices.Contains(p.opts.HeadingTags, n.Tag) {
		return false
	}
	return strings.Contains(n.Text(), p.opts.Marker)
}

// WeekdayHeaders returns the non-blank header labels of the table's first
// row, in column order.
func (p *Parser) WeekdayHeaders(table *Node) []string {
	row := table.Find(OfKind(KindRow))
	if row == nil {
		return nil
	}

	var headers []string
	for _, cell := range row.FindAll(OfKind(KindCell)) {
		if text := strings.TrimSpace(cell.Text()); text != "" {
			headers = append(headers, text)
		}
	}
	return headers
}

// ParseTable parses the data rows of a calendar table into entries sorted
// by day. Entries sharing a day keep their row/column discovery order.
func (p *Parser) ParseTable(table *Node) []Entry {
	headers := p.WeekdayHeaders(table)
	if len(headers) == 0 {
		p.log.Debug("calendar table has no header row")
		return []Entry{}
	}
	p.log.Debug("weekday headers", "headers", headers)

	rows := table.FindAll(OfKind(KindRow))
	entries := make([]Entry, 0, len(rows)*len(headers))
	for _, row := range rows[1:] {
		for col, cell := range row.FindAll(OfKind(KindCell)) {
			if col >= len(headers) {
				continue
			}
			if entry, ok := p.ParseCell(cell, headers[col]); ok {
				entries = append(entries, entry)
			}
		}
	}

	SortEntries(entries)
	return entries
}

// SortEntries orders entries by day, keeping the relative order of entries
// with equal days.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Compare(a.Day, b.Day)
	})
}
