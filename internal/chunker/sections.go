// ABOUTME: Font-size based section detection over extracted document lines
// ABOUTME: Pure functions from lines-with-metadata to heading-tagged sections
package chunker

import (
	"math"
	"sort"

	"github.com/harbourview/oceanrag/internal/models"
)

// SortLines orders lines into reading order: page, then vertical position,
// then horizontal position. This assumes a single-column top-to-bottom
// layout; multi-column documents will interleave their columns.
func SortLines(lines []models.Line) []models.Line {
	sorted := make([]models.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})
	return sorted
}

// BodyFontSize returns the modal font size across all lines, rounded to
// one decimal place. The most frequent size is assumed to be ordinary
// paragraph text; anything larger is treated as a heading. Ties resolve
// toward the smaller size so the larger run still reads as headings.
// Returns 0 for empty input.
func BodyFontSize(lines []models.Line) float64 {
	if len(lines) == 0 {
		return 0
	}
	counts := make(map[float64]int)
	for _, line := range lines {
		counts[roundFontSize(line.FontSize)]++
	}
	var body float64
	best := -1
	for size, n := range counts {
		if n > best || (n == best && size < body) {
			body = size
			best = n
		}
	}
	return body
}

// GroupSections walks lines in reading order and groups them into
// sections. A line whose font size exceeds the body size starts a new
// section and becomes its heading; every other line accumulates as
// paragraph text under the current section. Text appearing before the
// first heading forms a section with an empty heading. Empty input
// produces no sections.
func GroupSections(lines []models.Line, sourceID, source string) []models.Section {
	if len(lines) == 0 {
		return nil
	}
	body := BodyFontSize(lines)

	var sections []models.Section
	current := models.Section{SourceID: sourceID, Source: source}
	open := false

	flush := func() {
		if open && (current.HasHeading() || len(current.Paragraphs) > 0) {
			sections = append(sections, current)
		}
		current = models.Section{SourceID: sourceID, Source: source}
		open = false
	}

	for _, line := range lines {
		if line.Text == "" {
			continue
		}
		if roundFontSize(line.FontSize) > body {
			flush()
			current.Heading = line.Text
			open = true
		} else {
			current.Paragraphs = append(current.Paragraphs, line.Text)
			open = true
		}
		current.Pages = appendPage(current.Pages, line.Page)
	}
	flush()

	return sections
}

func roundFontSize(size float64) float64 {
	return math.Round(size*10) / 10
}

// appendPage keeps the page list ordered and free of duplicates. Lines
// arrive in reading order, so checking the tail is enough.
func appendPage(pages []int, page int) []int {
	if n := len(pages); n > 0 && pages[n-1] == page {
		return pages
	}
	return append(pages, page)
}
