// ABOUTME: PDF line extraction with font size and position metadata
// ABOUTME: Reassembles text runs into lines feeding the section detector
package chunker

import (
	"fmt"
	"math"
	"sort"

	"github.com/ledongthuc/pdf"

	"github.com/harbourview/oceanrag/internal/models"
)

// lineBucket accumulates the text runs sharing one baseline on a page.
type lineBucket struct {
	page  int
	y     float64
	runs  []pdf.Text
	sizes float64
}

// ExtractLines reads every page of a PDF and reassembles its text runs
// into lines with average font size and top-left origin. Runs are grouped
// by baseline (Y rounded to half a point) and joined left to right,
// inserting spaces where the horizontal gap between runs exceeds a
// fraction of the font size.
func ExtractLines(path string) ([]models.Line, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrParse, path, err)
	}
	defer f.Close()

	var lines []models.Line
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, extractPageLines(page, pageNum)...)
	}
	return lines, nil
}

func extractPageLines(page pdf.Page, pageNum int) []models.Line {
	content := page.Content()
	buckets := make(map[float64]*lineBucket)
	var order []float64

	for _, run := range content.Text {
		if run.S == "" {
			continue
		}
		key := math.Round(run.Y*2) / 2
		bucket, ok := buckets[key]
		if !ok {
			bucket = &lineBucket{page: pageNum, y: run.Y}
			buckets[key] = bucket
			order = append(order, key)
		}
		bucket.runs = append(bucket.runs, run)
		bucket.sizes += run.FontSize
	}

	// PDF coordinates grow upward, so higher Y means nearer the top of
	// the page. Negate so ascending Line.Y is reading order.
	sort.Sort(sort.Reverse(sort.Float64Slice(order)))

	var lines []models.Line
	for _, key := range order {
		if line, ok := buckets[key].assemble(); ok {
			lines = append(lines, line)
		}
	}
	return lines
}

// assemble joins a bucket's runs left to right into one Line.
func (b *lineBucket) assemble() (models.Line, bool) {
	sort.SliceStable(b.runs, func(i, j int) bool {
		return b.runs[i].X < b.runs[j].X
	})

	avgSize := b.sizes / float64(len(b.runs))

	var text string
	var prevEnd float64
	for i, run := range b.runs {
		if i > 0 && run.X-prevEnd > gapThreshold(avgSize) {
			text += " "
		}
		text += run.S
		prevEnd = run.X + run.W
	}
	if text == "" {
		return models.Line{}, false
	}

	return models.Line{
		Text:     text,
		Page:     b.page,
		FontSize: avgSize,
		X:        b.runs[0].X,
		Y:        -b.y,
	}, true
}

// gapThreshold is the horizontal distance between runs that reads as a
// word break. Tuned against single-column report PDFs.
func gapThreshold(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1
	}
	return fontSize * 0.25
}

// ChunkPDF runs the full PDF ingestion path: extract lines, order them,
// detect sections by font size, and split into chunks.
func ChunkPDF(path, sourceID string, sp Splitter) ([]models.Chunk, error) {
	lines, err := ExtractLines(path)
	if err != nil {
		return nil, err
	}
	sections := GroupSections(SortLines(lines), sourceID, sourceID)
	return ChunkSections(sections, sp), nil
}
