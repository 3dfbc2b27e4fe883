// Package record reads the flat content-record stream produced by the
// external extraction pipeline. Each document directory contains a
// records.jsonl file with one typed record per line; record order is the
// sole source of document order.
package record

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Styles emitted by the extraction pipeline. Heading styles carry their
// depth as a suffix ("Heading 1", "Heading 2", ...).
const (
	StyleNormal    = "Normal"
	StyleBodyText  = "Body Text"
	StyleListPara  = "List Paragraph"
	StyleFootnote  = "Footnote"
	StyleImage     = "Image"
	StyleCaption   = "Caption"
	StyleTable     = "Table"
	StylePageStart = "Page_Start"
	StyleTitle     = "Title"

	headingPrefix = "Heading"
)

// ImagePayload is the structured payload of an Image record.
type ImagePayload struct {
	Path    string `json:"path"`
	AltText string `json:"alt_text,omitempty"`
}

// TablePayload is the structured payload of a Table record.
type TablePayload struct {
	Content   string `json:"content"`
	ImagePath string `json:"image_path,omitempty"`
}

// Record is one row of the content stream.
type Record struct {
	Style string        `json:"style"`
	Text  string        `json:"text,omitempty"`
	Image *ImagePayload `json:"image,omitempty"`
	Table *TablePayload `json:"table,omitempty"`
	Page  int           `json:"page,omitempty"` // Page_Start rows only
}

// HeadingLevel returns the heading depth and true for "Heading N" styles.
func (r Record) HeadingLevel() (int, bool) {
	rest, ok := strings.CutPrefix(r.Style, headingPrefix)
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || level < 1 {
		return 0, false
	}
	return level, true
}

// IsBody reports whether the record carries body-style text that merges
// into paragraphs.
func (r Record) IsBody() bool {
	switch r.Style {
	case StyleNormal, StyleBodyText, StyleListPara, StyleFootnote:
		return true
	}
	return false
}

// Load reads all records from a JSONL file, preserving order.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Table rows can carry whole CSV payloads on one line
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("parse record at line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}
