// Package importer reads budget movements for a task's ledger from CSV
// spreadsheets. Each recognised row becomes one signed delta in minor
// currency units; running balances are computed by the ledger on append.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	enc "github.com/MrJamesThe3rd/smartcity/internal/encoding"
)

// Entry is one movement read from a file. Line is 1-based.
type Entry struct {
	Line  int
	Delta int64
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the file's charset, delimiter and column layout, then
// returns its movements in file order. A file with a recognised header but
// no movements yields an empty slice.
func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	utf8r, charset, err := enc.ToUTF8(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := readRecords(reader)
	if err != nil {
		return nil, err
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("no ledger columns found: expected one of %s", strings.Join(knownColumns(), ", "))
	}

	slog.Debug("parsing ledger file", "profile", profile.Name, "charset", charset, "rows", len(rows)-headerIdx-1)

	return parseRows(profile, cols, rows[headerIdx+1:])
}

// record is a CSV row with the file line it started on. The csv reader
// skips blank lines, so row index and line number differ.
type record struct {
	line  int
	cells []string
}

func readRecords(reader *csv.Reader) ([]record, error) {
	var rows []record

	for {
		cells, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)
		rows = append(rows, record{line: line, cells: cells})
	}
}

// sniffDelimiter picks ';' or ',' by whichever is more frequent on the
// first non-blank line.
func sniffDelimiter(data []byte) rune {
	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
			return ';'
		}

		return ','
	}

	return ','
}

// colIndex maps normalised column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows []record) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row.cells {
			if name := normalise(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func parseRows(p *Profile, cols colIndex, rows []record) ([]Entry, error) {
	entries := []Entry{}

	for _, row := range rows {
		delta, ok, err := p.delta(cols, row.cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row.line, err)
		}

		if !ok {
			continue
		}

		entries = append(entries, Entry{Line: row.line, Delta: delta})
	}

	return entries, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
