package imports

import "strings"

type Delimiter string

const (
	DelimiterTab   Delimiter = "tsv"
	DelimiterComma Delimiter = "csv"
)

// RawTable is the tokenized upload: ordered rows of trimmed cells.
// Row 0 is the header.
type RawTable struct {
	Rows [][]string
}

func (t RawTable) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

func (t RawTable) DataRows() [][]string {
	if len(t.Rows) <= 1 {
		return nil
	}
	return t.Rows[1:]
}

// ParseDelimited tokenizes tab- or comma-separated text into rows of
// trimmed cells, dropping blank lines. It is total: malformed input is
// reinterpreted as literal data, never rejected.
func ParseDelimited(content string, delimiter Delimiter) RawTable {
	if delimiter == DelimiterComma {
		return parseCommaSeparated(content)
	}
	return parseTabSeparated(content)
}

func parseTabSeparated(content string) RawTable {
	var rows [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, "\t")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, cells)
	}
	return RawTable{Rows: rows}
}

// parseCommaSeparated scans character by character with an in-quotes
// flag so fields may contain commas, embedded newlines and escaped ("")
// quotes.
func parseCommaSeparated(content string) RawTable {
	var rows [][]string
	var row []string
	var cell strings.Builder
	inQuotes := false

	runes := []rune(content)
	flushCell := func() {
		row = append(row, strings.TrimSpace(cell.String()))
		cell.Reset()
	}
	flushRow := func() {
		flushCell()
		blank := true
		for _, c := range row {
			if c != "" {
				blank = false
				break
			}
		}
		if !blank {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			flushCell()
		case ch == '\n' && !inQuotes:
			flushRow()
		case ch == '\r' && !inQuotes:
			// swallowed; \n does the row break
		default:
			cell.WriteRune(ch)
		}
	}
	if cell.Len() > 0 || len(row) > 0 {
		flushRow()
	}
	return RawTable{Rows: rows}
}
