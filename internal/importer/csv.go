package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/betoojeda/tienda-facil/internal/normalization"
)

// ParseCSV reads a CSV export. A first line mentioning "codigo" or "code"
// is a header and columns are matched by alias; otherwise columns are
// positional (code, name, cost, price, wholesale, stock, min, category).
func ParseCSV(r io.Reader) (Parsed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	// encoding/csv skips blank lines, so keep each record's source line
	var (
		records [][]string
		lines   []int
	)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Parsed{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}
	records = trimTrailingBlank(records)
	if len(records) == 0 {
		return Parsed{}, ErrEmpty
	}
	lines = lines[:len(records)]

	if isHeader(records[0]) {
		if len(records) == 1 {
			return Parsed{}, ErrEmpty
		}
		return normalize(records[1:], lines[1:], MatchHeaders(records[0])), nil
	}
	return normalize(records, lines, positionalColumns()), nil
}

func isHeader(first []string) bool {
	key := normalization.HeaderKey(strings.Join(first, " "))
	return strings.Contains(key, "codigo") || strings.Contains(key, "code")
}

// detectDelimiter picks ';' for exports from Spanish-locale spreadsheets.
func detectDelimiter(raw []byte) rune {
	first, _ := bufio.NewReader(bytes.NewReader(raw)).ReadString('\n')
	if strings.Count(first, ";") > strings.Count(first, ",") {
		return ';'
	}
	return ','
}

func trimTrailingBlank(records [][]string) [][]string {
	for len(records) > 0 && blank(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	return records
}
