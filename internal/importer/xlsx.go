package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the first sheet of a workbook; row 1 is the header.
func ParseXLSX(r io.Reader) (Parsed, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Parsed{}, ErrEmpty
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Parsed{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	records = trimTrailingBlank(records)
	if len(records) < 2 {
		return Parsed{}, ErrEmpty
	}
	lines := make([]int, len(records)-1)
	for i := range lines {
		lines[i] = i + 2
	}
	return normalize(records[1:], lines, MatchHeaders(records[0])), nil
}
