package importer

import (
	"fmt"
	"strings"

	"github.com/betoojeda/tienda-facil/internal/domain/catalog"
)

// Row is one normalized spreadsheet line. Line is the 1-based row number in
// the source file, header included.
type Row struct {
	Line           int
	Code           string
	Name           string
	CostPrice      float64
	Price          float64
	WholesalePrice float64
	Stock          int
	MinStock       int
	Category       string
}

// Apply copies the row onto p, leaving id, store and image alone.
func (r Row) Apply(p *catalog.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.CostPrice = r.CostPrice
	p.Price = r.Price
	p.WholesalePrice = r.WholesalePrice
	p.Stock = r.Stock
	p.MinStock = r.MinStock
	p.Category = r.Category
}

type Parsed struct {
	Rows   []Row
	Errors []string
}

func RowError(line int, format string, args ...interface{}) string {
	return fmt.Sprintf("Row %d: %s", line, fmt.Sprintf(format, args...))
}

// normalize turns raw records into rows; lines[i] is the source row of records[i].
func normalize(records [][]string, lines []int, cols Columns) Parsed {
	var out Parsed
	for i, rec := range records {
		line := lines[i]
		if blank(rec) {
			continue
		}
		code := cols.cell(rec, FieldCode)
		name := cols.cell(rec, FieldName)
		switch {
		case code == "":
			out.Errors = append(out.Errors, RowError(line, "skipped, missing code"))
			continue
		case name == "":
			out.Errors = append(out.Errors, RowError(line, "skipped, missing name"))
			continue
		}
		category := cols.cell(rec, FieldCategory)
		if category == "" {
			category = catalog.DefaultCategory
		}
		out.Rows = append(out.Rows, Row{
			Line:           line,
			Code:           code,
			Name:           name,
			CostPrice:      ParseNumber(cols.cell(rec, FieldCostPrice)),
			Price:          ParseNumber(cols.cell(rec, FieldPrice)),
			WholesalePrice: ParseNumber(cols.cell(rec, FieldWholesalePrice)),
			Stock:          ParseCount(cols.cell(rec, FieldStock)),
			MinStock:       ParseCount(cols.cell(rec, FieldMinStock)),
			Category:       category,
		})
	}
	return out
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
