package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	ErrEmpty       = errors.New("file appears to be empty")
	ErrUnreadable  = errors.New("could not read spreadsheet")
	ErrUnsupported = errors.New("unsupported file type, use .csv or .xlsx")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the parser from the file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xls", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupported, filename)
}

// Parse dispatches on the file extension.
func Parse(filename string, r io.Reader) (Parsed, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return Parsed{}, err
	}
	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return ParseCSV(r)
	}
}
