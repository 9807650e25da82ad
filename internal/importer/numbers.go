package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
	numericPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// ParseNumber keeps digits, '.' and '-' and reads the leading number,
// so "$1,250.50" is 1250.5 and "N/A" is 0.
func ParseNumber(raw string) float64 {
	cleaned := nonNumeric.ReplaceAllString(raw, "")
	m := numericPrefix.FindString(cleaned)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseCount is ParseNumber floored to an int.
func ParseCount(raw string) int {
	return int(math.Floor(ParseNumber(raw)))
}

func trimCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}
