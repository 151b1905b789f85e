// Package gradesheet extracts per-student semester results from the tables
// of a scanned university gradesheet.
package gradesheet

import (
	"regexp"
	"strconv"
	"strings"
)

// Table is one grid of text cells; the first row is the header
type Table [][]string

// Row is one validated gradesheet entry
type Row struct {
	RollNo  string  `json:"rollNo"`
	Name    string  `json:"name"`
	SGPA    float64 `json:"sgpa"`
	Backlog int     `json:"backlog"`
}

var (
	rollPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/-]{4,}$`)
	sgpaPattern = regexp.MustCompile(`^(10(?:\.0+)?|[0-9](?:\.\d{1,2})?)$`)
)

type columns struct {
	roll, sgpa, name, backlog int
}

// locateColumns finds the column indices by substring match on the
// lower-cased header. Missing optional columns are -1.
func locateColumns(header []string) (columns, bool) {
	cols := columns{roll: -1, sgpa: -1, name: -1, backlog: -1}
	for i, cell := range header {
		h := strings.ToLower(strings.TrimSpace(cell))
		if cols.roll < 0 && (strings.Contains(h, "roll") || strings.Contains(h, "enroll")) {
			cols.roll = i
		}
		if cols.sgpa < 0 && strings.Contains(h, "sgpa") {
			cols.sgpa = i
		}
		if cols.name < 0 && strings.Contains(h, "name") {
			cols.name = i
		}
		if cols.backlog < 0 && (strings.Contains(h, "backlog") || strings.Contains(h, "kt")) {
			cols.backlog = i
		}
	}
	return cols, cols.roll >= 0 && cols.sgpa >= 0
}

// NormalizeRollNo trims, upper-cases and removes spaces from a roll number
func NormalizeRollNo(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(raw)), " ", "")
}

// ValidRollNo reports whether a normalized roll number is acceptable
func ValidRollNo(roll string) bool {
	return rollPattern.MatchString(roll)
}

// ParseSGPA parses a 0-10 grade with at most two decimals
func ParseSGPA(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if !sgpaPattern.MatchString(raw) {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseTables returns the valid rows of every table in document order.
// Tables without a roll or SGPA header are ignored and rows failing
// validation are dropped.
func ParseTables(tables []Table) []Row {
	var out []Row
	for _, table := range tables {
		if len(table) < 2 {
			continue
		}
		cols, ok := locateColumns(table[0])
		if !ok {
			continue
		}

		for _, raw := range table[1:] {
			if len(raw) <= cols.sgpa {
				continue
			}
			roll := NormalizeRollNo(cell(raw, cols.roll))
			if roll == "" || !ValidRollNo(roll) {
				continue
			}
			sgpa, ok := ParseSGPA(cell(raw, cols.sgpa))
			if !ok {
				continue
			}

			backlog := 0
			if b := strings.TrimSpace(cell(raw, cols.backlog)); isDigits(b) {
				if n, err := strconv.Atoi(b); err == nil {
					backlog = n
				}
			}

			out = append(out, Row{
				RollNo:  roll,
				Name:    strings.TrimSpace(cell(raw, cols.name)),
				SGPA:    sgpa,
				Backlog: backlog,
			})
		}
	}
	return out
}
