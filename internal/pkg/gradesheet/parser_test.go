package gradesheet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTables_HeaderAndRowNormalization(t *testing.T) {
	tables := []Table{{
		{"Roll No", "Name", "SGPA", "Backlogs"},
		{"cs21-001", "  ", "8.00", "2"},
	}}

	rows := ParseTables(tables)

	require.Len(t, rows, 1)
	assert.Equal(t, Row{RollNo: "CS21-001", Name: "", SGPA: 8.0, Backlog: 2}, rows[0])
}

func TestParseTables_SGPAValidation(t *testing.T) {
	cases := map[string]bool{
		"10":    true,
		"10.00": true,
		"9.5":   true,
		"0":     true,
		"7.25":  true,
		"10.5":  false,
		"10.01": false,
		"7.255": false,
		"11":    false,
		"-1":    false,
		"abc":   false,
		"":      false,
		" 8.1 ": true,
	}
	for raw, ok := range cases {
		_, got := ParseSGPA(raw)
		assert.Equal(t, ok, got, "sgpa %q", raw)
	}
}

func TestParseTables_RollValidation(t *testing.T) {
	assert.True(t, ValidRollNo(NormalizeRollNo(" cs 2021 001 ")))
	assert.True(t, ValidRollNo("21/CS/04"))
	assert.False(t, ValidRollNo("CS21"))
	assert.False(t, ValidRollNo("-CS2021"))
	assert.False(t, ValidRollNo("CS_2021"))
	assert.Equal(t, "CS2021001", NormalizeRollNo(" cs 2021 001 "))
}

func TestParseTables_DropsInvalidRowsSilently(t *testing.T) {
	tables := []Table{{
		{"Enrollment", "Student Name", "SGPA", "KT"},
		{"CS2021001", "Asha", "8.5", "0"},
		{"CS2021002", "Bala", "10.5", "0"},
		{"CS2", "Chitra", "7.0", "1"},
		{"CS2021004", "Dev"},
		{"CS2021005", "Esha", "9", "two"},
		{"CS2021006", "Farah", "6.75"},
	}}

	rows := ParseTables(tables)

	require.Len(t, rows, 3)
	assert.Equal(t, "CS2021001", rows[0].RollNo)
	assert.Equal(t, "Asha", rows[0].Name)
	assert.Equal(t, 0, rows[1].Backlog, "non-numeric backlog defaults to zero")
	assert.Equal(t, 9.0, rows[1].SGPA)
	assert.Equal(t, "CS2021006", rows[2].RollNo)
	assert.Equal(t, 0, rows[2].Backlog, "missing backlog cell defaults to zero")
}

func TestParseTables_SkipsTablesWithoutRequiredColumns(t *testing.T) {
	tables := []Table{
		{{"Name", "SGPA"}, {"Asha", "8.0"}},
		{{"Roll No", "CGPA"}, {"CS2021001", "8.0"}},
		{{"Roll No", "SGPA"}},
		{{"Roll", "SGPA"}, {"IT2021009", "7.1"}},
	}

	rows := ParseTables(tables)

	require.Len(t, rows, 1)
	assert.Equal(t, Row{RollNo: "IT2021009", SGPA: 7.1}, rows[0])
}

func TestParseTables_DocumentOrderAcrossTables(t *testing.T) {
	tables := []Table{
		{{"Roll", "SGPA"}, {"B2021002", "7"}, {"A2021001", "8"}},
		{{"Roll", "SGPA"}, {"C2021003", "9"}},
	}

	rows := ParseTables(tables)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B2021002", "A2021001", "C2021003"}, []string{rows[0].RollNo, rows[1].RollNo, rows[2].RollNo})
}

func TestSplitLayoutText(t *testing.T) {
	text := "University Results\n\n" +
		"Roll No      Name            SGPA    Backlogs\n" +
		"CS2021001    Asha Rao        8.50    0\n" +
		"CS2021002    Bala Kumar      7.25    1\n" +
		"\f" +
		"Roll No      Name            SGPA\n" +
		"CS2021003    Chitra          9.00\n"

	tables := SplitLayoutText(text)

	require.Len(t, tables, 3)
	assert.Equal(t, Table{{"University Results"}}, tables[0])
	assert.Equal(t, []string{"CS2021001", "Asha Rao", "8.50", "0"}, tables[1][1])
	assert.Equal(t, []string{"Roll No", "Name", "SGPA"}, tables[2][0])

	rows := ParseTables(tables)
	require.Len(t, rows, 3)
	assert.Equal(t, "Bala Kumar", rows[1].Name)
	assert.Equal(t, 1, rows[1].Backlog)
}

func TestStaticSource(t *testing.T) {
	src := StaticSource{{{"Roll", "SGPA"}, {"CS2021001", "8"}}}
	tables, err := src.Tables(context.Background(), "ignored.pdf")
	require.NoError(t, err)
	assert.Len(t, ParseTables(tables), 1)
}
