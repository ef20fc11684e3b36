package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/UnlockedLabs/UnlockEdv2-sub001/internal/models"
)

// ParseRoster reads an enrollment roster spreadsheet. The first sheet is
// used; each row is "student name, student email", with an optional header
// row that is skipped when its first cell looks like a column title.
func ParseRoster(r io.Reader, classID uint) ([]models.Enrollment, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("roster has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	var out []models.Enrollment
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		name := strings.TrimSpace(row[0])
		if i == 0 && isHeaderCell(name) {
			continue
		}
		e := models.Enrollment{ClassID: classID, StudentName: name}
		if len(row) > 1 {
			e.StudentEmail = strings.TrimSpace(row[1])
		}
		out = append(out, e)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("roster sheet %s has no student rows", sheet)
	}
	return out, nil
}

func isHeaderCell(v string) bool {
	switch strings.ToLower(v) {
	case "name", "student", "student name", "full name":
		return true
	}
	return false
}
