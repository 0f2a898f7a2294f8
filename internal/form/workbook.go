package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// subjectAliases maps report-card subject names, English or Indonesian, to
// grade fields.
var subjectAliases = map[string]FieldID{
	"semester 1":       S1,
	"semester 2":       S2,
	"semester 3":       S3,
	"semester 4":       S4,
	"semester 5":       S5,
	"matematika":       Math,
	"matematika wajib": Math,
	"mathematics":      Math,
	"bahasa indonesia": Language,
	"fisika":           Physics,
	"kimia":            Chemistry,
	"biologi":          Biology,
	"ekonomi":          Economics,
	"geografi":         Geography,
	"sejarah":          History,
}

// subjectField resolves a subject cell to a grade field.
func subjectField(name string) (FieldID, bool) {
	key := strings.ToLower(strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " "))
	if id, ok := subjectAliases[key]; ok {
		return id, true
	}
	id := FieldID(strings.ReplaceAll(key, " ", ""))
	if IsGrade(id) {
		return id, true
	}
	return "", false
}

// ImportWorkbook reads the first sheet of an .xlsx report card laid out as
// two columns, subject then grade, and sets the matching grade fields on f.
// Rows with an unrecognized subject or a blank grade are skipped. It returns
// the fields that were set.
func ImportWorkbook(r io.Reader, f *Form) ([]FieldID, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}

	var set []FieldID
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		id, ok := subjectField(row[0])
		grade := strings.TrimSpace(row[1])
		if !ok || grade == "" {
			continue
		}
		if err := f.Set(id, grade); err != nil {
			return set, err
		}
		set = append(set, id)
	}
	return set, nil
}
