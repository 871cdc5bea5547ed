// Package workbook reads raw records from and writes result tables to
// xlsx workbooks. The workbook itself is a pass-through sink: one sheet
// per company, replaced wholesale on re-runs.
package workbook

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadscout/emailscout/internal/model"
)

// ReadOptions configures record loading.
type ReadOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of header rows to skip
}

// ReadRecords loads (title, link) pairs from a workbook sheet. The first
// column is the title, the second the link; rows with an empty title are
// ignored.
func ReadRecords(path string, opts ReadOptions) ([]model.RawRecord, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}
		cells := rowToStrings(row)
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		rec := model.RawRecord{Title: cells[0]}
		if len(cells) > 1 {
			rec.Link = cells[1]
		}
		records = append(records, rec)
	}

	return records, nil
}

// WriteResults writes result rows to the named sheet of the workbook at
// path, creating the file if absent and replacing the sheet if present.
// Column order matches model.ResultColumns.
func WriteResults(path, sheetName string, rows []model.ResultRow) error {
	f, err := openOrCreate(path)
	if err != nil {
		return err
	}

	removeSheet(f, sheetName)

	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "workbook: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, col := range model.ResultColumns {
		header.AddCell().SetString(col)
	}

	for _, row := range rows {
		r := sheet.AddRow()
		for _, val := range row.Columns() {
			r.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "workbook: save file")
	}
	return nil
}

func openOrCreate(path string) (*xlsx.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return xlsx.NewFile(), nil
	}
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "workbook: open file")
	}
	return f, nil
}

// removeSheet drops a sheet from both the ordered list and the name index
// so a re-run replaces the company's sheet instead of duplicating it.
func removeSheet(f *xlsx.File, name string) {
	if _, ok := f.Sheet[name]; !ok {
		return
	}
	delete(f.Sheet, name)
	for i, s := range f.Sheets {
		if s.Name == name {
			f.Sheets = append(f.Sheets[:i], f.Sheets[i+1:]...)
			break
		}
	}
}

func getSheet(f *xlsx.File, opts ReadOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("workbook: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("workbook: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
