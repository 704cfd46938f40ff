package ingest

import (
	"github.com/xuri/excelize/v2"
)

// XLSXReader reads the first worksheet of a workbook; the first row is the header.
type XLSXReader struct{}

func (XLSXReader) Read(path string) (*Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return &Frame{}, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	var records [][]string
	for _, r := range rows {
		if !blankRow(r) {
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return &Frame{}, nil
	}
	return frameFromRecords(records[0], records[1:]), nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
