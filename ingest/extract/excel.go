package extract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shakinm/xlsReader/xls/structure"
	"github.com/xuri/excelize/v2"
)

// extractXLSX renders each sheet as tab-separated rows, one segment per
// sheet so sheets can be tagged and chunked independently.
func (e *Extractor) extractXLSX(_ context.Context, path string, data []byte) ([]Segment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	var segments []Segment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		text := sheetText(sheet, rows)
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, Segment{Text: text, Source: path, Kind: "xlsx"})
	}
	return segments, nil
}

// extractXLS handles the legacy binary workbook format.
func (e *Extractor) extractXLS(_ context.Context, path string, data []byte) ([]Segment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	wb, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}

	var segments []Segment
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}
		sheetRows := sheet.GetRows()
		if len(sheetRows) == 0 {
			continue
		}
		rows := make([][]string, 0, len(sheetRows))
		for _, row := range sheetRows {
			rows = append(rows, xlsRowValues(row.GetCols()))
		}
		text := sheetText(sheet.GetName(), rows)
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, Segment{Text: text, Source: path, Kind: "xls"})
	}
	return segments, nil
}

func sheetText(sheet string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("Sheet: ")
	b.WriteString(sheet)
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

func xlsRowValues(cols []structure.CellData) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		val := col.GetString()
		if val == "" {
			if num := col.GetFloat64(); num != 0 {
				val = strconv.FormatFloat(num, 'f', -1, 64)
			} else if in := col.GetInt64(); in != 0 {
				val = strconv.FormatInt(in, 10)
			}
		}
		out = append(out, val)
	}
	return out
}
