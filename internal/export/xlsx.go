package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/site-research/internal/model"
)

// WriteResultsXLSX writes the flattened result table as a single-sheet
// workbook. Column layout matches WriteResultsCSV.
func WriteResultsXLSX(w io.Writer, results []model.CompanyResultSet, queries []string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add results sheet")
	}

	for _, rowData := range resultTable(results, queries) {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write results xlsx")
	}
	return nil
}
