// Package export handles tabular I/O for batch research: company lists in,
// result tables out (CSV, XLSX, and a full-detail JSON export).
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-research/internal/model"
)

// queryColumnChars caps query text used as a column name.
const queryColumnChars = 50

// ReadCompaniesCSV parses an input table with company_name (or name) and
// domain columns. Rows without a domain are skipped.
func ReadCompaniesCSV(r io.Reader) ([]model.Company, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv header")
	}

	nameIdx, domainIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "company_name", "name":
			if nameIdx < 0 {
				nameIdx = i
			}
		case "domain":
			domainIdx = i
		}
	}
	if domainIdx < 0 {
		return nil, eris.New("export: input csv needs a domain column")
	}

	var companies []model.Company
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "export: read csv row")
		}

		var c model.Company
		if domainIdx < len(record) {
			c.Domain = strings.TrimSpace(record[domainIdx])
		}
		if c.Domain == "" {
			continue
		}
		if nameIdx >= 0 && nameIdx < len(record) {
			c.Name = strings.TrimSpace(record[nameIdx])
		}
		companies = append(companies, c)
	}

	return companies, nil
}

// WriteSampleCSV writes a small example input table.
func WriteSampleCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	rows := [][]string{
		{"company_name", "domain"},
		{"Anthropic", "anthropic.com"},
		{"OpenAI", "openai.com"},
		{"Stripe", "stripe.com"},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "export: write sample row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "export: flush sample csv")
}

// resultTable flattens result sets into a header row plus one row per
// company: company_name, domain, then per query an answer column (query
// text truncated for the column name) and a _confidence column.
func resultTable(results []model.CompanyResultSet, queries []string) [][]string {
	header := []string{"company_name", "domain"}
	for _, q := range queries {
		col := truncateQuery(q)
		header = append(header, col, col+"_confidence")
	}

	rows := [][]string{header}
	for _, set := range results {
		row := []string{set.CompanyName, set.Domain}
		for _, q := range queries {
			answer, confidence := resultCells(set.Attributes[q])
			row = append(row, answer, confidence)
		}
		rows = append(rows, row)
	}
	return rows
}

func truncateQuery(q string) string {
	if len(q) > queryColumnChars {
		return q[:queryColumnChars]
	}
	return q
}

// resultCells renders one result into its answer and confidence cells.
func resultCells(res model.ResearchResult) (string, string) {
	if !res.Success {
		return "ERROR: " + res.Error, ""
	}
	if res.Result == nil {
		return "", ""
	}
	if res.Result.RawAnswer != "" {
		return res.Result.RawAnswer, res.Result.Confidence
	}
	return answerString(res.Result.Answer), res.Result.Confidence
}

func answerString(answer any) string {
	switch v := answer.(type) {
	case nil:
		return "N/A"
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// WriteResultsCSV writes the flattened result table as CSV.
func WriteResultsCSV(w io.Writer, results []model.CompanyResultSet, queries []string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(resultTable(results, queries)); err != nil {
		return eris.Wrap(err, "export: write results csv")
	}
	return nil
}

// WriteResultsJSON writes the full-detail results, including evidence,
// section provenance, and per-query errors the table omits.
func WriteResultsJSON(w io.Writer, results []model.CompanyResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return eris.Wrap(err, "export: write results json")
	}
	return nil
}
