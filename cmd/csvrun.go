package main

import (
	"os"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/export"
	"github.com/sells-group/site-research/internal/model"
)

var (
	csvrunCSV         string
	csvrunQueries     []string
	csvrunLimit       int
	csvrunConcurrency int
	csvrunOutput      string
	csvrunJSON        string
	csvrunXLSX        string
)

var csvrunCmd = &cobra.Command{
	Use:   "csvrun",
	Short: "Research a list of companies from a CSV file",
	Long: `Reads companies from a CSV (company_name, domain columns) and runs every
query against every company. One structure probe per company is shared
across its queries.

Examples:
  # Two questions across a company list
  site-research csvrun --csv companies.csv \
    --query "Does the company have SOC2 certification?" \
    --query "What industries does the company serve?" \
    --output results.csv

  # Also keep the full-detail JSON and an Excel copy
  site-research csvrun --csv companies.csv --query "..." \
    --output results.csv --json results.json --xlsx results.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		agent, err := initAgent(true)
		if err != nil {
			return err
		}

		f, err := os.Open(csvrunCSV)
		if err != nil {
			return eris.Wrap(err, "csvrun: open csv")
		}
		companies, err := export.ReadCompaniesCSV(f)
		_ = f.Close()
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			return eris.New("csvrun: no companies with a domain in csv")
		}
		if csvrunLimit > 0 && csvrunLimit < len(companies) {
			companies = companies[:csvrunLimit]
		}

		concurrency := csvrunConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrentCompanies
		}

		runID := uuid.NewString()
		log := zap.L().With(zap.String("run_id", runID))
		log.Info("csvrun: batch starting",
			zap.Int("companies", len(companies)),
			zap.Int("queries", len(csvrunQueries)),
			zap.Int("concurrency", concurrency),
		)

		results := agent.BatchResearch(cmd.Context(), companies, csvrunQueries, concurrency)

		succeeded, failed := countOutcomes(results)
		log.Info("csvrun: batch complete",
			zap.Int("succeeded", succeeded),
			zap.Int("failed", failed),
		)

		if err := writeBatchOutputs(results, csvrunQueries); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	csvrunCmd.Flags().StringVar(&csvrunCSV, "csv", "", "path to input CSV (required)")
	csvrunCmd.Flags().StringArrayVar(&csvrunQueries, "query", nil, "research question, repeatable (required)")
	csvrunCmd.Flags().IntVar(&csvrunLimit, "limit", 0, "max companies to process (0 = all)")
	csvrunCmd.Flags().IntVar(&csvrunConcurrency, "concurrency", 0, "max companies in flight (default from config)")
	csvrunCmd.Flags().StringVar(&csvrunOutput, "output", "", "write results CSV to file (default: stdout)")
	csvrunCmd.Flags().StringVar(&csvrunJSON, "json", "", "also write full-detail JSON to file")
	csvrunCmd.Flags().StringVar(&csvrunXLSX, "xlsx", "", "also write an XLSX workbook to file")
	_ = csvrunCmd.MarkFlagRequired("csv")
	_ = csvrunCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(csvrunCmd)
}

// countOutcomes tallies per-query successes and failures across the batch.
func countOutcomes(results []model.CompanyResultSet) (succeeded, failed int) {
	for _, set := range results {
		for _, res := range set.Attributes {
			if res.Success {
				succeeded++
			} else {
				failed++
			}
		}
	}
	return succeeded, failed
}

// writeBatchOutputs writes the CSV table plus any requested extra formats.
func writeBatchOutputs(results []model.CompanyResultSet, queries []string) error {
	if csvrunOutput != "" {
		if err := writeToFile(csvrunOutput, func(f *os.File) error {
			return export.WriteResultsCSV(f, results, queries)
		}); err != nil {
			return err
		}
		zap.L().Info("csvrun: results written", zap.String("path", csvrunOutput))
	} else if err := export.WriteResultsCSV(os.Stdout, results, queries); err != nil {
		return err
	}

	if csvrunJSON != "" {
		if err := writeToFile(csvrunJSON, func(f *os.File) error {
			return export.WriteResultsJSON(f, results)
		}); err != nil {
			return err
		}
		zap.L().Info("csvrun: json written", zap.String("path", csvrunJSON))
	}

	if csvrunXLSX != "" {
		if err := writeToFile(csvrunXLSX, func(f *os.File) error {
			return export.WriteResultsXLSX(f, results, queries)
		}); err != nil {
			return err
		}
		zap.L().Info("csvrun: xlsx written", zap.String("path", csvrunXLSX))
	}

	return nil
}

func writeToFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "csvrun: create output file")
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrap(f.Close(), "csvrun: close output")
}
