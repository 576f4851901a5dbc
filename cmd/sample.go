package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/export"
)

var sampleOutput string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample companies CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Create(sampleOutput)
		if err != nil {
			return eris.Wrap(err, "sample: create file")
		}
		defer f.Close() //nolint:errcheck

		if err := export.WriteSampleCSV(f); err != nil {
			return err
		}
		zap.L().Info("sample csv written", zap.String("path", sampleOutput))
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleOutput, "output", "sample_companies.csv", "output path")
	rootCmd.AddCommand(sampleCmd)
}
