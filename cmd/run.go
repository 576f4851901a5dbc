package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
)

var (
	runDomain   string
	runQuery    string
	runFullPage bool
	runFormat   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research a single question about one company website",
	Long: `Runs one (domain, query) research invocation and prints the result JSON.

Examples:
  # Targeted pipeline (probe, classify, fetch, extract)
  site-research run --domain stripe.com --query "Does the company have SOC2 certification?"

  # Full-page mode: skip targeting, analyze the whole page
  site-research run --domain stripe.com --query "List the main products" --full --format list`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		agent, err := initAgent(false)
		if err != nil {
			return err
		}

		var result model.ResearchResult
		if runFullPage {
			result = agent.ResearchFullPage(cmd.Context(), runDomain, runQuery, runFormat)
		} else {
			result = agent.Research(cmd.Context(), runDomain, runQuery)
		}

		zap.L().Info("research complete",
			zap.String("domain", runDomain),
			zap.String("query", runQuery),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	runCmd.Flags().StringVar(&runDomain, "domain", "", "company website domain (required)")
	runCmd.Flags().StringVar(&runQuery, "query", "", "research question (required)")
	runCmd.Flags().BoolVar(&runFullPage, "full", false, "analyze the full page instead of a targeted section")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "answer format for --full: text, boolean, list, structured")
	_ = runCmd.MarkFlagRequired("domain")
	_ = runCmd.MarkFlagRequired("query")
	rootCmd.AddCommand(runCmd)
}
