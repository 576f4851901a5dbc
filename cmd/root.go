package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/config"
	"github.com/sells-group/site-research/internal/research"
	"github.com/sells-group/site-research/pkg/anthropic"
	"github.com/sells-group/site-research/pkg/jina"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "site-research",
	Short: "Targeted company-website research",
	Long:  "Probes a company site's structure, predicts where an answer lives, fetches only that region, and extracts a structured answer with Claude.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initAgent validates credentials and builds the research agent. Missing
// API keys fail here, at startup, never mid-batch.
func initAgent(cacheStructures bool) (*research.Agent, error) {
	if err := cfg.ValidateCredentials(); err != nil {
		return nil, err
	}

	aiClient := anthropic.NewClient(cfg.Anthropic.Key)
	readerClient := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Research.ReaderTimeoutSecs) * time.Second,
		}),
	)

	agent := research.New(aiClient, readerClient, research.Config{
		Model:             cfg.Anthropic.Model,
		ClassifyMaxTokens: cfg.Anthropic.ClassifyMaxTokens,
		ExtractMaxTokens:  cfg.Anthropic.ExtractMaxTokens,
		ProbeTimeout:      time.Duration(cfg.Research.ProbeTimeoutSecs) * time.Second,
		FetchTimeout:      time.Duration(cfg.Research.FetchTimeoutSecs) * time.Second,
		UserAgent:         cfg.Research.UserAgent,
		CacheStructures:   cacheStructures,
	})

	return agent, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
