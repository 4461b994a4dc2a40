package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conversa-ai/mvarchive/internal/rehydrate"
	"github.com/conversa-ai/mvarchive/internal/scraper"
)

var (
	rehydrateInput  string
	rehydrateOutput string
	rehydrateMaxP   int
	rehydrateDebug  bool
)

// rehydrateCmd represents the rehydrate command
var rehydrateCmd = &cobra.Command{
	Use:   "rehydrate",
	Short: "Turn a dehydrated dialogue file back into text",
	Long: `Rehydrate a dehydrated (IDs-only) dialogue JSON by re-scraping the
source thread's pages and resolving each post ID chain into anonymized
(speaker, text) turns.

The output contains user-generated content retrieved at runtime and must not
be redistributed. Authors are never emitted; they are mapped to per-run
letters A, B, C...

Example:
  mvarchive rehydrate --input dehydrated.json --output rehydrated.json \
    --user-agent "research-bot/1.0 (contact@example.org)"`,
	RunE: runRehydrate,
}

func init() {
	rootCmd.AddCommand(rehydrateCmd)

	rehydrateCmd.Flags().StringVar(&rehydrateInput, "input", "", "dehydrated Mediavida JSON (IDs-only)")
	rehydrateCmd.Flags().StringVar(&rehydrateOutput, "output", "", "rehydrated JSON with text (local use only)")
	rehydrateCmd.Flags().IntVar(&rehydrateMaxP, "max-pages", 2000, "maximum pages to crawl per thread")
	rehydrateCmd.Flags().BoolVar(&rehydrateDebug, "debug", false, "trace crawling and pagination decisions")
	rehydrateCmd.MarkFlagRequired("input")
	rehydrateCmd.MarkFlagRequired("output")
}

func runRehydrate(cmd *cobra.Command, args []string) error {
	if rehydrateDebug {
		logLevel.Set(slog.LevelDebug)
	}

	ua := viper.GetString("user-agent")
	if strings.TrimSpace(ua) == "" {
		return fmt.Errorf("--user-agent is required for rehydration")
	}

	// Validate the input shape before touching the network.
	input, err := rehydrate.LoadInput(rehydrateInput)
	if err != nil {
		return err
	}

	client := scraper.NewClient(scraper.Config{
		UserAgent:      ua,
		SleepSeconds:   viper.GetFloat64("sleep"),
		TimeoutSeconds: viper.GetInt("timeout"),
	})

	posts, err := scraper.CrawlThread(cmd.Context(), client, input.ThreadURL, rehydrateMaxP)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", input.ThreadURL, err)
	}

	doc := rehydrate.Run(posts, input)
	if err := doc.Write(rehydrateOutput); err != nil {
		return err
	}

	slog.Info("wrote rehydrated output", "path", rehydrateOutput)
	return nil
}
