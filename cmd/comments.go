package cmd

import (
	"github.com/corpix/uarand"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conversa-ai/mvarchive/internal/comments"
	"github.com/conversa-ai/mvarchive/internal/scraper"
)

var (
	commentsMetadata string
	commentsOutput   string
	commentsMaxP     int
)

// commentsCmd represents the comments command
var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Download full comment threads for a catalog",
	Long: `Walk a previously built articles.csv catalog and download every
article's comment thread to <article_id>.json in the output folder.

Articles already downloaded are skipped, as are recurring general threads.
A failed article is logged and skipped so the run keeps going.

Example:
  mvarchive comments --metadata ./output --output ./output/comments`,
	RunE: runComments,
}

func init() {
	rootCmd.AddCommand(commentsCmd)

	commentsCmd.Flags().StringVar(&commentsMetadata, "metadata", "", "folder holding articles.csv")
	commentsCmd.Flags().StringVar(&commentsOutput, "output", "", "output folder for per-article JSON files")
	commentsCmd.Flags().IntVar(&commentsMaxP, "max-pages", 2000, "maximum pages to crawl per article")
	commentsCmd.MarkFlagRequired("metadata")
	commentsCmd.MarkFlagRequired("output")
}

func runComments(cmd *cobra.Command, args []string) error {
	ua := viper.GetString("user-agent")
	if ua == "" {
		ua = uarand.GetRandom()
	}

	client := scraper.NewClient(scraper.Config{
		UserAgent:      ua,
		SleepSeconds:   viper.GetFloat64("sleep"),
		TimeoutSeconds: viper.GetInt("timeout"),
	})

	return comments.DownloadAll(cmd.Context(), client, commentsMetadata, commentsOutput, commentsMaxP)
}
