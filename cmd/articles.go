package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/corpix/uarand"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conversa-ai/mvarchive/internal/catalog"
	"github.com/conversa-ai/mvarchive/internal/scraper"
)

var (
	articlesBaseURL string
	articlesOutput  string
	articlesPages   int
)

// articlesCmd represents the articles command
var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Build a catalog of thread listings",
	Long: `Scrape a forum listing page by page and write the resulting catalog
of article IDs and links to articles.csv in the output folder.

Example:
  mvarchive articles --base-url https://www.mediavida.com/foro/feda --pages 1500 --output ./output`,
	RunE: runArticles,
}

func init() {
	rootCmd.AddCommand(articlesCmd)

	articlesCmd.Flags().StringVar(&articlesBaseURL, "base-url", "", "listing base URL to paginate over")
	articlesCmd.Flags().StringVar(&articlesOutput, "output", "", "output folder for articles.csv")
	articlesCmd.Flags().IntVar(&articlesPages, "pages", 0, "number of listing pages to scrape")
	articlesCmd.MarkFlagRequired("base-url")
	articlesCmd.MarkFlagRequired("output")
	articlesCmd.MarkFlagRequired("pages")
}

func runArticles(cmd *cobra.Command, args []string) error {
	ua := viper.GetString("user-agent")
	if ua == "" {
		ua = uarand.GetRandom()
	}

	if err := os.MkdirAll(articlesOutput, 0755); err != nil {
		return err
	}

	client := scraper.NewClient(scraper.Config{
		UserAgent:      ua,
		SleepSeconds:   viper.GetFloat64("sleep"),
		TimeoutSeconds: viper.GetInt("timeout"),
	})

	articles, err := catalog.ScrapeListing(cmd.Context(), client, articlesBaseURL, articlesPages)
	if err != nil {
		return fmt.Errorf("scrape listing: %w", err)
	}

	csvPath := filepath.Join(articlesOutput, catalog.CSVFileName)
	if err := catalog.WriteCSV(csvPath, articles); err != nil {
		return err
	}

	slog.Info("wrote catalog", "path", csvPath, "articles", len(articles))
	return nil
}
