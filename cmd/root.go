package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile        string
	userAgent      string
	sleepSeconds   float64
	timeoutSeconds int
	verbose        bool
)

// logLevel is shared so subcommand debug toggles can lower it after setup.
var logLevel = new(slog.LevelVar)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mvarchive",
	Short: "Mediavida forum scraping toolkit",
	Long: `Scrape the Mediavida forum politely and offline-process the results:
- Build a catalog of thread listings (articles)
- Download full comment threads per article (comments)
- Rehydrate stored dialogue ID chains back into anonymized text (rehydrate)

All network access is sequential and rate limited.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mvarchive.yaml)")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "User-Agent string for polite requests")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 1.0, "seconds to wait between page fetches")
	rootCmd.PersistentFlags().IntVar(&timeoutSeconds, "timeout", 30, "per-request timeout in seconds")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Bind flags to viper
	viper.BindPFlag("user-agent", rootCmd.PersistentFlags().Lookup("user-agent"))
	viper.BindPFlag("sleep", rootCmd.PersistentFlags().Lookup("sleep"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".mvarchive" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mvarchive")
	}

	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("sleep", 1.0)
	viper.SetDefault("timeout", 30)

	logLevel.Set(slog.LevelInfo)
	if viper.GetBool("verbose") {
		logLevel.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}
