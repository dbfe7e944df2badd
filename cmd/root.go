package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kcs1040/jarviscs/internal/config"
	"github.com/kcs1040/jarviscs/internal/logger"
)

var (
	verbose bool
	cfgFile string
	cfg     *config.Config

	// Version information
	version    string
	commitHash string
	buildTime  string
)

var rootCmd = &cobra.Command{
	Use:   "jarviscs",
	Short: "Personal assistant API bridging Google Calendar",
	Long: `jarviscs serves the assistant API: it signs users in with Google, keeps
their access tokens fresh, and answers calendar questions ("next week",
"today", "next N events") against their Google Calendar.

Run 'jarviscs serve' to start the HTTP server.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, commit, buildTimeStr string) {
	version = v
	commitHash = commit
	buildTime = buildTimeStr

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commitHash, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file directory (default is $HOME/.config/jarviscs)")
}

func initConfig() {
	logger.Init(verbose)

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}
