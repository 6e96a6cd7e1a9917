// Command jobly runs the Jobly job board API and manages its schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Skryldev/jobly/config"
	"github.com/Skryldev/jobly/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "jobly",
	Short:         "Jobly job board API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig reads configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jobly:", err)
		os.Exit(1)
	}
}
