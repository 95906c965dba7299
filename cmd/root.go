package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit code contract:
// 0 = clean collection, every child contributed
// 1 = partial collection, some children failed
// 2 = fatal error, nothing collected
const (
	exitOK      = 0
	exitPartial = 1
	exitFatal   = 2
)

var rootCmd = &cobra.Command{
	Use:   "sweepctl",
	Short: "Hyperparameter sweep result collection",
	Long: `A command line tool for collecting hyperparameter sweep results from an
MLflow tracking server. Lists a sweep's child runs ranked by the primary
metric, downloads their result artifacts, and reassembles everything into one
flat table attached to the parent run.`,
	SilenceUsage: true,
}

// exitCode is raised by commands that complete with a degraded outcome.
var exitCode = exitOK

func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFatal
	}
	return exitCode
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("tracking-uri", "", "MLflow tracking URI (overrides MLFLOW_TRACKING_URI)")
	rootCmd.PersistentFlags().String("experiment-id", "", "Experiment ID (overrides MLFLOW_EXPERIMENT_ID)")
	viper.BindPFlag("tracking_uri", rootCmd.PersistentFlags().Lookup("tracking-uri"))
	viper.BindPFlag("experiment_id", rootCmd.PersistentFlags().Lookup("experiment-id"))
}

func initConfig() {
	// Environment variables
	viper.SetEnvPrefix("MLFLOW")
	viper.AutomaticEnv()

	// Also bind Databricks environment variables
	viper.BindEnv("databricks_host", "DATABRICKS_HOST")
	viper.BindEnv("databricks_token", "DATABRICKS_TOKEN")

	// Set defaults
	viper.SetDefault("tracking_uri", "http://localhost:5000")
	viper.SetDefault("scratch_dir", os.TempDir())
	viper.SetDefault("concurrency", 1)
}
