package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/funvibe/typescan/internal/config"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:     config.AppName,
	Short:   "Query a type graph for matching declarations",
	Version: config.Version,
	Long: `typescan evaluates declarative queries against a type graph and
streams every declaration (and generic-parameter binding) that satisfies
them. Graphs come from YAML documents or directly from Go packages.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose || os.Getenv(config.VerboseEnv) != "" {
			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = log
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(queryCmd)
}
