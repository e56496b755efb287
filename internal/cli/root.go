// Package cli implements stagectl, an offline previewer for order tracking views.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storefront-tracker/internal/core/logger"
)

// NewRootCommand builds the stagectl command tree. Each call returns an
// independent tree so tests can run commands in isolation.
func NewRootCommand() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "stagectl",
		Short: "Preview order tracking stages and eligibility",
		Long: `stagectl derives the customer-facing tracking view of an order from
exported JSON, using the same rules as the API. Support staff use it to
explain what a customer sees without calling the storefront backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init("development", v.GetString("LOG_LEVEL"))
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newDeriveCommand(v))

	return root
}

// Execute runs stagectl with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
