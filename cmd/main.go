package main

import (
	"fmt"
	"os"

	"fxconvert/internal/app"
	"fxconvert/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	var opts config.Options

	rootCmd := &cobra.Command{
		Use:           "fxconvert",
		Short:         "Convert amounts between currencies using cached exchange rates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(opts)
		},
	}
	rootCmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to yaml config file (default config.yaml if present)")
	rootCmd.Flags().StringVar(&opts.EnvFile, "env-file", "", "path to .env file (default .env if present)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fxconvert:", err)
		os.Exit(1)
	}
}
