// Package main provides the lncat command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lncat",
		Short: "Classify non-coding transcripts into lncRNA subclasses",
		Long: `lncat classifies assembled non-coding candidate transcripts into lncRNA
subclasses (Exonic, Inc, Conc, Ponc, LincRNA) by their positional
relationship to a reference gene annotation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.AddCommand(newClassifyCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// initConfig wires viper: built-in defaults, then ~/.lncat.yaml overrides,
// then LNCAT_* environment variables.
func initConfig() error {
	viper.SetDefault("classify.min-length", 200)
	viper.SetDefault("classify.max-length", 0)
	viper.SetDefault("classify.min-exons", 1)
	viper.SetDefault("classify.overlap-pct", 0.0)
	viper.SetDefault("classify.linc-window", 0)
	viper.SetDefault("classify.workers", 0)

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(".lncat")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("LNCAT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("lncat version %s (%s) built %s\n", version, commit, date)
		},
	}
}
