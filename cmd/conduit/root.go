package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/conduit/internal/config"
	"github.com/spf13/cobra"
)

var (
	settings = config.New()
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit dispatches intent recognition responses to Go handlers",
	Long: `Conduit reads a manifest that maps recognized intents to handler methods and
dispatches recognition responses to the best matching handler.

Settings are read from conduit.yaml, CONDUIT_* environment variables and flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.BindFlags(settings, cmd.Flags()); err != nil {
			return err
		}
		file, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(settings, file)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default ./conduit.yaml)")
	flags.StringP("manifest", "m", "", "Manifest file (default: built-in home demo)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("strict", false, "Fail when any manifest entry does not resolve")
	flags.String("redis-addr", "", "Redis address for early-validation tracking and locks")
	flags.String("redis-password", "", "Redis password")
	flags.Int("redis-db", 0, "Redis database")
	flags.String("redis-prefix", "conduit:", "Prefix for every Redis key")
	flags.Duration("tracker-ttl", 5*time.Minute, "How long a request handled early is remembered")
}
