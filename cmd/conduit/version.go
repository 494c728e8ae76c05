package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of conduit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "conduit version %s (manifest %s)\n",
			strings.TrimSpace(conduit.Version), manifest.SupportedVersions)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
