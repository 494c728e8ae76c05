package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/conduit/internal/demo"
	"github.com/aretw0/conduit/internal/presentation/tui"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("manifest is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Check a manifest against the schema and the demo handlers",
	Long: `Validates the manifest document against the JSON schema, checks its format
version and resolves every entity, action and error handler against the handlers
compiled into this binary. Every problem is reported, not only the first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.Manifest
		if len(args) > 0 {
			path = args[0]
		}
		return runValidate(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	out := cmd.OutOrStdout()
	name, data, err := manifestSource(path)
	if err != nil {
		return err
	}

	result, err := manifest.Validate(data)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "%s schema: %s\n", tui.Status("error"), issue)
		}
		return errInvalid
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return err
	}
	if err := manifest.CheckVersion(m.Version); err != nil {
		fmt.Fprintf(out, "%s %v\n", tui.Status("error"), err)
		return errInvalid
	}

	r := manifest.NewResolver(m, demo.NewTable(demo.NewHome()))
	r.ResolveEntities()
	r.ResolveActions()
	if err := r.Err(); err != nil {
		failures := manifest.ResolutionErrors(err)
		if failures == nil {
			failures = []error{err}
		}
		for _, f := range failures {
			fmt.Fprintf(out, "%s %v\n", tui.Status("error"), f)
		}
		return errInvalid
	}

	fmt.Fprintf(out, "%s %s: %d entities, %d actions, %d error handlers\n",
		tui.Status("ok"), name, len(m.Entities), len(m.Actions), len(m.ErrorHandlers))
	return nil
}
