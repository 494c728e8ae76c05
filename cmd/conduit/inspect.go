package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/conduit/internal/cli"
	"github.com/aretw0/conduit/internal/presentation/graph"
	"github.com/aretw0/conduit/internal/presentation/tui"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the resolved dispatch table",
	Long: `Prints the dispatch table in ranked order as a markdown report, a Mermaid graph
or JSON. With --response the Mermaid graph highlights the handler that would run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		respArg, _ := cmd.Flags().GetString("response")

		rt, err := cli.Build(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		out := cmd.OutOrStdout()
		actions := rt.Conduit.Actions()
		switch format {
		case "markdown", "md":
			rendered, err := tui.NewRenderer()(tui.ActionsMarkdown(rt.Conduit.Manifest(), actions))
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
		case "mermaid":
			var overlay *graph.Overlay
			if respArg != "" {
				data, err := readInput(respArg, cmd.InOrStdin())
				if err != nil {
					return err
				}
				resp, err := response.ParseBytes(data)
				if err != nil {
					return err
				}
				overlay = graph.NewOverlay(rt.Conduit.DispatchResponse(cmd.Context(), resp, false))
			}
			fmt.Fprintln(out, graph.GenerateMermaid(actions, overlay))
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(actions)
		default:
			return fmt.Errorf("unknown format %q: use markdown, mermaid or json", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, mermaid or json")
	inspectCmd.Flags().StringP("response", "r", "", "Response to highlight in the graph (inline JSON, @file or - for stdin)")
}
