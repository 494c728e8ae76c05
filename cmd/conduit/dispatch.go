package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/conduit/internal/cli"
	"github.com/aretw0/conduit/internal/presentation/tui"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/response"
	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Dispatch one recognition response",
	Long: `Dispatches a recognition response to the demo handlers and prints the outcome.

The response is inline JSON, @file or - for stdin. Without --intent the top intent
of the response is used. With --stream the response belongs to a streaming request:
--partial marks it as partial, otherwise it is the final response of the stream.
--intent and --confidence cannot be combined with --stream. Streams only span invocations when a Redis tracker is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		respArg, _ := flags.GetString("response")
		intent, _ := flags.GetString("intent")
		confidence, _ := flags.GetFloat64("confidence")
		partial, _ := flags.GetBool("partial")
		stream, _ := flags.GetString("stream")
		format, _ := flags.GetString("format")

		rt, err := cli.Build(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		rec := cli.Record{Stream: stream, Partial: partial, Intent: intent}
		if flags.Changed("confidence") {
			rec.Confidence = &confidence
		}
		if respArg != "" {
			data, err := readInput(respArg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if _, err := response.ParseBytes(data); err != nil {
				return err
			}
			rec.Response = data
		}

		results, err := cli.Replay(cmd.Context(), rt.Conduit, []cli.Record{rec}, 1)
		if err != nil {
			return err
		}
		res := results[0]
		if res.Error != "" {
			return fmt.Errorf("dispatch failed: %s", res.Error)
		}
		return printReport(cmd, format, res.Report)
	},
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
	flags := dispatchCmd.Flags()
	flags.StringP("response", "r", "", "Recognition response (inline JSON, @file or - for stdin)")
	flags.StringP("intent", "i", "", "Intent to dispatch, overriding the response")
	flags.Float64P("confidence", "c", 1, "Confidence score, overriding the response")
	flags.Bool("partial", false, "The response is partial")
	flags.String("stream", "", "Request ID of a streaming request")
	flags.StringP("format", "f", "text", "Output format: text or json")
}

func printReport(cmd *cobra.Command, format string, r domain.Report) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "text":
		rendered, err := tui.NewRenderer()(tui.OutcomeMarkdown(r))
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	default:
		return fmt.Errorf("unknown format %q: use text or json", format)
	}
}
