package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aretw0/conduit/internal/cli"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.jsonl>",
	Short: "Dispatch a file of recorded responses",
	Long: `Reads one response per line ("-" for stdin) and writes one JSON outcome per line,
in input order. A line is either a bare response or a record with the fields
response, intent, confidence, partial and stream. Records sharing a stream are
dispatched in order; everything else runs concurrently.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		records, err := cli.ReadRecords(in)
		if err != nil {
			return err
		}

		rt, err := cli.Build(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer rt.Close()

		results, err := cli.Replay(cmd.Context(), rt.Conduit, records, concurrency)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, r := range results {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}

		counts := cli.Summarize(results)
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(cmd.ErrOrStderr(), "%d records:", len(results))
		for _, k := range keys {
			fmt.Fprintf(cmd.ErrOrStderr(), " %s=%d", k, counts[k])
		}
		fmt.Fprintln(cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().IntP("concurrency", "j", 4, "Maximum concurrent dispatches")
}
