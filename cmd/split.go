package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/lexvault/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split [source.json] [outdir]",
	Short: "Partition a monolithic dataset into per-bucket shard files",
	Long: `Split streams the source dataset once, routes every key to its bucket,
and writes one shard file per bucket plus a manifest into outdir. A
directory produced this way makes "lexvault --shards outdir" start in
sharded mode.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		start := time.Now()
		res, err := split.Split(cmd.Context(), args[0], args[1], log)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d buckets (%d entries) to %s in %v.\n",
			res.Buckets, res.Entries, args[1], time.Since(start))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(splitCmd)
}
