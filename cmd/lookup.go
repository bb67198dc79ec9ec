package cmd

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/lexvault/internal/lookup"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup [word]",
	Short: "Resolve a single word and print its entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		word := args[0]

		eng, err := newEngine(zap.NewNop())
		if err != nil {
			return err
		}

		entry, err := eng.Lookup(cmd.Context(), word)
		if errors.Is(err, lookup.ErrNotFound) {
			return fmt.Errorf("%q: not found", word)
		}
		if err != nil {
			return err
		}

		// Re-indent for the terminal; fall back to the raw bytes if the
		// payload is somehow not re-parseable.
		if parsed, err := oj.Parse(entry); err == nil {
			fmt.Println(oj.JSON(parsed, 2))
		} else {
			fmt.Println(string(entry))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
