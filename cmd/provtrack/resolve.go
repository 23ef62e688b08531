package main

import (
	"encoding/json"
	"fmt"
	"os"

	"provtrack/internal/artifact"
	"provtrack/internal/highlight"

	"github.com/spf13/cobra"
)

var (
	queryArtifact string
	queryLine     int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve DIR",
	Short: "Print the lines corresponding to one artifact line as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := artifact.ParseKind(queryArtifact)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.build(cmd.Context(), args[0], "")
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c.Resolve(kind, queryLine))
	},
}

var showCmd = &cobra.Command{
	Use:   "show DIR",
	Short: "Print the highlighted lines of every artifact for one artifact line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := artifact.ParseKind(queryArtifact)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		c, err := a.build(cmd.Context(), args[0], "")
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", args[0], err)
		}

		term := highlight.NewTerminal(os.Stdout, c)
		res := highlight.NewSession(c, term).Select(kind, queryLine)
		if res.Empty() {
			warnColor.Printf("No corresponding lines for %s:%d\n", kind, queryLine)
		}
		return term.Flush()
	},
}

func init() {
	for _, cmd := range []*cobra.Command{resolveCmd, showCmd} {
		cmd.Flags().StringVarP(&queryArtifact, "artifact", "a", "pre_graph", "Artifact of the queried line (pre_graph, post_graph, generated_code)")
		cmd.Flags().IntVarP(&queryLine, "line", "l", 1, "1-based line number")
	}
}
