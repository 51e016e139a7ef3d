package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/gencache"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve GENERATION...",
		Short: "Print the current counter of each generation",
		Long: `Print the current counter of each generation, one per line:

  <generation> <counter key> <counter>

Counters that do not exist yet are created, exactly as a cache read would.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFrom(cmd)
			if err != nil {
				return err
			}
			suffixes := make([]string, len(args))
			for i, raw := range args {
				g, err := gencache.ParseGeneration(raw)
				if err != nil {
					return err
				}
				if suffixes[i], err = g.Suffix(params); err != nil {
					return err
				}
			}

			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			vals, err := s.gen.Snapshot(cmd.Context(), suffixes)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, raw := range args {
				if _, err := fmt.Fprintf(out, "%s %s %d\n", raw, s.gen.Key(suffixes[i]), vals[suffixes[i]]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addParamFlag(cmd)
	return cmd
}
