package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) newBumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bump GENERATION",
		Short: "Invalidate a generation by incrementing its counter",
		Long: `Invalidate a generation by incrementing its counter.

Every key built with the previous counter becomes unreachable. A dynamic
generation needs its parameter:

  gencache bump profile:user_id -p user_id=42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFrom(cmd)
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			v, err := s.cache.Invalidate(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}
			s.log.Info("generation bumped", zap.String("generation", args[0]), zap.Uint64("value", v))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
	addParamFlag(cmd)
	return cmd
}
