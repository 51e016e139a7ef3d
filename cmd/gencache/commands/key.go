package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/gencache"
)

var errNotFound = errors.New("no entry stored under this key")

func lookupFrom(cmd *cobra.Command, generations []string) (gencache.Lookup, error) {
	params, err := paramsFrom(cmd)
	if err != nil {
		return gencache.Lookup{}, err
	}
	add, err := cmd.Flags().GetStringArray("add")
	if err != nil {
		return gencache.Lookup{}, err
	}
	return gencache.Lookup{Generations: generations, Params: params, AddToKey: add}, nil
}

func addLookupFlags(cmd *cobra.Command) {
	addParamFlag(cmd)
	cmd.Flags().StringArrayP("add", "a", nil, "Extra key component appended after the generations (repeatable)")
}

func (c *CLI) newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key GENERATION...",
		Short: "Print the store key of a direct lookup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lookupFrom(cmd, args)
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			key, err := s.cache.BuildKey(cmd.Context(), l)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
			return err
		},
	}
	addLookupFlags(cmd)
	return cmd
}

func (c *CLI) newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get GENERATION...",
		Short: "Print the value stored for a direct lookup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lookupFrom(cmd, args)
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			v, ok, err := s.cache.Get(cmd.Context(), l)
			if err != nil {
				return err
			}
			if !ok {
				return errNotFound
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
	addLookupFlags(cmd)
	return cmd
}

func (c *CLI) newSetCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set VALUE GENERATION...",
		Short: "Store a value for a direct lookup",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := lookupFrom(cmd, args[1:])
			if err != nil {
				return err
			}
			s, err := c.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			return s.cache.Set(cmd.Context(), args[0], l, ttl)
		},
	}
	addLookupFlags(cmd)
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Entry TTL (0 = no expiry, capped at 30 days)")
	return cmd
}
