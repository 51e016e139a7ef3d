// Package commands implements the gencache CLI.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// CLI is the gencache command line.
type CLI struct {
	rootCmd *cobra.Command

	configPath string
	backend    string
	namespace  string
	debug      bool
}

func New() *CLI {
	c := &CLI{}
	rootCmd := &cobra.Command{
		Use:           "gencache",
		Short:         "Inspect and invalidate generational cache keys",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "YAML config file (GENCACHE_* variables override it)")
	pf.StringVar(&c.backend, "backend", "", "Store backend: memory, redis or memcache")
	pf.StringVar(&c.namespace, "namespace", "", "Key namespace")
	pf.BoolVar(&c.debug, "debug", false, "Log resolved generations and keys")

	rootCmd.AddCommand(c.newBumpCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newKeyCmd())
	rootCmd.AddCommand(c.newGetCmd())
	rootCmd.AddCommand(c.newSetCmd())

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects command output and logs. Used for testing.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(errOut)
}
