package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/gencache"
)

func addParamFlag(cmd *cobra.Command) {
	cmd.Flags().StringArrayP("param", "p", nil, "Dynamic generation parameter as name=value (repeatable)")
}

func paramsFrom(cmd *cobra.Command) (gencache.Params, error) {
	raw, err := cmd.Flags().GetStringArray("param")
	if err != nil {
		return nil, err
	}
	return parseParams(raw)
}

func parseParams(raw []string) (gencache.Params, error) {
	p := make(gencache.Params, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q, want name=value", kv)
		}
		p[k] = parseValue(v)
	}
	return p, nil
}

// parseValue types a command line value so that it renders like the value an
// application passes: 42 is an integer, "42" (quoted) is a string.
func parseValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s, ".eE") {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if len(s) >= 2 && s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	return s
}
