// Package cli is the operator command line for keys and releases.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fatflowers/licensing/internal/app/service/activation"
	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/internal/app/service/payment"
	"github.com/fatflowers/licensing/internal/app/service/product"
	"github.com/fatflowers/licensing/internal/app/service/release"
	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/types"
)

// Deps are the services the commands run against.
type Deps struct {
	Keys        *license.Service
	Activations *activation.Service
	Releases    *release.Service
	Payments    *payment.Service
	Products    *product.Service
}

// Loader opens the services before a command runs. The returned func
// releases them.
type Loader func(ctx context.Context) (*Deps, func(), error)

type cli struct {
	load  Loader
	deps  *Deps
	close func()
	out   io.Writer
}

// NewRootCommand builds the licensectl command tree.
func NewRootCommand(load Loader) *cobra.Command {
	c := &cli{load: load}
	root := &cobra.Command{
		Use:           "licensectl",
		Short:         "Manage license keys and releases",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(c.keyCommand(), c.releaseCommand())
	return root
}

// withServices makes cmd's subcommands open the services before running and
// release them afterwards. Help and completion never touch the database.
func (c *cli) withServices(cmd *cobra.Command) *cobra.Command {
	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		c.out = cmd.OutOrStdout()
		deps, closeFn, err := c.load(cmd.Context())
		if err != nil {
			return err
		}
		c.deps, c.close = deps, closeFn
		return nil
	}
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if c.close != nil {
			c.close()
			c.close = nil
		}
	}
	return cmd
}

// resolveKey accepts a full key or a prefix ending in "...".
func (c *cli) resolveKey(ctx context.Context, arg string) (*models.Key, error) {
	return c.deps.Keys.FindByPrefix(ctx, arg)
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func eqFilters(pairs ...string) []*types.CommonFilter {
	var filters []*types.CommonFilter
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		filters = append(filters, &types.CommonFilter{
			Field:    pairs[i],
			Operator: types.CommonFilterOperatorEq,
			Values:   []any{pairs[i+1]},
		})
	}
	return filters
}
