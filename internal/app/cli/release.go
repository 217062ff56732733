package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/types"
)

func (c *cli) releaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "List releases and move them through their lifecycle",
	}
	cmd.AddCommand(
		c.releaseList(),
		c.releaseTransition("activate", "Publish a release as the product's current version", c.activateRelease),
		c.releaseTransition("pause", "Pause a release and restore the previous version", c.pauseRelease),
		c.releaseTransition("archive", "Archive a release", c.archiveRelease),
	)
	return c.withServices(cmd)
}

func (c *cli) activateRelease(ctx context.Context, id string) (*models.Release, error) {
	return c.deps.Releases.Activate(ctx, id)
}

func (c *cli) pauseRelease(ctx context.Context, id string) (*models.Release, error) {
	return c.deps.Releases.Pause(ctx, id)
}

func (c *cli) archiveRelease(ctx context.Context, id string) (*models.Release, error) {
	return c.deps.Releases.Archive(ctx, id)
}

func (c *cli) releaseList() *cobra.Command {
	var productID, status string
	var limit int
	var progress bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List releases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			releases, total, err := c.deps.Releases.Scan(ctx, &types.ScanRequest{
				Filters:   eqFilters("product_id", productID, "status", status),
				Size:      limit,
				SortBy:    "created_at",
				SortOrder: "desc",
			})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			header := "ID\tPRODUCT\tVERSION\tTYPE\tSTATUS"
			if progress {
				header += "\tUPDATED"
			}
			fmt.Fprintln(w, header)
			for _, r := range releases {
				line := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", r.ID, r.ProductID, r.Version, r.Type, r.Status)
				if progress {
					p, err := c.deps.Releases.Progress(ctx, r.ID)
					if err != nil {
						return err
					}
					line += fmt.Sprintf("\t%d/%d (%.0f%%)", p.Updated, p.Total, p.Percent)
				}
				fmt.Fprintln(w, line)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			c.printf("%d of %d releases\n", len(releases), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&productID, "product", "", "product id")
	cmd.Flags().StringVar(&status, "status", "", "draft, active, paused or archived")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum releases to show")
	cmd.Flags().BoolVar(&progress, "progress", false, "show how many installs updated")
	return cmd
}

func (c *cli) releaseTransition(use, short string, apply func(ctx context.Context, id string) (*models.Release, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := apply(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c.printf("%s %s is %s\n", r.ProductID, r.Version, r.Status)
			return nil
		},
	}
}
