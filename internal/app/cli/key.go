package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fatflowers/licensing/internal/models"
	"github.com/fatflowers/licensing/pkg/logctx"
	"github.com/fatflowers/licensing/pkg/tool"
	"github.com/fatflowers/licensing/pkg/types"
)

const dateLayout = "2006-01-02"

func (c *cli) keyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Inspect and change license keys",
		Long:  "Keys may be given in full or as a prefix ending in \"...\", e.g. AB12...",
	}
	cmd.AddCommand(
		c.keyGet(), c.keyList(), c.keyExtend(), c.keyRenew(), c.keyExpire(),
		c.keyDisable(), c.keyCreate(), c.keyGenerate(), c.keyDelete(),
	)
	return c.withServices(cmd)
}

type keyView struct {
	*models.Key
	ActiveCount int64                `json:"active_count"`
	Activations []*models.Activation `json:"activations"`
}

func (c *cli) keyGet() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show a key with its activations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			v := keyView{Key: k}
			if v.ActiveCount, err = c.deps.Keys.ActiveCount(ctx, k.Key); err != nil {
				return err
			}
			if v.Activations, err = c.deps.Activations.ListByKey(ctx, k.Key, ""); err != nil {
				return err
			}
			return c.printJSON(v)
		},
	}
}

func (c *cli) keyList() *cobra.Command {
	var status, productID, customerID string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List keys, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := &types.ScanRequest{
				Filters:   eqFilters("status", status, "product_id", productID, "customer_id", customerID),
				Size:      limit,
				SortBy:    "created_at",
				SortOrder: "desc",
			}
			keys, total, err := c.deps.Keys.Scan(cmd.Context(), req)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tPRODUCT\tCUSTOMER\tSTATUS\tMAX\tEXPIRES")
			for _, k := range keys {
				expires := "never"
				if k.ExpiresAt != nil {
					expires = k.ExpiresAt.Format(dateLayout)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", k.Key, k.ProductID, k.CustomerID, k.Status, k.Max, expires)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			c.printf("%d of %d keys\n", len(keys), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "active, disabled or expired")
	cmd.Flags().StringVar(&productID, "product", "", "product id")
	cmd.Flags().StringVar(&customerID, "customer", "", "customer id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum keys to show")
	return cmd
}

func (c *cli) keyExtend() *cobra.Command {
	return &cobra.Command{
		Use:   "extend <key>",
		Short: "Move the expiration forward by one product interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			exp, err := c.deps.Keys.Extend(ctx, k.Key)
			if err != nil {
				return err
			}
			if exp == nil {
				c.printf("%s never expires\n", k.Key)
				return nil
			}
			c.printf("%s now expires %s\n", k.Key, exp.Format(dateLayout))
			return nil
		},
	}
}

func (c *cli) keyRenew() *cobra.Command {
	var transactionID string
	cmd := &cobra.Command{
		Use:   "renew <key>",
		Short: "Record a renewal and extend the key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			var txn *models.Transaction
			if transactionID != "" {
				if txn, err = c.deps.Payments.Get(ctx, transactionID); err != nil {
					return err
				}
			}
			r, err := c.deps.Keys.Renew(ctx, k.Key, txn)
			if err != nil {
				return err
			}
			c.printf("%s renewed until %s\n", k.Key, r.NewExpiration.Format(dateLayout))
			return nil
		},
	}
	cmd.Flags().StringVar(&transactionID, "transaction", "", "renewal payment transaction id")
	return cmd
}

func (c *cli) keyExpire() *cobra.Command {
	var when string
	cmd := &cobra.Command{
		Use:   "expire <key>",
		Short: "Expire a key now or at a given date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			at := time.Now()
			if when != "" {
				if at, err = time.Parse(dateLayout, when); err != nil {
					return fmt.Errorf("invalid --when: %w", err)
				}
			}
			if err := c.deps.Keys.Expire(ctx, k.Key, at); err != nil {
				return err
			}
			c.printf("%s expired\n", k.Key)
			return nil
		},
	}
	cmd.Flags().StringVar(&when, "when", "", "expiration date, "+dateLayout)
	return cmd
}

func (c *cli) keyDisable() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <key>",
		Short: "Disable a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			if err := c.deps.Keys.SetStatus(ctx, k.Key, types.KeyStatusDisabled); err != nil {
				return err
			}
			c.printf("%s disabled\n", k.Key)
			return nil
		},
	}
}

type keyFlags struct {
	productID  string
	customerID string
	max        int
	expires    string
}

func (f *keyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.productID, "product", "", "product id")
	cmd.Flags().StringVar(&f.customerID, "customer", "", "customer id")
	cmd.Flags().IntVar(&f.max, "max", -1, "activation limit, the product's when omitted, 0 for unlimited")
	cmd.Flags().StringVar(&f.expires, "expires", "", "expiration date, "+dateLayout)
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("customer")
}

// apply copies the overrides onto k.
func (f *keyFlags) apply(k *models.Key) error {
	if f.max >= 0 {
		k.Max = f.max
	}
	if f.expires != "" {
		exp, err := time.Parse(dateLayout, f.expires)
		if err != nil {
			return fmt.Errorf("invalid --expires: %w", err)
		}
		k.ExpiresAt = &exp
	}
	return nil
}

func (c *cli) keyCreate() *cobra.Command {
	var flags keyFlags
	var key, transactionID string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a key for an existing transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			txn, err := c.deps.Payments.Get(ctx, transactionID)
			if err != nil {
				return err
			}
			k := &models.Key{
				Key:           key,
				TransactionID: txn.ID,
				ProductID:     flags.productID,
				CustomerID:    flags.customerID,
			}
			if err := flags.apply(k); err != nil {
				return err
			}
			if flags.max < 0 {
				p, err := c.deps.Products.Get(ctx, flags.productID)
				if err != nil {
					return err
				}
				k.Max = p.ActivationLimit
			}
			if err := c.deps.Keys.Create(ctx, k); err != nil {
				return err
			}
			c.printf("%s\n", k.Key)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&key, "key", "", "key string, generated when empty")
	cmd.Flags().StringVar(&transactionID, "transaction", "", "transaction id")
	_ = cmd.MarkFlagRequired("transaction")
	return cmd
}

func (c *cli) keyGenerate() *cobra.Command {
	var flags keyFlags
	var count int
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue keys backed by manual zero-price transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			ctx := cmd.Context()
			for i := 0; i < count; i++ {
				txn := &models.Transaction{
					CustomerID: flags.customerID,
					ProductID:  flags.productID,
					ProviderID: types.PaymentProviderInner,
					ExternalID: tool.GenerateUUIDV7(),
					Currency:   "USD",
				}
				if _, err := c.deps.Payments.RecordTransaction(ctx, txn); err != nil {
					return err
				}
				k, err := c.deps.Keys.IssueForTransaction(ctx, txn)
				if err != nil {
					return err
				}
				if flags.max >= 0 || flags.expires != "" {
					if err := c.override(cmd, k, &flags); err != nil {
						return err
					}
				}
				c.printf("%s\n", k.Key)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&count, "count", 1, "how many keys to issue")
	return cmd
}

func (c *cli) override(cmd *cobra.Command, k *models.Key, flags *keyFlags) error {
	ctx := cmd.Context()
	want := *k
	if err := flags.apply(&want); err != nil {
		return err
	}
	if want.Max != k.Max {
		if err := c.deps.Keys.SetMax(ctx, k.Key, want.Max); err != nil {
			return err
		}
	}
	if flags.expires != "" {
		return c.deps.Keys.SetExpires(ctx, k.Key, want.ExpiresAt)
	}
	return nil
}

func (c *cli) keyDelete() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key with its activations and renewals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			k, err := c.resolveKey(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete %s without --yes", logctx.Mask(k.Key))
			}
			if err := c.deps.Keys.Delete(ctx, k.Key); err != nil {
				return err
			}
			c.printf("%s deleted\n", k.Key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
