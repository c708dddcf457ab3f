package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/atinyakov/FinWise/internal/client/api"
	"github.com/atinyakov/FinWise/internal/models"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.connect(cmd.Context())
			u, err := a.client.Profile(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, renderProfile(u))
			return nil
		},
	}

	var upd api.ProfileUpdate
	update := &cobra.Command{
		Use:   "update",
		Short: "Change name or currency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if upd.FullName == "" && upd.Currency == "" {
				return fmt.Errorf("nothing to update: pass --name or --currency")
			}
			upd.Currency = strings.ToUpper(upd.Currency)
			a.connect(cmd.Context())
			u, err := a.client.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, renderProfile(u))
			return nil
		},
	}
	update.Flags().StringVar(&upd.FullName, "name", "", "full name")
	update.Flags().StringVar(&upd.Currency, "currency", "", "three letter currency code")

	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account and all its data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ok, err := a.prompt.Confirm("Delete your account for good?")
			if err != nil || !ok {
				return err
			}
			a.connect(cmd.Context())
			if err := a.client.DeleteAccount(cmd.Context()); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Account deleted.")
			return nil
		},
	}

	cmd.AddCommand(update, del)
	return cmd
}

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List and record transactions",
	}
	cmd.AddCommand(newTxListCmd(a), newTxAddCmd(a), newTxDeleteCmd(a))
	return cmd
}

func newTxListCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromT, err := parseDay(from)
			if err != nil {
				return err
			}
			toT, err := parseDay(to)
			if err != nil {
				return err
			}
			a.connect(cmd.Context())
			txs, err := a.client.Transactions(cmd.Context(), fromT, toT)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, renderTransactions(txs, a.currency()))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func newTxAddCmd(a *app) *cobra.Command {
	var (
		kind    string
		amount  float64
		date    string
		receipt string
		tx      models.Transaction
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long:  "Record a transaction. Values not given as flags are asked for.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if kind == "" {
				if kind, err = a.prompt.Default("Type (income/expense)", string(models.Expense)); err != nil {
					return err
				}
			}
			tx.Type = models.TransactionType(strings.ToLower(kind))
			if !tx.Type.Valid() {
				return fmt.Errorf("invalid type %q", kind)
			}
			tx.Amount = amount
			if tx.Amount <= 0 {
				if tx.Amount, err = a.prompt.Amount("Amount"); err != nil {
					return err
				}
			}
			if tx.Category == "" {
				if tx.Category, err = a.prompt.Required("Category"); err != nil {
					return err
				}
			}
			if tx.Date, err = parseDay(date); err != nil {
				return err
			}

			ctx := cmd.Context()
			a.connect(ctx)
			if receipt != "" {
				if tx.ReceiptKey, err = a.upload(cmd, receipt); err != nil {
					return err
				}
			}
			created, err := a.client.CreateTransaction(ctx, tx)
			if err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, renderOK("Saved "+created.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "type", "", "income or expense")
	f.Float64Var(&amount, "amount", 0, "amount")
	f.StringVar(&tx.Category, "category", "", "category")
	f.StringVar(&tx.Note, "note", "", "free text note")
	f.StringVar(&date, "date", "", "day, YYYY-MM-DD (default today)")
	f.StringVar(&receipt, "receipt", "", "receipt image or PDF to attach")
	return cmd
}

func newTxDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.connect(cmd.Context())
			if err := a.client.DeleteTransaction(cmd.Context(), args[0]); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Deleted.")
			return nil
		},
	}
}

func newReceiptCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipt",
		Short: "Upload and download receipts",
	}

	upload := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a receipt and print its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.connect(cmd.Context())
			key, err := a.upload(cmd, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, key)
			return nil
		},
	}

	var output string
	download := &cobra.Command{
		Use:   "download <key>",
		Short: "Save a receipt to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := output
			if name == "" {
				name = filepath.Base(args[0])
			}
			f, err := os.Create(name)
			if err != nil {
				return err
			}
			defer f.Close()

			a.connect(cmd.Context())
			ct, err := a.client.DownloadReceipt(cmd.Context(), args[0], f)
			if err != nil {
				_ = os.Remove(name)
				return a.fail(err)
			}
			fmt.Fprintf(a.out, "Saved %s (%s)\n", name, ct)
			return nil
		},
	}
	download.Flags().StringVarP(&output, "output", "o", "", "file to write")

	cmd.AddCommand(upload, download)
	return cmd
}

func (a *app) upload(cmd *cobra.Command, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	key, err := a.client.UploadReceipt(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return "", a.fail(err)
	}
	return key, nil
}

func newNotificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.connect(cmd.Context())
			ns, err := a.client.Notifications(cmd.Context())
			if err != nil {
				return a.fail(err)
			}
			if len(ns) == 0 {
				fmt.Fprintln(a.out, hintStyle.Render("No notifications."))
			}
			for _, n := range ns {
				mark := "*"
				if n.Read {
					mark = " "
				}
				fmt.Fprintf(a.out, "%s %s  %s: %s\n", mark, n.ID, n.Title, n.Message)
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.connect(cmd.Context())
			return a.fail(a.client.MarkNotificationRead(cmd.Context(), args[0]))
		},
	})
	return cmd
}

// currency is the cached user's display currency.
func (a *app) currency() string {
	if u, ok := a.client.CachedUser(); ok && u.Currency != "" {
		return u.Currency
	}
	return "USD"
}

// parseDay reads YYYY-MM-DD. An empty string is the zero time.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(api.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
