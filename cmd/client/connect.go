package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/client/storage"
)

func newConnectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Find a reachable server and check its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConnect(cmd.Context())
		},
	}
}

func (a *app) runConnect(ctx context.Context) error {
	a.started = true
	if err := a.conn.Reconnect(ctx); err != nil {
		return a.fail(err)
	}
	h, err := a.client.Health(ctx)
	if err != nil {
		return a.fail(err)
	}
	fmt.Fprintln(a.out, renderOK("Connected to "+a.conn.BaseURL()))
	fmt.Fprintf(a.out, "Status: %s", h.Status)
	if h.Database != "" {
		fmt.Fprintf(a.out, ", database: %s", h.Database)
	}
	fmt.Fprintln(a.out)
	return nil
}

func newURLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "url",
		Short: "Show or change the server URL",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the server URL in use",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a.printURL()
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <url>",
		Short: "Switch to a server URL if it answers a health check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.conn.UpdateURL(cmd.Context(), args[0]) {
				return a.fail(&connectivity.ConnectivityError{
					Op:  "probe",
					URL: args[0],
					Err: connectivity.ErrNoReachableEndpoint,
				})
			}
			fmt.Fprintln(a.out, renderOK("Now using "+a.conn.BaseURL()))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved server URL",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := a.conn.ClearStoredURL(); err != nil {
				return err
			}
			def, _ := a.cfg.Endpoints()
			fmt.Fprintf(a.out, "Saved URL cleared. The next start uses %s.\n", def)
			return nil
		},
	}

	cmd.AddCommand(show, set, clearCmd)
	cmd.RunE = show.RunE
	return cmd
}

func (a *app) printURL() {
	saved := ""
	if _, ok := a.store.Get(storage.KeyAPIURL); ok {
		saved = " (saved)"
	}
	fmt.Fprintf(a.out, "%s%s\nState: %s\n", a.conn.BaseURL(), saved, a.conn.State())
}
