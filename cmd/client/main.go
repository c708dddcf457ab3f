// Command finwise is the terminal client for the FinWise backend.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "finwise",
		Short: "FinWise terminal client",
		Long: `finwise talks to a FinWise server.

On start it picks the saved server URL or the platform default, probes it
and falls back to the configured alternatives when it does not answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to the client config file")
	pf.StringVar(&a.platform, "platform", "", "endpoint preset: ios-simulator, android-emulator or device")
	pf.StringVar(&a.apiURL, "api-url", "", "server base URL, replaces the platform default")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newConnectCmd(a),
		newURLCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newPasswordCmd(a),
		newQuickLoginCmd(a),
		newProfileCmd(a),
		newTxCmd(a),
		newReceiptCmd(a),
		newNotificationsCmd(a),
		newShellCmd(a),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and date",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "FinWise Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		},
	}
}

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		var shown *shownError
		if !errors.As(err, &shown) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
