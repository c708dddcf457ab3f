package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atinyakov/FinWise/internal/client/api"
	"github.com/atinyakov/FinWise/internal/client/connectivity"
	"github.com/atinyakov/FinWise/internal/client/storage"
)

var errNotConfirmed = errors.New("identity not confirmed")

// gate stands in for the OS biometric prompt on a terminal.
func (a *app) gate() api.BiometricGate {
	return api.BiometricGateFunc(func(_ context.Context, reason string) error {
		ok, err := a.prompt.Confirm(reason + ": is this you?")
		if err != nil {
			return err
		}
		if !ok {
			return errNotConfirmed
		}
		return nil
	})
}

func newLoginCmd(a *app) *cobra.Command {
	var (
		quick       bool
		remember    bool
		googleToken string
		fbToken     string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long: `Sign in with email and password, a Google ID token or a Facebook
access token. --quick reuses credentials saved with --remember.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.connect(ctx)

			var (
				resp *api.AuthResponse
				err  error
			)
			switch {
			case quick:
				resp, err = a.client.QuickLogin(ctx, a.gate(), a.aead)
				if errors.Is(err, storage.ErrBiometricsDisabled) {
					return fmt.Errorf("%w: sign in with --remember first", err)
				}
			case googleToken != "":
				resp, err = a.client.GoogleLogin(ctx, googleToken)
			case fbToken != "":
				resp, err = a.client.FacebookLogin(ctx, fbToken)
			default:
				var email, password string
				if email, err = a.prompt.Required("Email"); err != nil {
					return err
				}
				if password, err = a.prompt.Required("Password"); err != nil {
					return err
				}
				resp, err = a.client.Login(ctx, email, password)
				if err == nil && remember {
					if err := a.client.EnableBiometrics(a.aead, email, password); err != nil {
						return err
					}
					fmt.Fprintln(a.out, "Quick login enabled.")
				}
			}
			if err != nil {
				var authErr *connectivity.AuthenticationError
				if errors.As(err, &authErr) {
					return fmt.Errorf("sign-in rejected: %s", authErr.Message)
				}
				return a.fail(err)
			}
			a.welcome(resp)
			return nil
		},
	}
	cmd.Flags().BoolVar(&quick, "quick", false, "sign in with saved credentials")
	cmd.Flags().BoolVar(&remember, "remember", false, "save credentials for --quick")
	cmd.Flags().StringVar(&googleToken, "google-token", "", "Google ID token")
	cmd.Flags().StringVar(&fbToken, "facebook-token", "", "Facebook access token")
	cmd.MarkFlagsMutuallyExclusive("quick", "google-token", "facebook-token")
	return cmd
}

func (a *app) welcome(resp *api.AuthResponse) {
	name := "back"
	if resp.User != nil && resp.User.FullName != "" {
		name = resp.User.FullName
	}
	fmt.Fprintln(a.out, renderOK("Welcome, "+name+"!"))
	if path, ok := a.client.PostLoginRedirect(); ok {
		fmt.Fprintf(a.out, "You were on %s before the session ended.\n", path)
	}
}

func newRegisterCmd(a *app) *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.connect(ctx)

			var (
				in  api.RegisterRequest
				err error
			)
			if in.Email, err = a.prompt.Required("Email"); err != nil {
				return err
			}
			if in.Password, err = a.prompt.Required("Password"); err != nil {
				return err
			}
			if in.FullName, err = a.prompt.Required("Full name"); err != nil {
				return err
			}
			if in.Currency, err = a.prompt.Default("Currency", currency); err != nil {
				return err
			}
			in.Currency = strings.ToUpper(in.Currency)

			resp, err := a.client.Register(ctx, in)
			if err != nil {
				return a.fail(err)
			}
			a.welcome(resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "USD", "default currency")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and revoke the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, "Signed out.")
			return nil
		},
	}
}

func newPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a forgotten password with an emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a.connect(ctx)

			email, err := a.prompt.Required("Email")
			if err != nil {
				return err
			}
			msg, err := a.client.ForgotPassword(ctx, email)
			if err != nil {
				return a.fail(err)
			}
			if msg != "" {
				fmt.Fprintln(a.out, msg)
			}

			code, err := a.prompt.Required("Code")
			if err != nil {
				return err
			}
			if err := a.client.VerifyResetCode(ctx, email, code); err != nil {
				return a.fail(err)
			}
			password, err := a.prompt.Required("New password")
			if err != nil {
				return err
			}
			if err := a.client.ResetPassword(ctx, email, code, password); err != nil {
				return a.fail(err)
			}
			fmt.Fprintln(a.out, renderOK("Password changed. You can log in now."))
			return nil
		},
	}
}

func newQuickLoginCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick-login",
		Short: "Manage saved credentials for login --quick",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "disable",
			Short: "Forget saved credentials",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				if err := a.client.DisableBiometrics(); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Quick login disabled.")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Tell whether quick login is enabled",
			Args:  cobra.NoArgs,
			Run: func(*cobra.Command, []string) {
				state := "disabled"
				if storage.Flag(a.store, storage.KeyFaceIDEnabled) {
					state = "enabled"
				}
				fmt.Fprintf(a.out, "Quick login is %s.\n", state)
			},
		},
	)
	return cmd
}
