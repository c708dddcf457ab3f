package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/atinyakov/FinWise/internal/client/connectivity"
)

const shellHelp = `Commands:
  connect                       probe the server and show its health
  url [show|set <url>|clear]    server URL
  login [--quick|--remember]    sign in
  register                      create an account
  logout                        sign out
  profile [update|delete]       your account
  tx list [--from --to]         transactions
  tx add [--type --amount ...]  record a transaction
  tx delete <id>
  receipt upload <file>
  receipt download <key>
  notifications [read <id>]
  help, exit`

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive session",
		Long: `Start an interactive session. The server is re-probed in the
background and a notice is printed when it stops answering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd.Context())
		},
	}
}

// runShell reads commands until exit or end of input. Each line runs as a
// finwise subcommand against the same session.
func (a *app) runShell(ctx context.Context) error {
	out := &syncWriter{w: a.out}
	a.out = out
	a.prompt.out = out

	ctx, cancel := context.WithCancel(ctx)
	a.connect(ctx)
	done := connectivity.StartWatch(ctx, a.conn, a.cfg.WatchInterval, func(err error) {
		fmt.Fprintln(out)
		a.show(err)
	})
	defer func() {
		cancel()
		<-done
	}()

	for {
		fmt.Fprint(out, "finwise> ")
		line, err := a.prompt.Line("")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			fmt.Fprintln(out, shellHelp)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye")
			return nil
		case "shell", "version":
			fmt.Fprintln(out, "Not available in the shell.")
		default:
			if err := a.dispatch(ctx, args); err != nil {
				var shown *shownError
				if !errors.As(err, &shown) {
					fmt.Fprintln(out, "Error:", err)
				}
			}
		}
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.out)
	root.SetErr(a.out)
	return root.ExecuteContext(ctx)
}

// syncWriter serializes writes from the shell loop and the watch
// goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
