package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/fireflow/internal/common"
)

// execFunc runs one shell line split into words.
type execFunc func(ctx context.Context, args []string) error

// runShell is a read-eval-print loop over exec. It exits on EOF, "exit" or
// "quit". Errors are printed and the loop goes on.
func runShell(ctx context.Context, exec execFunc, statusFn func() string, scanner *bufio.Scanner, out io.Writer) {
	for {
		fmt.Fprintf(out, "fireflow%s> ", statusFn())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		case "help":
			parts = append([]string{"--help"}, parts[1:]...)
		}

		if err := exec(ctx, parts); err != nil {
			fmt.Fprintln(out, "error:", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func shellCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively over one open database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "fireflow shell (type 'help' for commands, 'exit' to leave)")

			exec := func(ctx context.Context, args []string) error {
				line := &cobra.Command{Use: "fireflow", SilenceUsage: true, SilenceErrors: true}
				addCommands(line, rt)
				line.SetArgs(args)
				line.SetIn(cmd.InOrStdin())
				line.SetOut(out)
				line.SetErr(cmd.ErrOrStderr())
				return line.ExecuteContext(ctx)
			}
			runShell(cmd.Context(), exec, rt.status(cmd.Context()), bufio.NewScanner(cmd.InOrStdin()), out)
			return nil
		},
	}
}

// status returns the prompt suffix naming the current user.
func (rt *runtime) status(ctx context.Context) func() string {
	return func() string {
		ctx, cancel := rt.app.opContext(ctx)
		defer cancel()

		u, err := rt.app.uc.GetCurrentUser.Invoke(ctx)
		switch {
		case errors.Is(err, common.ErrNoCurrentUser):
			return ""
		case err != nil:
			return " (?)"
		}
		return fmt.Sprintf(" (%s)", u.Identification())
	}
}
