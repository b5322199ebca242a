package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"venir/internal/version"
)

// exitError carries a pipeline failure: diagnostics were already written.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// usageError marks bad flags, arguments or configuration.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	flags := newCLIFlags()
	root := &cobra.Command{
		Use:   "venir",
		Short: "Verification pipeline for program units",
		Long: `venir reads one program unit (JSON) on stdin, merges it with the trusted
libraries, validates it and verifies every module. Diagnostics are written
to stderr as JSON records, one per line.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, flags, stdin, stdout, stderr)
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	flags.register(root)
	root.AddCommand(newVersionCmd(), newStatsCmd(stderr))
	return root
}

// execute runs the CLI and returns the process exit code:
// 0 success, 1 pipeline failure, 2 usage error.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	var ee exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	}
	fmt.Fprintf(stderr, "venir: %v\n", err)
	return 2
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// isTerminal проверяет, является ли w терминалом
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(w) && os.Getenv("NO_COLOR") == ""
}
