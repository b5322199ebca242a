package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"venir/internal/diag"
	"venir/internal/diagfmt"
	"venir/internal/driver"
	"venir/internal/observ"
	"venir/internal/prof"
)

func runVerify(cmd *cobra.Command, flags *cliFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	args, err := flags.resolve(cmd)
	if err != nil {
		return usageError{err}
	}

	session, err := prof.Start(flags.profile)
	if err != nil {
		return usageError{err}
	}
	defer func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(stderr, "venir: %v\n", err)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cleanup, err := setupTracing(ctx, &args, stderr)
	if err != nil {
		return usageError{err}
	}
	defer cleanup()
	defer dumpTraceOnPanic(ctx, stderr)

	format, _ := diagfmt.ParseFormat(args.Format)
	reporter := diagfmt.NewReporter(stderr, format, diagfmt.PrettyOpts{
		Color:    useColor(args.Color, stderr),
		ShowHelp: true,
	})
	d := diag.NewDedupReporter(reporter)

	var timer *observ.Timer
	if args.Timings {
		timer = observ.NewTimer()
	}
	opts := driver.Options{
		Args:   args,
		Stdout: stdout,
		Timer:  timer,
	}
	// строки прогресса ломают поток JSON-записей
	if format == diagfmt.FormatPretty {
		opts.Progress = stderr
	}
	if _, err := driver.Run(ctx, stdin, opts, d); err != nil {
		return exitError{code: driver.ExitCode(err)}
	}
	return nil
}
