package main

import (
	"context"
	"fmt"
	"io"

	"venir/internal/config"
	"venir/internal/trace"
)

// setupTracing builds the tracer described by args and attaches it to ctx.
// The returned cleanup flushes and closes it.
func setupTracing(ctx context.Context, args *config.Args, stderr io.Writer) (context.Context, func(), error) {
	level, err := trace.ParseLevel(args.TraceLevel)
	if err != nil {
		return ctx, nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff && args.TraceOutput == "" {
		return trace.WithTracer(ctx, trace.Nop), func() {}, nil
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}
	mode, err := trace.ParseMode(args.TraceMode)
	if err != nil {
		return ctx, nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	format, err := trace.ParseFormat(args.TraceFormat)
	if err != nil {
		return ctx, nil, fmt.Errorf("invalid trace format: %w", err)
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: args.TraceOutput,
	}
	if args.TraceOutput == "" || args.TraceOutput == "-" {
		cfg.Output = stderr
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	heartbeat := trace.StartHeartbeat(ctx, tracer, args.TraceHeartbeat)
	cleanup := func() {
		heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(stderr, "trace: close error: %v\n", err)
		}
	}
	return trace.WithTracer(ctx, tracer), cleanup, nil
}

// dumpTraceOnPanic writes the ring buffer, if any, before re-panicking.
func dumpTraceOnPanic(ctx context.Context, stderr io.Writer) {
	r := recover()
	if r == nil {
		return
	}
	if ring := trace.RingOf(trace.FromContext(ctx)); ring != nil {
		fmt.Fprintln(stderr, "trace: last events before panic:")
		_ = ring.Dump(stderr, trace.FormatText)
	}
	panic(r)
}
