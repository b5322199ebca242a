package trace

import "context"

// carrier is everything trace keeps in a context: the tracer, the innermost
// open span and the run the events belong to.
type carrier struct {
	tracer Tracer
	span   uint64
	runID  string
}

type carrierKey struct{}

func carrierOf(ctx context.Context) carrier {
	if ctx != nil {
		if c, ok := ctx.Value(carrierKey{}).(carrier); ok {
			return c
		}
	}
	return carrier{tracer: Nop}
}

func withCarrier(ctx context.Context, c carrier) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, carrierKey{}, c)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return carrierOf(ctx).tracer
}

// WithTracer attaches t to ctx. The open span and run ID are kept.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	c := carrierOf(ctx)
	c.tracer = t
	return withCarrier(ctx, c)
}

// WithRunID tags every event emitted under ctx with id.
func WithRunID(ctx context.Context, id string) context.Context {
	c := carrierOf(ctx)
	c.runID = id
	return withCarrier(ctx, c)
}

// RunID returns the run tag set by WithRunID.
func RunID(ctx context.Context) string {
	return carrierOf(ctx).runID
}

// CurrentSpan returns the ID of the innermost span opened with Start, 0 at the root.
func CurrentSpan(ctx context.Context) uint64 {
	return carrierOf(ctx).span
}
