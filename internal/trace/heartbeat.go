package trace

import (
	"context"
	"time"
)

// Heartbeat emits KindHeartbeat events until stopped. A heartbeat with no
// bucket end event since the previous one usually means a solver query is
// stuck.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat ticks every interval until ctx is cancelled or Stop is
// called. It returns nil when t is disabled or interval is not positive.
func StartHeartbeat(ctx context.Context, t Tracer, interval time.Duration) *Heartbeat {
	if t == nil || !t.Enabled() || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.beat(ctx, t, interval)
	return h
}

func (h *Heartbeat) beat(ctx context.Context, t Tracer, interval time.Duration) {
	defer close(h.done)
	started := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeDriver,
				Name:   "heartbeat",
				Detail: "elapsed " + now.Sub(started).Round(time.Millisecond).String(),
			})
		}
	}
}

// Stop ends the heartbeat and waits for the last event. Nil and repeated
// calls are fine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
