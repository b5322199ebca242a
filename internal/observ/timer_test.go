package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	idx := tm.Begin("merge")
	tm.End(idx, "3 units")
	tm.Record("bucket k::m", 2*time.Millisecond, "")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %d", len(rep.Phases))
	}
	if rep.Phases[0].Note != "3 units" || rep.Phases[1].DurationMS != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.TotalMS < 2 {
		t.Fatalf("total %.2f below recorded phase", rep.TotalMS)
	}
	if rep.BusyMS < rep.Phases[1].DurationMS {
		t.Fatalf("busy %.2f below recorded phase", rep.BusyMS)
	}
	sum := tm.Summary()
	if !strings.Contains(sum, "merge") || !strings.Contains(sum, "// 3 units") || !strings.Contains(sum, "total") {
		t.Fatalf("summary:\n%s", sum)
	}
}

func TestTimerIgnoresBadIndexAndNil(t *testing.T) {
	tm := NewTimer()
	if d := tm.End(5, ""); d != 0 {
		t.Fatalf("bad index should be ignored")
	}
	var nilTimer *Timer
	nilTimer.End(nilTimer.Begin("x"), "")
	if len(nilTimer.Report().Phases) != 0 {
		t.Fatalf("nil timer reports nothing")
	}
}

func TestTimerTotalIsWallClockForOverlaps(t *testing.T) {
	tm := NewTimer()
	tm.Record("bucket a", 50*time.Millisecond, "")
	tm.Record("bucket b", 50*time.Millisecond, "")
	rep := tm.Report()
	if rep.BusyMS < 100 {
		t.Fatalf("busy = %.2f", rep.BusyMS)
	}
	if rep.TotalMS >= rep.BusyMS {
		t.Fatalf("overlapping phases counted twice: total %.2f busy %.2f", rep.TotalMS, rep.BusyMS)
	}
}
