package diag

import "sync/atomic"

// Diagnostics — единственный канал, через который фазы выводят сообщения.
// Реализации: BagReporter (кладёт в Bag), DedupReporter, Counter,
// diagfmt.JSONReporter, diagfmt.PrettyReporter.
//
// The *Now variants exist for callers that need ordering guarantees; none of
// the implementations buffer, so they behave like their plain counterparts.
type Diagnostics interface {
	Report(msg Message)
	ReportNow(msg Message)
	ReportAs(msg Message, level Level)
	ReportAsNow(msg Message, level Level)
}

// BagReporter — адаптер, который пишет в *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(msg Message)    { r.ReportAs(msg, LevelOf(msg)) }
func (r BagReporter) ReportNow(msg Message) { r.ReportAs(msg, LevelOf(msg)) }
func (r BagReporter) ReportAs(msg Message, level Level) {
	if r.Bag == nil || msg == nil {
		return
	}
	r.Bag.Add(Entry{Msg: msg, Level: level})
}
func (r BagReporter) ReportAsNow(msg Message, level Level) { r.ReportAs(msg, level) }

// Nop discards everything.
type Nop struct{}

func (Nop) Report(Message)             {}
func (Nop) ReportNow(Message)          {}
func (Nop) ReportAs(Message, Level)    {}
func (Nop) ReportAsNow(Message, Level) {}

// Counter forwards to next and counts what went through by effective level.
type Counter struct {
	next   Diagnostics
	counts [LevelError + 1]atomic.Int64
}

func NewCounter(next Diagnostics) *Counter {
	return &Counter{next: next}
}

func (c *Counter) Report(msg Message)    { c.ReportAs(msg, LevelOf(msg)) }
func (c *Counter) ReportNow(msg Message) { c.ReportAsNow(msg, LevelOf(msg)) }

func (c *Counter) ReportAs(msg Message, level Level) {
	c.count(level)
	if c.next != nil {
		c.next.ReportAs(msg, level)
	}
}

func (c *Counter) ReportAsNow(msg Message, level Level) {
	c.count(level)
	if c.next != nil {
		c.next.ReportAsNow(msg, level)
	}
}

func (c *Counter) count(level Level) {
	if level <= LevelError {
		c.counts[level].Add(1)
	}
}

// Count returns how many messages were reported at level.
func (c *Counter) Count(level Level) int {
	if level > LevelError {
		return 0
	}
	return int(c.counts[level].Load())
}
