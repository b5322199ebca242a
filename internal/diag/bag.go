package diag

import (
	"fmt"
	"strings"

	"venir/internal/ir"
)

// Entry is one reported message together with the level it was reported as.
type Entry struct {
	Msg   Message
	Level Level
}

type Bag struct {
	items []Entry
	max   int
}

// NewBag creates a bag holding at most max entries; max <= 0 means unbounded.
func NewBag(max int) *Bag {
	capacity := max
	if capacity <= 0 || capacity > 64 {
		capacity = 16
	}
	return &Bag{
		items: make([]Entry, 0, capacity),
		max:   max,
	}
}

// Add добавляет сообщение, учитывая лимит.
// Возвращает false, если сообщение не добавлено (достигнут лимит).
func (b *Bag) Add(e Entry) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, e)
	return true
}

// длина
func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Entry {
	return b.items
}

// Replay forwards every entry to d in insertion order.
func (b *Bag) Replay(d Diagnostics) {
	for _, e := range b.items {
		d.ReportAs(e.Msg, e.Level)
	}
}

// Drain replays and empties the bag.
func (b *Bag) Drain(d Diagnostics) {
	b.Replay(d)
	b.items = b.items[:0]
}

// messageKey identifies a message for DedupReporter. Two failing clauses
// of one function share code, span and note and differ only in labels.
func messageKey(msg Message) string {
	switch m := msg.(type) {
	case *VirMessage:
		var sb strings.Builder
		fmt.Fprintf(&sb, "vir:%s:%q:%q", m.Code.ID(), spanList(m.Spans), m.Note)
		for _, l := range m.Labels {
			fmt.Fprintf(&sb, ":label%q%q", l.Span.AsString, l.Note)
		}
		fmt.Fprintf(&sb, ":help%q", m.Help)
		return sb.String()
	case *SolverMessage:
		return "solver:" + m.Note
	}
	return fmt.Sprintf("%T", msg)
}

func spanList(spans []ir.Span) string {
	parts := make([]string, len(spans))
	for i, sp := range spans {
		parts[i] = sp.AsString
	}
	return strings.Join(parts, "|")
}
