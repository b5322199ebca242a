package diag

type dedupKey struct {
	level Level
	key   string
}

// DedupReporter wraps another Diagnostics and suppresses messages reported
// twice: same level, code, spans, text, labels and help.
type DedupReporter struct {
	next Diagnostics
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Diagnostics that filters out duplicates while
// forwarding unique messages to the provided one.
func NewDedupReporter(next Diagnostics) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(msg Message)    { r.ReportAs(msg, LevelOf(msg)) }
func (r *DedupReporter) ReportNow(msg Message) { r.ReportAsNow(msg, LevelOf(msg)) }

func (r *DedupReporter) ReportAs(msg Message, level Level) {
	if r.first(msg, level) {
		r.next.ReportAs(msg, level)
	}
}

func (r *DedupReporter) ReportAsNow(msg Message, level Level) {
	if r.first(msg, level) {
		r.next.ReportAsNow(msg, level)
	}
}

func (r *DedupReporter) first(msg Message, level Level) bool {
	if r == nil || msg == nil || r.next == nil {
		return false
	}
	key := dedupKey{level: level, key: messageKey(msg)}
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}
