package diagfmt

import (
	"encoding/json"
	"io"
	"sync"

	"venir/internal/diag"
	"venir/internal/source"
)

// ErrorJSON is the payload of an Error record.
type ErrorJSON struct {
	ErrorMessage     string `json:"error_message"`
	ErrorSpan        string `json:"error_span"`
	SecondaryMessage string `json:"secondary_message"`
}

// WarningJSON is the payload of a Warning record.
type WarningJSON struct {
	WarningMessage string `json:"warning_message"`
}

// CrashJSON is the payload of a solver-originated record.
type CrashJSON struct {
	CrashMessage string `json:"crash_message"`
	CrashSpan    string `json:"crash_span"`
}

// RecordJSON is one output line. Exactly one field is set; the encoded form is
// an object with a single key naming the kind: Error, Warning, Note or
// AirMessage.
type RecordJSON struct {
	Error      *ErrorJSON   `json:"Error,omitempty"`
	Warning    *WarningJSON `json:"Warning,omitempty"`
	Note       *string      `json:"Note,omitempty"`
	AirMessage *CrashJSON   `json:"AirMessage,omitempty"`
}

// BuildRecord converts a message reported at level into its JSON record.
// Solver messages always render as crash records.
func BuildRecord(msg diag.Message, level diag.Level) RecordJSON {
	switch m := msg.(type) {
	case *diag.SolverMessage:
		return RecordJSON{AirMessage: &CrashJSON{
			CrashMessage: m.Note,
			CrashSpan:    source.ExtractPrefix(m.Note),
		}}
	case *diag.VirMessage:
		switch level {
		case diag.LevelNote:
			note := m.Note
			return RecordJSON{Note: &note}
		case diag.LevelWarning:
			return RecordJSON{Warning: &WarningJSON{WarningMessage: m.Note}}
		default:
			block := &ErrorJSON{ErrorMessage: m.Note}
			if n := len(m.Spans); n > 0 {
				block.ErrorSpan = source.ExtractPrefix(m.Spans[n-1].AsString)
			}
			// последняя метка перекрывает основной span
			if n := len(m.Labels); n > 0 {
				label := m.Labels[n-1]
				block.SecondaryMessage = label.Note
				block.ErrorSpan = source.ExtractPrefix(label.Span.AsString)
			}
			return RecordJSON{Error: block}
		}
	}
	return RecordJSON{}
}

// JSONReporter writes one JSON record per line to w (conventionally stderr).
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
	err error
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONReporter{enc: enc}
}

func (r *JSONReporter) Report(msg diag.Message)    { r.ReportAs(msg, diag.LevelOf(msg)) }
func (r *JSONReporter) ReportNow(msg diag.Message) { r.ReportAs(msg, diag.LevelOf(msg)) }

func (r *JSONReporter) ReportAs(msg diag.Message, level diag.Level) {
	if msg == nil {
		return
	}
	rec := BuildRecord(msg, level)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(rec); err != nil && r.err == nil {
		r.err = err
	}
}

func (r *JSONReporter) ReportAsNow(msg diag.Message, level diag.Level) { r.ReportAs(msg, level) }

// Err returns the first write error, if any.
func (r *JSONReporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}
