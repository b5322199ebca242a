package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"venir/internal/diag"
	"venir/internal/ir"
)

// TestJSONRecordsGolden фиксирует точную форму строк для внешних инструментов.
func TestJSONRecordsGolden(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSONReporter(&buf)

	r.Report(diag.Errorf(diag.VerifyPostcondition, "postcondition not satisfied").
		WithSpan(ir.Span{AsString: "(0, 10, 40) fn double"}).
		WithLabel(ir.Span{AsString: "(0, 20, 30) ensures"}, "failed this postcondition"))
	r.Report(diag.Errorf(diag.FilterUnknownModule, "could not find module lib::missing"))
	r.ReportNow(diag.Errorf(diag.VerifyAssertion, "assertion failed").
		WithSpan(ir.Span{AsString: "no tuple here"}))
	r.Report(diag.Warningf(diag.WfAssumeUsed, "assume used in proof"))
	r.Report(diag.Notef(diag.VerifyTriggerChosen, "automatically chosen trigger: f(x)"))
	r.Report(&diag.SolverMessage{Level: diag.LevelError, Note: "(1, 2, 3) unexpected output <oops>"})
	r.ReportAs(diag.Warningf(diag.WfAssumeUsed, "re-leveled"), diag.LevelNote)
	r.ReportAsNow(&diag.SolverMessage{Level: diag.LevelNote, Note: "label only", Label: true}, diag.LevelWarning)

	if err := r.Err(); err != nil {
		t.Fatalf("write error: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "json_records", buf.Bytes())
}

func TestBuildRecordHasExactlyOneKind(t *testing.T) {
	msgs := []struct {
		msg   diag.Message
		level diag.Level
		kind  string
	}{
		{diag.Errorf(diag.Internal, "boom"), diag.LevelError, "Error"},
		{diag.Errorf(diag.Internal, "boom"), diag.LevelWarning, "Warning"},
		{diag.Errorf(diag.Internal, "boom"), diag.LevelNote, "Note"},
		{&diag.SolverMessage{Note: "x"}, diag.LevelError, "AirMessage"},
	}
	for _, m := range msgs {
		data, err := json.Marshal(BuildRecord(m.msg, m.level))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(obj) != 1 {
			t.Fatalf("expected one key, got %s", data)
		}
		if _, ok := obj[m.kind]; !ok {
			t.Fatalf("expected key %s, got %s", m.kind, data)
		}
	}
}

func TestPrettyReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewPrettyReporter(&buf, PrettyOpts{Color: false, ShowHelp: true})
	r.Report(diag.Errorf(diag.VerifyPostcondition, "postcondition not satisfied").
		WithSpan(ir.Span{AsString: "(0, 10, 40) fn double"}).
		WithLabel(ir.Span{AsString: "(0, 20, 30)"}, "failed this postcondition").
		WithHelp("strengthen the body"))
	r.Report(&diag.SolverMessage{Note: "(3, 4, 5) boom"})

	out := buf.String()
	for _, want := range []string{
		"error[V7001]: postcondition not satisfied\n",
		"  --> (0, 10, 40)\n",
		"  = failed this postcondition: (0, 20, 30)\n",
		"  = help: strengthen the body\n",
		"solver: (3, 4, 5) boom\n",
		"  --> (3, 4, 5)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour codes emitted with Color=false")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("pretty"); err != nil || f != FormatPretty {
		t.Fatalf("pretty: %v %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("default: %v %v", f, err)
	}
	if _, err := ParseFormat("sarif"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
