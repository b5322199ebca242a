package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"venir/internal/config"
)

const emptyUnit = `{"name":"empty"}`

const failingUnit = `{
  "name": "k",
  "modules": [{"path": {"krate": "k", "segments": ["m"]}, "span": {"as_string": "(0, 0, 1)"}}],
  "functions": [{
    "name": {"krate": "k", "segments": ["m", "off"]},
    "owning": {"krate": "k", "segments": ["m"]},
    "span": {"as_string": "(0, 10, 40) fn off"},
    "mode": "exec",
    "public": true,
    "params": [{"name": "x", "typ": {"kind": "uint", "bits": 8}}],
    "ret": {"name": "r", "typ": {"kind": "int"}},
    "ensures": [{"kind": "binop", "op": "==", "span": {"as_string": "(0, 20, 30) ensures"},
      "args": [{"kind": "var", "name": "r", "span": {"as_string": ""}},
               {"kind": "binop", "op": "+", "span": {"as_string": ""},
                "args": [{"kind": "var", "name": "x", "span": {"as_string": ""}},
                         {"kind": "const", "int": 1, "span": {"as_string": ""}}]}]}],
    "body": {"kind": "var", "name": "x", "span": {"as_string": ""}}
  }]
}`

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Chdir(t.TempDir())
	var stdout, stderr bytes.Buffer
	code := execute(append([]string{"--no-vstd"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestExitCodes(t *testing.T) {
	if code, _, stderr := runCLI(t, emptyUnit); code != 0 || stderr != "" {
		t.Fatalf("empty unit: code %d, stderr %q", code, stderr)
	}
	if code, _, _ := runCLI(t, emptyUnit, "--rlimit", "-1"); code != 2 {
		t.Fatalf("negative rlimit: code %d", code)
	}
	if code, _, _ := runCLI(t, emptyUnit, "--no-such-flag"); code != 2 {
		t.Fatalf("unknown flag: code %d", code)
	}
	if code, _, _ := runCLI(t, "[]"); code != 1 {
		t.Fatalf("malformed input: code %d", code)
	}
}

func TestFailingUnitWritesOneJSONRecord(t *testing.T) {
	code, _, stderr := runCLI(t, failingUnit)
	if code != 1 {
		t.Fatalf("code %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) != 1 {
		t.Fatalf("want one record, got:\n%s", stderr)
	}
	var rec map[string]map[string]string
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("decode %q: %v", lines[0], err)
	}
	e, ok := rec["Error"]
	if !ok || e["error_message"] != "postcondition not satisfied" || e["error_span"] != "(0, 20, 30)" {
		t.Fatalf("record: %v", rec)
	}
}

func TestEveryFailingClauseGetsItsOwnRecord(t *testing.T) {
	second := `{"kind": "binop", "op": "==", "span": {"as_string": "(0, 31, 39) ensures"},
      "args": [{"kind": "var", "name": "r", "span": {"as_string": ""}},
               {"kind": "binop", "op": "+", "span": {"as_string": ""},
                "args": [{"kind": "var", "name": "x", "span": {"as_string": ""}},
                         {"kind": "const", "int": 2, "span": {"as_string": ""}}]}]}],
    "body"`
	unit := strings.Replace(failingUnit, `}],
    "body"`, "}, "+second, 1)
	if unit == failingUnit {
		t.Fatalf("fixture rewrite did not apply")
	}

	code, _, stderr := runCLI(t, unit)
	if code != 1 {
		t.Fatalf("code %d, stderr %q", code, stderr)
	}
	var spans []string
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var rec map[string]map[string]string
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		if e, ok := rec["Error"]; ok {
			spans = append(spans, e["error_span"])
		}
	}
	want := []string{"(0, 20, 30)", "(0, 31, 39)"}
	if len(spans) != len(want) || spans[0] != want[0] || spans[1] != want[1] {
		t.Fatalf("error spans = %v, want %v\n%s", spans, want, stderr)
	}
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venir.toml")
	if err := os.WriteFile(path, []byte("rlimit = -3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, emptyUnit, "--config", path); code != 2 {
		t.Fatalf("invalid file value accepted: code %d", code)
	}
	if code, _, stderr := runCLI(t, emptyUnit, "--config", path, "--rlimit", "5"); code != 0 {
		t.Fatalf("flag did not override file: code %d, stderr %q", code, stderr)
	}
}

func TestEveryConfigFieldHasAFlag(t *testing.T) {
	root := newRootCmd(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	for _, name := range config.FlagNames() {
		if root.Flags().Lookup(name) == nil {
			t.Errorf("no flag for %s", name)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	var stdout bytes.Buffer
	code := execute([]string{"version", "--format", "json"}, strings.NewReader(""), &stdout, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("code %d", code)
	}
	var p versionPayload
	if err := json.Unmarshal(stdout.Bytes(), &p); err != nil || p.Tool != "venir" || p.Version == "" {
		t.Fatalf("payload %+v (%v)", p, err)
	}
}

func TestStatsReadsBackRecordedRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "stats.db")
	code, stdout, stderr := runCLI(t, emptyUnit, "--output-json", "--stats-db", db)
	if code != 0 {
		t.Fatalf("code %d, stderr %q", code, stderr)
	}
	var recorded struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(stdout), &recorded); err != nil || recorded.RunID == "" {
		t.Fatalf("stats output %q (%v)", stdout, err)
	}

	var out bytes.Buffer
	code = execute([]string{"stats", "--db", db, recorded.RunID}, strings.NewReader(""), &out, &bytes.Buffer{})
	if code != 0 {
		t.Fatalf("stats: code %d", code)
	}
	var run struct {
		RunID   string `json:"run_id"`
		Unit    string `json:"unit"`
		Success bool   `json:"success"`
	}
	if err := json.Unmarshal(out.Bytes(), &run); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if run.RunID != recorded.RunID || run.Unit != "empty" || !run.Success {
		t.Fatalf("run = %+v", run)
	}

	if code := execute([]string{"stats", "--db", db, "not-a-uuid"}, strings.NewReader(""), &out, &bytes.Buffer{}); code != 2 {
		t.Fatalf("bad run id: code %d", code)
	}
	if code := execute([]string{"stats", "--db", db}, strings.NewReader(""), &out, &bytes.Buffer{}); code != 2 {
		t.Fatalf("missing run id: code %d", code)
	}
}
