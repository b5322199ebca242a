package config

// field copies one setting from src to dst. Names match the command-line
// flags so that explicitly set flags win over file values.
type field struct {
	name string
	copy func(dst, src *Args)
}

var fields = []field{
	{"rlimit", func(d, s *Args) { d.Rlimit = s.Rlimit }},
	{"solver", func(d, s *Args) { d.Solver = s.Solver }},
	{"solver-path", func(d, s *Args) { d.SolverPath = s.SolverPath }},
	{"no-verify", func(d, s *Args) { d.NoVerify = s.NoVerify }},
	{"no-cheating", func(d, s *Args) { d.NoCheating = s.NoCheating }},
	{"verify-root", func(d, s *Args) { d.VerifyRoot = s.VerifyRoot }},
	{"verify-module", func(d, s *Args) { d.VerifyModule = append([]string(nil), s.VerifyModule...) }},
	{"verify-only-module", func(d, s *Args) { d.VerifyOnlyModule = append([]string(nil), s.VerifyOnlyModule...) }},
	{"verify-function", func(d, s *Args) { d.VerifyFunction = s.VerifyFunction }},
	{"triggers", func(d, s *Args) { d.Triggers = s.Triggers }},
	{"continue-on-error", func(d, s *Args) { d.ContinueOnError = s.ContinueOnError }},
	{"jobs", func(d, s *Args) { d.Jobs = s.Jobs }},
	{"import", func(d, s *Args) { d.Imports = append([]string(nil), s.Imports...) }},
	{"no-vstd", func(d, s *Args) { d.NoVstd = s.NoVstd }},
	{"lib-root", func(d, s *Args) { d.LibRoot = s.LibRoot }},
	{"export", func(d, s *Args) { d.Export = s.Export }},
	{"log-dir", func(d, s *Args) { d.LogDir = s.LogDir }},
	{"log-all", func(d, s *Args) { d.LogAll = s.LogAll }},
	{"log-interpreter", func(d, s *Args) { d.LogInterp = s.LogInterp }},
	{"log-vir-poly", func(d, s *Args) { d.LogVirPoly = s.LogVirPoly }},
	{"log-smt", func(d, s *Args) { d.LogSMT = s.LogSMT }},
	{"log-call-graph", func(d, s *Args) { d.LogCallGraph = s.LogCallGraph }},
	{"log-pipeline", func(d, s *Args) { d.LogPipeline = s.LogPipeline }},
	{"format", func(d, s *Args) { d.Format = s.Format }},
	{"color", func(d, s *Args) { d.Color = s.Color }},
	{"trace", func(d, s *Args) { d.TraceOutput = s.TraceOutput }},
	{"trace-level", func(d, s *Args) { d.TraceLevel = s.TraceLevel }},
	{"trace-format", func(d, s *Args) { d.TraceFormat = s.TraceFormat }},
	{"trace-mode", func(d, s *Args) { d.TraceMode = s.TraceMode }},
	{"trace-heartbeat", func(d, s *Args) { d.TraceHeartbeat = s.TraceHeartbeat }},
	{"timings", func(d, s *Args) { d.Timings = s.Timings }},
	{"output-json", func(d, s *Args) { d.OutputJSON = s.OutputJSON }},
	{"stats-db", func(d, s *Args) { d.StatsDB = s.StatsDB }},
}

// FlagNames lists every setting that can be overridden on the command line.
func FlagNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Overlay copies into dst every setting of src whose flag name satisfies
// changed.
func Overlay(dst *Args, src *Args, changed func(name string) bool) {
	for _, f := range fields {
		if changed(f.name) {
			f.copy(dst, src)
		}
	}
}
