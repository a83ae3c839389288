package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

/*
TestValidatePipeline_DefaultIsClean verifies that the built-in defaults
produce no issues at all.
*/
func TestValidatePipeline_DefaultIsClean(t *testing.T) {
	if issues := ValidatePipeline(Default()); len(issues) != 0 {
		t.Fatalf("Default() issues: %+v", issues)
	}
}

func TestValidatePipeline_MissingJob(t *testing.T) {
	p := Default()
	p.Job = "  "
	if !hasIssue(t, ValidatePipeline(p), SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job")
	}
}

/*
TestValidatePipeline_Table covers one misconfiguration per case and the
issue it must produce.
*/
func TestValidatePipeline_Table(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pipeline)
		sev    IssueSeverity
		path   string
		msg    string
	}{
		{"empty input dir", func(p *Pipeline) { p.InputDir = "" }, SeverityError, "input_dir", "must not be empty"},
		{"staging equals result", func(p *Pipeline) { p.ResultDir = "staging/" }, SeverityError, "result_dir", "same directory"},
		{"bad format", func(p *Pipeline) { p.FinalFormat = "parquet" }, SeverityError, "final_format", "unsupported final format"},
		{"no lookup", func(p *Pipeline) { p.LookupFile = "" }, SeverityWarning, "lookup_file", "location rankings"},
		{"sink without dsn", func(p *Pipeline) { p.Sink = Sink{Kind: "sqlite", Table: "t", BatchSize: 10} }, SeverityError, "sink.dsn", "must not be empty"},
		{"sink without table", func(p *Pipeline) { p.Sink = Sink{Kind: "sqlite", DSN: "x.db", BatchSize: 10} }, SeverityError, "sink.table", "must not be empty"},
		{"unknown sink", func(p *Pipeline) { p.Sink = Sink{Kind: "oracle", DSN: "x", Table: "t", BatchSize: 1} }, SeverityWarning, "sink.kind", "unknown sink kind"},
		{"negative batch", func(p *Pipeline) { p.Sink = Sink{Kind: "sqlite", DSN: "x", Table: "t", BatchSize: -1} }, SeverityError, "sink.batch_size", "negative"},
		{"zero batch", func(p *Pipeline) { p.Sink = Sink{Kind: "sqlite", DSN: "x", Table: "t"} }, SeverityWarning, "sink.batch_size", "default of 500"},
		{"pushgateway no url", func(p *Pipeline) { p.Metrics.Backend = "pushgateway" }, SeverityError, "metrics.pushgateway_url", "requires"},
		{"pushgateway relative url", func(p *Pipeline) {
			p.Metrics = Metrics{Backend: "pushgateway", PushgatewayURL: "localhost"}
		}, SeverityError, "metrics.pushgateway_url", "absolute URL"},
		{"datadog no addr", func(p *Pipeline) { p.Metrics.Backend = "datadog" }, SeverityWarning, "metrics.dogstatsd_addr", "127.0.0.1:8125"},
		{"unknown backend", func(p *Pipeline) { p.Metrics.Backend = "graphite" }, SeverityError, "metrics.backend", "unknown metrics backend"},
		{"bad level", func(p *Pipeline) { p.Log.Level = "loud" }, SeverityError, "log.level", "unknown log level"},
		{"bad log format", func(p *Pipeline) { p.Log.Format = "xml" }, SeverityError, "log.format", "unknown log format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Default()
			tc.mutate(&p)
			issues := ValidatePipeline(p)
			if !hasIssue(t, issues, tc.sev, tc.path, tc.msg) {
				t.Fatalf("want %s at %s (%q); got %+v", tc.sev, tc.path, tc.msg, issues)
			}
		})
	}
}

func TestHasErrors(t *testing.T) {
	if HasErrors([]Issue{{Severity: SeverityWarning}}) {
		t.Fatalf("warnings only must not count as errors")
	}
	if !HasErrors([]Issue{{Severity: SeverityWarning}, {Severity: SeverityError}}) {
		t.Fatalf("expected HasErrors=true")
	}
}

func TestIssue_Error(t *testing.T) {
	got := Issue{Severity: SeverityError, Path: "sink.dsn", Message: "boom"}.Error()
	if got != "error at sink.dsn: boom" {
		t.Fatalf("Error() = %q", got)
	}
}
