package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config (e.g. "sink.table").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline checks p without mutating it. Callers decide whether
// warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateDirs(p)...)

	switch strings.ToLower(strings.TrimSpace(p.FinalFormat)) {
	case "csv", "excel", "xlsx":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "final_format",
			Message:  fmt.Sprintf("unsupported final format %q; use csv or excel", p.FinalFormat),
		})
	}
	if strings.TrimSpace(p.LookupFile) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "lookup_file",
			Message:  "no zone lookup configured; location rankings will be skipped",
		})
	}

	issues = append(issues, validateSink(p.Sink)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	issues = append(issues, validateLog(p.Log)...)
	return issues
}

func validateDirs(p Pipeline) []Issue {
	var issues []Issue
	dirs := []struct{ path, val string }{
		{"input_dir", p.InputDir},
		{"staging_dir", p.StagingDir},
		{"result_dir", p.ResultDir},
	}
	seen := map[string]string{}
	for _, d := range dirs {
		if strings.TrimSpace(d.val) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: d.path, Message: d.path + " must not be empty"})
			continue
		}
		clean := filepath.Clean(d.val)
		if other, ok := seen[clean]; ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     d.path,
				Message:  fmt.Sprintf("%s and %s point to the same directory %q", other, d.path, clean),
			})
		}
		seen[clean] = d.path
	}
	return issues
}

func validateSink(s Sink) []Issue {
	var issues []Issue
	if strings.TrimSpace(s.Kind) == "" {
		return nil
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.kind",
			Message:  fmt.Sprintf("unknown sink kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.dsn",
			Message:  "sink.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.table",
			Message:  "sink.table must not be empty",
		})
	}
	if s.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "sink.batch_size",
			Message:  "batch_size must not be negative",
		})
	} else if s.BatchSize == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "sink.batch_size",
			Message:  "batch_size=0; the default of 500 will be used",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(strings.TrimSpace(m.Backend)) {
	case "", "none":
	case "pushgateway", "prom", "prometheus":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires pushgateway_url",
			})
		} else if u, err := url.Parse(m.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  fmt.Sprintf("pushgateway_url %q is not an absolute URL", m.PushgatewayURL),
			})
		}
	case "datadog", "dogstatsd":
		if strings.TrimSpace(m.DogstatsdAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "metrics.dogstatsd_addr",
				Message:  "dogstatsd_addr is empty; 127.0.0.1:8125 will be used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; use none, pushgateway or datadog", m.Backend),
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue
	if l.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "log.level",
				Message:  fmt.Sprintf("unknown log level %q", l.Level),
			})
		}
	}
	switch l.Format {
	case "", "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q; use console or json", l.Format),
		})
	}
	return issues
}
