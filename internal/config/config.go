// Package config defines the pipeline configuration: directory layout, final
// output format, the optional warehouse sink, metrics and logging.
//
// A pipeline file is JSON or YAML (chosen by extension). Fields left out of
// the file keep the values from Default, and a small set of environment
// variables can override the result:
//
//	{
//	  "job": "tripetl",
//	  "input_dir": "data",
//	  "final_format": "excel",
//	  "sink": { "kind": "sqlite", "dsn": "result/trips.db", "table": "trips", "auto_create_table": true }
//	}
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level configuration object.
type Pipeline struct {
	// Job labels metrics and log lines of a run.
	Job string `json:"job" yaml:"job"`

	InputDir   string `json:"input_dir" yaml:"input_dir"`
	StagingDir string `json:"staging_dir" yaml:"staging_dir"`
	ResultDir  string `json:"result_dir" yaml:"result_dir"`

	// LookupFile is the zone lookup CSV used by the load summary. Optional.
	LookupFile string `json:"lookup_file" yaml:"lookup_file"`

	// FinalFormat is "csv" or "excel" ("xlsx" is accepted as an alias).
	FinalFormat string `json:"final_format" yaml:"final_format"`

	Sink    Sink    `json:"sink" yaml:"sink"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
	Log     Log     `json:"log" yaml:"log"`
}

// Sink configures the warehouse export of the final dataset. An empty Kind
// disables the export.
type Sink struct {
	// Kind is a registered storage kind: "sqlite", "postgres", "mssql" or "mysql".
	Kind string `json:"kind" yaml:"kind"`

	// DSN is passed to the backend driver unchanged.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table may be schema-qualified, e.g. "public.trips".
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates Table with TEXT columns when it is missing.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	BatchSize int `json:"batch_size" yaml:"batch_size"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `json:"backend" yaml:"backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DogstatsdAddr  string `json:"dogstatsd_addr" yaml:"dogstatsd_addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `json:"level" yaml:"level"`   // zerolog level name
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// Default returns the configuration used when no file is given.
func Default() Pipeline {
	return Pipeline{
		Job:         "tripetl",
		InputDir:    "data",
		StagingDir:  "staging",
		ResultDir:   "result",
		LookupFile:  filepath.Join("data", "taxi_zone_lookup.csv"),
		FinalFormat: "csv",
		Sink:        Sink{BatchSize: 500},
		Metrics:     Metrics{Backend: "none"},
		Log:         Log{Level: "info", Format: "console"},
	}
}

// Load reads path on top of Default. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. Unknown fields are rejected.
func Load(path string) (Pipeline, error) {
	p := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("config: %w", err)
	}
	if err := Decode(b, filepath.Ext(path), &p); err != nil {
		return p, fmt.Errorf("config: %s: %w", path, err)
	}
	return p, nil
}

// Decode decodes b into p according to ext (".json", ".yaml", ".yml"). An
// empty YAML document leaves p unchanged.
func Decode(b []byte, ext string, p *Pipeline) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode yaml: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(p); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	}
	return nil
}

// Environment variables read by ApplyEnv.
const (
	EnvInputDir       = "TRIPETL_INPUT_DIR"
	EnvStagingDir     = "TRIPETL_STAGING_DIR"
	EnvResultDir      = "TRIPETL_RESULT_DIR"
	EnvLookupFile     = "TRIPETL_LOOKUP_FILE"
	EnvFinalFormat    = "TRIPETL_FINAL_FORMAT"
	EnvSinkBatchSize  = "TRIPETL_SINK_BATCH_SIZE"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDogstatsdAddr  = "DOGSTATSD_ADDR"
)

// ApplyEnv overrides fields from the environment. lookup has the signature
// of os.LookupEnv; empty values are ignored. A batch size that is not an
// integer is returned as an error and leaves the field unchanged.
func (p *Pipeline) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvInputDir:       &p.InputDir,
		EnvStagingDir:     &p.StagingDir,
		EnvResultDir:      &p.ResultDir,
		EnvLookupFile:     &p.LookupFile,
		EnvFinalFormat:    &p.FinalFormat,
		EnvMetricsBackend: &p.Metrics.Backend,
		EnvPushgatewayURL: &p.Metrics.PushgatewayURL,
		EnvDogstatsdAddr:  &p.Metrics.DogstatsdAddr,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvSinkBatchSize); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvSinkBatchSize, err)
		}
		p.Sink.BatchSize = n
	}
	return nil
}
