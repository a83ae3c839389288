// Command tripetl runs the trip-record pipeline: extract input files into a
// staging area, transform them into result files and load the consolidated
// dataset. Without -stage it shows an interactive menu.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"tripetl/internal/config"
	"tripetl/internal/logging"
	"tripetl/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is main without the process globals. It returns the exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tripetl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		cfgPath    = fs.String("config", "", "pipeline config file (.json, .yaml or .yml); defaults are used when empty")
		stageFlag  = fs.String("stage", "menu", "stage to run: extract, transform, load, all or menu")
		format     = fs.String("format", "", "final dataset format: csv or excel (overrides final_format)")
		backendFlg = fs.String("metrics-backend", "", "metrics backend: none, pushgateway or datadog (overrides config and METRICS_BACKEND)")
		validate   = fs.Bool("validate", false, "validate the configuration and exit")
		verbose    = fs.Bool("v", false, "enable debug logs")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	if *format != "" {
		cfg.FinalFormat = *format
	}
	if *backendFlg != "" {
		cfg.Metrics.Backend = *backendFlg
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	issues := config.ValidatePipeline(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid\n")
		return 1
	}
	if *validate {
		fmt.Fprintf(stdout, "configuration is valid\n")
		return 0
	}

	log, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Writer: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	flush, err := pipeline.SetupMetrics(cfg.Metrics, cfg.Job)
	if err != nil {
		log.Warn().Err(err).Msg("metrics: backend unavailable, metrics disabled")
		flush = func() error { return nil }
	}
	defer func() {
		if err := flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush failed")
		}
	}()

	r := pipeline.New(cfg, log)
	r.Report = stdout

	if strings.EqualFold(strings.TrimSpace(*stageFlag), "menu") {
		menu(ctx, r, stdin, stdout, log)
		return 0
	}
	stage, err := pipeline.ParseStage(*stageFlag)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	// Stage failures are logged by the runner and never change the exit code.
	_, _ = r.Run(ctx, stage, "")
	return 0
}

var menuStages = map[string]pipeline.Stage{
	"1": pipeline.StageExtract,
	"2": pipeline.StageTransform,
	"3": pipeline.StageLoad,
	"4": pipeline.StageAll,
}

const menuText = `
1) Extract
2) Transform
3) Load
4) Full pipeline
5) Exit
Choose an option: `

// menu prompts until the user picks Exit, stdin ends or ctx is cancelled.
// Invalid choices re-prompt.
func menu(ctx context.Context, r *pipeline.Runner, stdin io.Reader, stdout io.Writer, log zerolog.Logger) {
	sc := bufio.NewScanner(stdin)
	for ctx.Err() == nil {
		fmt.Fprint(stdout, menuText)
		if !sc.Scan() {
			fmt.Fprintln(stdout)
			return
		}
		choice := strings.TrimSpace(sc.Text())
		if choice == "5" {
			return
		}
		stage, ok := menuStages[choice]
		if !ok {
			fmt.Fprintf(stdout, "invalid choice %q, pick 1-5\n", choice)
			continue
		}
		if _, err := r.Run(ctx, stage, ""); err != nil {
			log.Debug().Err(err).Str("choice", choice).Msg("menu: stage returned an error")
		}
	}
}
