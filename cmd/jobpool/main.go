// jobpool drives the worker pool with a synthetic workload and reports how
// the jobs were spread across workers.
//
// Usage:
//
//	jobpool run [options]
//
// Settings are read from defaults, then --config (YAML or JSON), then any
// flags given explicitly. Example config:
//
//	workers: 8
//	jobs: 1000
//	submitters: 4
//	min_work: 1ms
//	max_work: 10ms
//	panic_every: 100
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// Version can be set with -ldflags "-X main.Version=...".
var Version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:     "jobpool",
		Usage:    "exercise a fixed-size worker pool",
		Version:  Version,
		Commands: []*cli.Command{createRunCommand()},
	}
}

func createRunCommand() *cli.Command {
	def := defaultRunConfig()
	return &cli.Command{
		Name:  "run",
		Usage: "submit a synthetic workload and print a report",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML or JSON config file"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: def.Workers, Usage: "number of workers"},
			&cli.IntFlag{Name: "jobs", Aliases: []string{"n"}, Value: def.Jobs, Usage: "number of jobs to submit"},
			&cli.IntFlag{Name: "submitters", Value: def.Submitters, Usage: "goroutines submitting concurrently"},
			&cli.DurationFlag{Name: "min-work", Value: def.MinWork, Usage: "shortest simulated job"},
			&cli.DurationFlag{Name: "max-work", Value: def.MaxWork, Usage: "longest simulated job"},
			&cli.IntFlag{Name: "panic-every", Usage: "make every Nth job panic (0 = never)"},
			&cli.FloatFlag{Name: "rate", Usage: "max jobs started per second (0 = unlimited)"},
			&cli.IntFlag{Name: "burst", Value: def.Burst, Usage: "rate limiter burst"},
			&cli.BoolFlag{Name: "affinity", Usage: "pin each worker to a CPU"},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel, Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to a rotated file instead of stderr"},
			&cli.BoolFlag{Name: "plain", Usage: "no colors and no progress bar"},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg := defaultRunConfig()
	if path := cmd.String("config"); path != "" {
		if err := loadConfigFile(&cfg, path); err != nil {
			return err
		}
	}
	applyFlags(&cfg, cmd)

	if err := cfg.validate(); err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closer.Close()

	if cfg.Plain {
		color.NoColor = true
	}

	out := os.Stdout
	printConfiguration(out, cfg)

	var bar *progressbar.ProgressBar
	if !cfg.Plain && cfg.Jobs > 0 {
		bar = progressbar.NewOptions(cfg.Jobs,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("running jobs"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
	}

	rep, err := runWorkload(ctx, cfg, logger, bar)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	printReport(out, rep)
	return nil
}
