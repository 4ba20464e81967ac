package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var (
	bold   = color.New(color.Bold)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// formatNumber formats an integer with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func printConfiguration(w io.Writer, cfg runConfig) {
	_, _ = bold.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  Workers:     %d\n", cfg.Workers)
	fmt.Fprintf(w, "  Jobs:        %s\n", formatNumber(int64(cfg.Jobs)))
	fmt.Fprintf(w, "  Submitters:  %d\n", cfg.Submitters)
	fmt.Fprintf(w, "  Work:        %v to %v per job\n", cfg.MinWork, cfg.MaxWork)
	if cfg.PanicEvery > 0 {
		fmt.Fprintf(w, "  Faults:      every %d jobs panics\n", cfg.PanicEvery)
	}
	if cfg.Rate > 0 {
		fmt.Fprintf(w, "  Rate limit:  %.1f jobs/sec (burst %d)\n", cfg.Rate, cfg.Burst)
	}
	fmt.Fprintln(w)
}

func printReport(w io.Writer, rep runReport) {
	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Results:")

	summary := tablewriter.NewWriter(w)
	summary.Header("Submitted", "Completed", "Panicked", "Elapsed", "Jobs/sec")
	summary.Append(
		formatNumber(int64(rep.Stats.Submitted)),
		formatNumber(int64(rep.Stats.Completed)),
		formatNumber(int64(rep.Stats.Panicked)),
		rep.Elapsed.Round(time.Millisecond).String(),
		fmt.Sprintf("%.1f", rep.Throughput()),
	)
	summary.Render()

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "Jobs per worker:")

	var total int64
	for _, n := range rep.PerWorker {
		total += n
	}

	perWorker := tablewriter.NewWriter(w)
	perWorker.Header("Worker", "Jobs", "Share")
	for id, n := range rep.PerWorker {
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total) * 100
		}
		perWorker.Append(
			fmt.Sprintf("%d", id),
			formatNumber(n),
			fmt.Sprintf("%.1f%%", share),
		)
	}
	perWorker.Render()

	fmt.Fprintln(w)
	switch {
	case rep.Aborted:
		_, _ = yellow.Fprintln(w, "Interrupted: submission stopped early, submitted jobs were drained.")
	case rep.Stats.Panicked > 0:
		_, _ = red.Fprintf(w, "%d jobs panicked; every worker kept running.\n", rep.Stats.Panicked)
	default:
		_, _ = green.Fprintln(w, "All jobs completed.")
	}
}
