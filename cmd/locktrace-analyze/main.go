// Command locktrace-analyze is the offline analysis engine (spec §4.2):
// it reads a sidecar and its event file, runs the analysis passes, and
// writes a report.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"locktrace/internal/analyze"
	"locktrace/internal/config"
	"locktrace/internal/eventlog"
	"locktrace/internal/logger"
	"locktrace/internal/metrics"
	"locktrace/internal/reportrender"
	"locktrace/internal/wire"
)

func main() {
	os.Exit(run())
}

// run contains the full CLI body so deferred cleanups execute before
// process exit (spec §6.3 "Exit code: 0 success, 1 on missing input, I/O
// failure, or malformed sidecar").
func run() int {
	cfg, flags, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "locktrace-analyze: %v\n", err)
		return 1
	}
	if cfg == nil {
		// -generate-config was handled and already printed its own message.
		return 0
	}

	if err := logger.ConfigureLogging(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "locktrace-analyze: failed to configure logging: %v\n", err)
		return 1
	}

	sidecar, err := wire.LoadSidecar(flags.SidecarPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load sidecar")
		return 1
	}

	reader, err := eventlog.OpenReader(sidecar.Measurements, sidecar.NRecords)
	if err != nil {
		log.Error().Err(err).Msg("failed to open event file")
		return 1
	}
	defer reader.Close()

	var ugRecords []wire.UsageRecord
	if cfg.Analyzer.UsageGroup && sidecar.UGMeasurements != "" {
		ugReader, err := eventlog.OpenUsageReader(sidecar.UGMeasurements, sidecar.UGNRecords)
		if err != nil {
			log.Warn().Err(err).Msg("usage-group trail requested but could not be opened")
		} else {
			defer ugReader.Close()
			ugRecords = ugReader.Records()
		}
	}

	log.Info().
		Str("sidecar", flags.SidecarPath).
		Int("n_records", reader.Len()).
		Uint64("n_records_max", sidecar.NRecordsMax).
		Bool("fork_warning", sidecar.ForkWarning).
		Msg("loaded trace")

	stream := analyze.NewStream(reader.Records())
	report := analyze.Run(stream, sidecar, cfg.Analyzer, ugRecords)

	if flags.ResolverPath != "" || flags.CorePath != "" {
		timeout := time.Duration(cfg.Analyzer.Resolver.TimeoutSeconds) * time.Second
		resolver := analyze.NewSymbolResolver(cfg.Analyzer.Resolver.Path, flags.CorePath, sidecar.ExeName, timeout)
		report.ResolveSymbols(stream, resolver)
	}

	log.Info().
		Int("errors", len(report.Errors)).
		Int("mutex_misuse", len(report.MutexMisuse)).
		Int("rwlock_misuse", len(report.RWMisuse)).
		Int("still_held_mutexes", len(report.StillHeldMutexes)).
		Int("still_held_rwlocks", len(report.StillHeldRWLocks)).
		Msg("analysis complete")

	if err := writeReport(flags, report); err != nil {
		log.Error().Err(err).Msg("failed to write report")
		return 1
	}

	if cfg.Analyzer.Cooccurrence.Enabled && len(report.Cooccurrence) > 0 {
		if err := writeCooccurrenceGraph(flags, report); err != nil {
			log.Warn().Err(err).Msg("failed to render co-occurrence graph")
		}
	}

	if cfg.Server.Enabled {
		serveMetrics(cfg, report)
	}

	return 0
}

// writeReport renders report to flags.ReportPath according to
// flags.TraceFormat (spec §6.3 "-T html|ascii"; ascii is the default
// when -T is omitted).
func writeReport(flags *config.Flags, report *analyze.Report) error {
	f, err := os.Create(flags.ReportPath)
	if err != nil {
		return fmt.Errorf("create report file %s: %w", flags.ReportPath, err)
	}
	defer f.Close()

	format := reportrender.Format(flags.TraceFormat)
	if format == "" {
		format = reportrender.FormatASCII
	}
	return reportrender.Render(f, report, format)
}

// writeCooccurrenceGraph renders report's co-occurrence pairs (spec
// §4.2.8) to a DOT description and feeds it to the external Graphviz
// layout engine to obtain SVG, writing the result alongside the report
// (spec §6.3 "-C include co-occurrence graph (slow)").
func writeCooccurrenceGraph(flags *config.Flags, report *analyze.Report) error {
	dot := reportrender.DOT(report.Cooccurrence)

	ctx, cancel := context.WithTimeout(context.Background(), reportrender.DefaultLayoutTimeout)
	defer cancel()

	svg, err := reportrender.RenderSVG(ctx, "", dot)
	if err != nil {
		return err
	}

	return os.WriteFile(flags.ReportPath+".svg", svg, 0o644)
}

// serveMetrics exposes the finished report as Prometheus gauges until a
// termination signal arrives (SPEC_FULL.md's "Post-analysis metrics
// server" supplement, following the teacher main.go's graceful-shutdown
// shape).
func serveMetrics(cfg *config.AppConfig, report *analyze.Report) {
	collector := metrics.NewReportCollector(report)
	registry := prometheus.NewRegistry()
	if err := collector.RegisterMetrics(registry); err != nil {
		log.Error().Err(err).Msg("failed to register report metrics")
		return
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>locktrace report</title></head><body>` +
			`<h1>locktrace report</h1><p><a href="` + cfg.Server.MetricsPath + `">Metrics</a></p></body></html>`))
	})

	srv := &http.Server{Addr: cfg.Server.ListenAddress, Handler: mux}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	go func() {
		log.Info().Str("address", cfg.Server.ListenAddress).Msg("serving report metrics")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down metrics server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down metrics server")
	}
}
