// Package metrics exposes a finished analysis report as Prometheus gauges
// (SPEC_FULL.md's "Post-analysis metrics server" supplement). Unlike the
// teacher's collectors, which update counters live as ETW events arrive,
// these gauges are set once from a completed analyze.Report and then
// served statically until the process exits.
package metrics

import (
	"github.com/phuslu/log"
	"github.com/prometheus/client_golang/prometheus"

	"locktrace/internal/analyze"
	"locktrace/internal/logger"
)

// ReportCollector holds the Prometheus metrics derived from one
// analyze.Report.
type ReportCollector struct {
	log log.Logger

	recordCount       prometheus.Gauge
	droppedRecords    prometheus.Gauge
	errorGroups       prometheus.Gauge
	mutexMisuse       *prometheus.GaugeVec
	rwMisuse          *prometheus.GaugeVec
	stillHeldMutexes  prometheus.Gauge
	stillHeldRWLocks  prometheus.Gauge
	acquisitionMean   *prometheus.GaugeVec
	acquisitionStddev *prometheus.GaugeVec
	acquisitionMax    *prometheus.GaugeVec
	holdMean          *prometheus.GaugeVec
	holdStddev        *prometheus.GaugeVec
	holdMax           *prometheus.GaugeVec
	cooccurrencePairs prometheus.Gauge
}

// NewReportCollector builds the metric set for report. Call
// RegisterMetrics to attach it to a registry.
func NewReportCollector(report *analyze.Report) *ReportCollector {
	c := &ReportCollector{
		log: logger.NewLoggerWithContext("metrics"),

		recordCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_record_count",
			Help: "Total number of event records in the trace.",
		}),
		droppedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_dropped_records",
			Help: "Records lost to event-buffer overrun.",
		}),
		errorGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_error_groups",
			Help: "Distinct rc values observed among failed synchronization calls.",
		}),
		mutexMisuse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_mutex_misuse_groups",
			Help: "Distinct (lock, kind) mutex mis-use findings by kind.",
		}, []string{"kind"}),
		rwMisuse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_rwlock_misuse_groups",
			Help: "Distinct (lock, kind) rw-lock mis-use findings by kind.",
		}, []string{"kind"}),
		stillHeldMutexes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_still_held_mutexes",
			Help: "Mutexes still held when the trace ended.",
		}),
		stillHeldRWLocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_still_held_rwlocks",
			Help: "Rw-locks still held when the trace ended.",
		}),
		acquisitionMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_acquisition_ns_mean",
			Help: "Mean acquisition time in nanoseconds, by category.",
		}, []string{"category"}),
		acquisitionStddev: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_acquisition_ns_stddev",
			Help: "Acquisition time standard deviation in nanoseconds, by category.",
		}, []string{"category"}),
		acquisitionMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_acquisition_ns_max",
			Help: "Maximum observed acquisition time in nanoseconds, by category.",
		}, []string{"category"}),
		holdMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_hold_ns_mean",
			Help: "Mean hold time in nanoseconds, by category.",
		}, []string{"category"}),
		holdStddev: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_hold_ns_stddev",
			Help: "Hold time standard deviation in nanoseconds, by category.",
		}, []string{"category"}),
		holdMax: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locktrace_hold_ns_max",
			Help: "Maximum observed hold time in nanoseconds, by category.",
		}, []string{"category"}),
		cooccurrencePairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "locktrace_cooccurrence_pairs",
			Help: "Ranked lock pairs emitted by the co-occurrence pass.",
		}),
	}

	c.set(report)
	return c
}

func (c *ReportCollector) set(report *analyze.Report) {
	c.recordCount.Set(float64(report.RecordCount))
	c.droppedRecords.Set(float64(report.DroppedRecords))
	c.errorGroups.Set(float64(len(report.Errors)))
	c.stillHeldMutexes.Set(float64(len(report.StillHeldMutexes)))
	c.stillHeldRWLocks.Set(float64(len(report.StillHeldRWLocks)))
	c.cooccurrencePairs.Set(float64(len(report.Cooccurrence)))

	for _, g := range report.MutexMisuse {
		c.mutexMisuse.WithLabelValues(g.Kind.String()).Inc()
	}
	for _, g := range report.RWMisuse {
		c.rwMisuse.WithLabelValues(g.Kind.String()).Inc()
	}

	for cat, rep := range report.Durations {
		name := cat.String()
		c.acquisitionMean.WithLabelValues(name).Set(rep.Acquisition.Mean)
		c.acquisitionStddev.WithLabelValues(name).Set(rep.Acquisition.Stddev)
		c.acquisitionMax.WithLabelValues(name).Set(float64(rep.Acquisition.Max))
		c.holdMean.WithLabelValues(name).Set(rep.Hold.Mean)
		c.holdStddev.WithLabelValues(name).Set(rep.Hold.Stddev)
		c.holdMax.WithLabelValues(name).Set(float64(rep.Hold.Max))
	}
}

// RegisterMetrics registers every gauge with registry, following the same
// collector-list-then-loop shape used throughout the collector package
// this module is adapted from.
func (c *ReportCollector) RegisterMetrics(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		c.recordCount,
		c.droppedRecords,
		c.errorGroups,
		c.mutexMisuse,
		c.rwMisuse,
		c.stillHeldMutexes,
		c.stillHeldRWLocks,
		c.acquisitionMean,
		c.acquisitionStddev,
		c.acquisitionMax,
		c.holdMean,
		c.holdStddev,
		c.holdMax,
		c.cooccurrencePairs,
	}

	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}

	c.log.Info().Msg("Report metrics registered with Prometheus")
	return nil
}
