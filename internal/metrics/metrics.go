package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/safient/safient-escrow/internal/domain"
)

const NAMESPACE = "safient_escrow"

// Sweep sources
const (
	SWEEP_SOURCE_CRON          = "cron"
	SWEEP_SOURCE_OPPORTUNISTIC = "opportunistic"
	SWEEP_SOURCE_SWEEPER       = "sweeper"
)

// SweepCounts are the counters of one sweep pass
type SweepCounts struct {
	Checked  int
	Expired  int
	Released int
	Failed   int
	Skipped  int
}

// Recorder records escrow engine and sweep metrics
//
//go:generate mockgen -source=metrics.go -destination=../mocks/metrics.go -package=mocks -mock_names=Recorder=MockRecorder
type Recorder interface {
	// TransferCreated counts a transfer whose funding payment was confirmed
	TransferCreated(purpose domain.TransferPurpose, lockedAmount uint64)
	// TransferFailed counts a transfer whose funding payment was rejected
	TransferFailed(purpose domain.TransferPurpose)
	// TransferSettled counts a reclaim or release with the payout sent
	TransferSettled(status domain.TransferStatus, auto bool, payout uint64)
	// SettlementRejected counts a reclaim or release that returned an error
	SettlementRejected(operation string, kind domain.ErrorKind)
	// SweepCompleted records the counters and duration of a sweep pass
	SweepCompleted(source string, counts SweepCounts, duration time.Duration)
}

// Prometheus implements Recorder with Prometheus collectors on a dedicated registry
type Prometheus struct {
	registry *prometheus.Registry

	transfersCreated    *prometheus.CounterVec
	transfersFailed     *prometheus.CounterVec
	lockedMicroAlgos    *prometheus.CounterVec
	settlements         *prometheus.CounterVec
	settledMicroAlgos   *prometheus.CounterVec
	settlementsRejected *prometheus.CounterVec
	sweepRecords        *prometheus.CounterVec
	sweepDuration       *prometheus.HistogramVec
	lastSweep           *prometheus.GaugeVec
}

// NewPrometheus creates and registers the collectors. Go runtime and process collectors are included.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		transfersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "transfers_created_total",
			Help:      "Number of transfers whose funding payment was confirmed",
		}, []string{"purpose"}),
		transfersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "transfers_failed_total",
			Help:      "Number of transfers whose funding payment was rejected",
		}, []string{"purpose"}),
		lockedMicroAlgos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "locked_microalgos_total",
			Help:      "Gross microAlgos funded by created transfers",
		}, []string{"purpose"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "settlements_total",
			Help:      "Number of escrow settlements by final status",
		}, []string{"status", "auto"}),
		settledMicroAlgos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "settled_microalgos_total",
			Help:      "MicroAlgos paid out by escrow settlements",
		}, []string{"status"}),
		settlementsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "settlements_rejected_total",
			Help:      "Number of reclaim or release attempts that returned an error",
		}, []string{"operation", "kind"}),
		sweepRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: NAMESPACE,
			Name:      "sweep_records_total",
			Help:      "Records seen by sweep passes by outcome",
		}, []string{"source", "outcome"}),
		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: NAMESPACE,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of sweep passes",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"source"}),
		lastSweep: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: NAMESPACE,
			Name:      "sweep_last_completed_timestamp_seconds",
			Help:      "Unix time of the last completed sweep pass",
		}, []string{"source"}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.transfersCreated,
		p.transfersFailed,
		p.lockedMicroAlgos,
		p.settlements,
		p.settledMicroAlgos,
		p.settlementsRejected,
		p.sweepRecords,
		p.sweepDuration,
		p.lastSweep,
	)

	return p
}

// Registry returns the registry the collectors are registered on
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler returns the exposition handler for the registry
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

func (p *Prometheus) TransferCreated(purpose domain.TransferPurpose, lockedAmount uint64) {
	p.transfersCreated.WithLabelValues(string(purpose)).Inc()
	p.lockedMicroAlgos.WithLabelValues(string(purpose)).Add(float64(lockedAmount))
}

func (p *Prometheus) TransferFailed(purpose domain.TransferPurpose) {
	p.transfersFailed.WithLabelValues(string(purpose)).Inc()
}

func (p *Prometheus) TransferSettled(status domain.TransferStatus, auto bool, payout uint64) {
	autoLabel := "false"
	if auto {
		autoLabel = "true"
	}
	p.settlements.WithLabelValues(string(status), autoLabel).Inc()
	p.settledMicroAlgos.WithLabelValues(string(status)).Add(float64(payout))
}

func (p *Prometheus) SettlementRejected(operation string, kind domain.ErrorKind) {
	if kind == "" {
		kind = "unknown"
	}
	p.settlementsRejected.WithLabelValues(operation, string(kind)).Inc()
}

func (p *Prometheus) SweepCompleted(source string, counts SweepCounts, duration time.Duration) {
	p.sweepRecords.WithLabelValues(source, "checked").Add(float64(counts.Checked))
	p.sweepRecords.WithLabelValues(source, "expired").Add(float64(counts.Expired))
	p.sweepRecords.WithLabelValues(source, "released").Add(float64(counts.Released))
	p.sweepRecords.WithLabelValues(source, "failed").Add(float64(counts.Failed))
	p.sweepRecords.WithLabelValues(source, "skipped").Add(float64(counts.Skipped))
	p.sweepDuration.WithLabelValues(source).Observe(duration.Seconds())
	p.lastSweep.WithLabelValues(source).SetToCurrentTime()
}

type noop struct{}

// NewNoop returns a Recorder that records nothing
func NewNoop() Recorder {
	return noop{}
}

func (noop) TransferCreated(domain.TransferPurpose, uint64) {}
func (noop) TransferFailed(domain.TransferPurpose) {}
func (noop) TransferSettled(domain.TransferStatus, bool, uint64) {}
func (noop) SettlementRejected(string, domain.ErrorKind) {}
func (noop) SweepCompleted(string, SweepCounts, time.Duration) {}
