package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/domain"
	"github.com/safient/safient-escrow/internal/metrics"
)

func TestPrometheusRecorder(t *testing.T) {
	p := metrics.NewPrometheus()

	p.TransferCreated(domain.TransferPurposeEscrow, 1_000_000)
	p.TransferCreated(domain.TransferPurposeEscrow, 2_000_000)
	p.TransferFailed(domain.TransferPurposeRegular)
	p.TransferSettled(domain.TransferStatusCompleted, true, 899_000)
	p.SettlementRejected("reclaim", domain.ErrorKindExpired)
	p.SettlementRejected("release", "")
	p.SweepCompleted(metrics.SWEEP_SOURCE_CRON, metrics.SweepCounts{Checked: 3, Expired: 1, Released: 1}, 150*time.Millisecond)

	expected := `
# HELP safient_escrow_transfers_created_total Number of transfers whose funding payment was confirmed
# TYPE safient_escrow_transfers_created_total counter
safient_escrow_transfers_created_total{purpose="escrow_transfer"} 2
# HELP safient_escrow_locked_microalgos_total Gross microAlgos funded by created transfers
# TYPE safient_escrow_locked_microalgos_total counter
safient_escrow_locked_microalgos_total{purpose="escrow_transfer"} 3e+06
# HELP safient_escrow_settlements_total Number of escrow settlements by final status
# TYPE safient_escrow_settlements_total counter
safient_escrow_settlements_total{auto="true",status="completed"} 1
# HELP safient_escrow_settlements_rejected_total Number of reclaim or release attempts that returned an error
# TYPE safient_escrow_settlements_rejected_total counter
safient_escrow_settlements_rejected_total{kind="expired",operation="reclaim"} 1
safient_escrow_settlements_rejected_total{kind="unknown",operation="release"} 1
`
	err := testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected),
		"safient_escrow_transfers_created_total",
		"safient_escrow_locked_microalgos_total",
		"safient_escrow_settlements_total",
		"safient_escrow_settlements_rejected_total",
	)
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(p.Registry(), "safient_escrow_sweep_records_total")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestPrometheusHandler(t *testing.T) {
	p := metrics.NewPrometheus()
	p.TransferFailed(domain.TransferPurposeEscrow)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `safient_escrow_transfers_failed_total{purpose="escrow_transfer"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNoop(t *testing.T) {
	r := metrics.NewNoop()
	assert.NotPanics(t, func() {
		r.TransferCreated(domain.TransferPurposeEscrow, 1)
		r.SweepCompleted(metrics.SWEEP_SOURCE_SWEEPER, metrics.SweepCounts{}, time.Second)
	})
}
