package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestSnapshotSuccessRateDefaultsToOneWhenEmpty(t *testing.T) {
	var s Snapshot
	assert.Equal(t, 1.0, s.SuccessRate())
	assert.Equal(t, 0.0, s.FailureRate())
}

func TestRegistryTotalEqualsSuccessPlusFailed(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())

	reg.RecordRequestStart()
	reg.RecordSuccess(10 * time.Millisecond)
	reg.RecordRequestStart()
	reg.RecordFailure(5*time.Millisecond, "upstream")
	reg.RecordRequestStart()
	reg.RecordSuccess(20 * time.Millisecond)

	snap := reg.Snapshot()
	assert.EqualValues(t, 3, snap.TotalRequests)
	assert.Equal(t, snap.TotalRequests, snap.SuccessfulRequests+snap.FailedRequests)
	assert.InDelta(t, 2.0/3.0, snap.SuccessRate(), 0.001)
}

func TestRegistryRecordsRetryAndRejectionCounts(t *testing.T) {
	reg := NewRegistry(prometheus.NewRegistry())
	reg.RecordRetry()
	reg.RecordRetry()
	reg.RecordBreakerRejection()

	snap := reg.Snapshot()
	assert.EqualValues(t, 2, snap.RetryCount)
	assert.EqualValues(t, 1, snap.BreakerRejections)
}
