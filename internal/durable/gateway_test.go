package durable

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestGateway(syncErr error) (*Gateway, *int, *[]time.Duration) {
	syncs := 0
	var slept []time.Duration
	g := New(0, 0, nil)
	g.sync = func() error {
		syncs++
		return syncErr
	}
	g.sleep = func(d time.Duration) { slept = append(slept, d) }
	return g, &syncs, &slept
}

func TestGatewayDefaults(t *testing.T) {
	g := New(0, -1, nil)
	assert.Equal(t, DefaultFileSettle, g.FileSettle)
	assert.Equal(t, DefaultBatchSettle, g.BatchSettle)
}

func TestGatewaySettleIntervals(t *testing.T) {
	g, syncs, slept := newTestGateway(nil)

	g.AfterFile()
	g.AfterBatch()

	assert.Equal(t, 2, *syncs)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 100 * time.Millisecond}, *slept)
}

func TestGatewaySyncFailureStillSettles(t *testing.T) {
	g, syncs, slept := newTestGateway(errors.New("card busy"))

	assert.NotPanics(t, g.AfterBatch)
	assert.Equal(t, 1, *syncs)
	assert.Len(t, *slept, 1)
}

func TestGatewayZeroSettleSkipsSleep(t *testing.T) {
	g, _, slept := newTestGateway(nil)
	g.CommitAndSettle(0)
	assert.Empty(t, *slept)
}
