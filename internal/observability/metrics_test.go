package observability

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jddeal/go-wsr88d/wire"
)

func TestObserveDecode(t *testing.T) {
	m := NewMetricsForTesting()

	m.ObserveDecode("2", time.Now(), nil)
	m.ObserveDecode("3", time.Now(), fmt.Errorf("packet: %w", wire.ErrTruncated))
	m.ObserveDecode("3", time.Now(), wire.Violation("bad code"))
	m.ObserveDecode("3", time.Now(), errors.New("disk on fire"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeRequests.WithLabelValues("2", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.DecodeRequests.WithLabelValues("3", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("3", "truncated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("3", "schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("3", "other")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("2", "truncated")))
}

func TestCountPacket(t *testing.T) {
	m := NewMetricsForTesting()

	m.CountPacket(0x0802)
	m.CountPacket(0x0802)
	m.CountPacket(6)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecodedPackets.WithLabelValues("0x0802")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodedPackets.WithLabelValues("0x0006")))
}

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveDecode("2", time.Now(), nil)

	n, err := testutil.GatherAndCount(reg, "wsr88d_decode_requests_total", "wsr88d_decode_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Panics(t, func() { NewMetrics(reg) })
}
