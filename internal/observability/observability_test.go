package observability_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/mdrp-sim/go-engine/internal/observability"
)

func TestCollectorTrace_IncrementsMatchingCounter(t *testing.T) {
	before := testutil.ToFloat64(observability.CourierIdleTotal)

	observability.Collector{}.Trace("courier_idle", map[string]any{"courier_id": int64(1)})

	after := testutil.ToFloat64(observability.CourierIdleTotal)
	require.Equal(t, before+1, after)
}

func TestCollectorTrace_IgnoresUnknownEvent(t *testing.T) {
	before := testutil.ToFloat64(observability.NotificationsSent)

	observability.Collector{}.Trace("some_other_event", nil)

	after := testutil.ToFloat64(observability.NotificationsSent)
	require.Equal(t, before, after)
}

func TestServe_DisabledWhenPortZero(t *testing.T) {
	require.Nil(t, observability.Serve(0))
}
