package trace_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdrp-sim/go-engine/internal/sim/trace"
)

func TestSinkWritesOneJSONLinePerEvent(t *testing.T) {
	path := t.TempDir() + "/trace.jsonl"

	sink, err := trace.Open(path)
	require.NoError(t, err)

	sink.Trace("order_submitted", map[string]any{"order_id": int64(1)})
	sink.Trace("courier_idle", map[string]any{"courier_id": int64(2)})
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"event":"order_submitted"`)
	require.Contains(t, lines[0], `"order_id":1`)
	require.Contains(t, lines[1], `"event":"courier_idle"`)
}

func TestSinkConcurrentTraceDoesNotCorruptLines(t *testing.T) {
	path := t.TempDir() + "/trace.jsonl"

	sink, err := trace.Open(path)
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			sink.Trace("notification_sent", map[string]any{"courier_id": int64(i)})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 20)
}
