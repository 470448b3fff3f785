package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndSnapshot(t *testing.T) {
	c := NewCollector()

	c.Record(OpCompletion, 100*time.Millisecond)
	c.Record(OpCompletion, 300*time.Millisecond)
	c.Record(OpSearch, 10*time.Millisecond)

	snap := c.Snapshot()

	comp, ok := snap.Operations[OpCompletion]
	require.True(t, ok)
	assert.Equal(t, int64(2), comp.Count)
	assert.Equal(t, int64(400), comp.TotalTimeMs)
	assert.Equal(t, int64(100), comp.MinTimeMs)
	assert.Equal(t, int64(300), comp.MaxTimeMs)
	assert.InDelta(t, 200.0, comp.AvgTimeMs, 0.01)

	srch, ok := snap.Operations[OpSearch]
	require.True(t, ok)
	assert.Equal(t, int64(1), srch.Count)
}

func TestSnapshotEmpty(t *testing.T) {
	c := NewCollector()

	snap := c.Snapshot()
	assert.Empty(t, snap.Operations)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestRecordConcurrent(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(OpStoreSave, time.Millisecond)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	assert.Equal(t, int64(50), snap.Operations[OpStoreSave].Count)
}
