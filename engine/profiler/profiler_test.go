package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickSamplesOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithClock(clock.now))

	for i := 0; i < 29; i++ {
		clock.advance(time.Second / 30)
		_, ok := p.Tick()
		assert.False(t, ok, "tick %d", i)
	}

	clock.advance(time.Second - 29*(time.Second/30))
	s, ok := p.Tick()
	require.True(t, ok)
	assert.Equal(t, 30, s.Frames)
	assert.InDelta(t, 30.0, s.FPS, 0.001)
	assert.Greater(t, s.SysMB, 0.0)
	assert.Equal(t, s, p.Last())

	_, ok = p.Tick()
	assert.False(t, ok, "counter resets after a sample")
}

func TestTickLogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := logger.Set(zap.New(core))
	defer restore()

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(100*time.Millisecond))
	clock.advance(200 * time.Millisecond)
	_, ok := p.Tick()
	require.True(t, ok)

	entries := logs.FilterMessage("frame stats").All()
	require.Len(t, entries, 1)
	assert.InDelta(t, 5.0, entries[0].ContextMap()["fps"], 0.001)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
