package tween

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestEaseByName(t *testing.T) {
	for _, name := range []string{"linear", "none", "power1", "power2.in", "power3.out", "power4.inOut", "sine.inOut"} {
		ease, err := EaseByName(name)
		require.NoError(t, err, name)
		assert.InDelta(t, 0, ease(0), 1e-6, name)
		assert.InDelta(t, 1, ease(1), 1e-6, name)
	}

	_, err := EaseByName("bounce.out")
	assert.ErrorIs(t, err, ErrUnknownEase)
	_, err = EaseByName("power9.in")
	assert.ErrorIs(t, err, ErrUnknownEase)
}

func TestPowerInOutIsSymmetric(t *testing.T) {
	ease := PowerInOut(4)
	assert.InDelta(t, 0.5, ease(0.5), 1e-6)
	assert.InDelta(t, 1-ease(0.2), ease(0.8), 1e-6)
	assert.Less(t, ease(0.1), float32(0.1))
}

func TestToReachesEndAndCompletes(t *testing.T) {
	x, y := float32(0), float32(10)
	updates, completes := 0, 0
	tw := To([]Target{Field(&x, 10), Field(&y, 0)}, time.Second,
		WithEase(Linear),
		WithOnUpdate(func() { updates++ }),
		WithOnComplete(func() { completes++ }),
	)

	assert.True(t, tw.Step(500*time.Millisecond))
	assert.InDelta(t, 5, x, 1e-4)
	assert.InDelta(t, 5, y, 1e-4)

	assert.False(t, tw.Step(600*time.Millisecond))
	assert.Equal(t, float32(10), x)
	assert.Equal(t, float32(0), y)
	assert.True(t, tw.Done())
	assert.Equal(t, 2, updates)
	assert.Equal(t, 1, completes)

	assert.False(t, tw.Step(time.Second))
	assert.Equal(t, 2, updates)
}

func TestYoyoRepeatsForever(t *testing.T) {
	x := float32(0)
	tw := To([]Target{Field(&x, 4)}, time.Second, WithEase(Linear), WithRepeat(-1), WithYoyo(true))

	tw.Step(250 * time.Millisecond)
	assert.InDelta(t, 1, x, 1e-4)
	tw.Step(time.Second)
	assert.InDelta(t, 3, x, 1e-4)
	assert.True(t, tw.Step(100*time.Hour))
	assert.False(t, tw.Done())
}

func TestYoyoWithOddRepeatEndsAtStart(t *testing.T) {
	x := float32(2)
	tw := To([]Target{Field(&x, 8)}, time.Second, WithRepeat(1), WithYoyo(true))
	assert.False(t, tw.Step(3*time.Second))
	assert.Equal(t, float32(2), x)
}

func TestDelayCapturesStartLate(t *testing.T) {
	x := float32(0)
	tw := To([]Target{Field(&x, 10)}, time.Second, WithEase(Linear), WithDelay(time.Second))

	tw.Step(500 * time.Millisecond)
	x = 5
	assert.Equal(t, float32(5), x)
	tw.Step(500 * time.Millisecond)
	assert.Equal(t, float32(5), x)
	tw.Step(500 * time.Millisecond)
	assert.InDelta(t, 7.5, x, 1e-4)
}

func TestKillStopsWrites(t *testing.T) {
	x := float32(0)
	tw := To([]Target{Field(&x, 10)}, time.Second)
	tw.Kill()
	assert.False(t, tw.Step(time.Second))
	assert.Equal(t, float32(0), x)
	assert.True(t, tw.Killed())
}

func TestUnknownEaseNameLogsAndFallsBack(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := logger.Set(zap.New(core))
	defer restore()

	x := float32(0)
	tw := To([]Target{Field(&x, 10)}, time.Second, WithEaseName("elastic"))
	tw.Step(500 * time.Millisecond)
	assert.InDelta(t, 5, x, 1e-4)
	assert.Equal(t, 1, logs.FilterMessage("falling back to linear ease").Len())
}

func TestTickerDropsFinishedAndKilled(t *testing.T) {
	a, b, c := float32(0), float32(0), float32(0)
	tk := NewTicker()
	short := To([]Target{Field(&a, 1)}, 100*time.Millisecond)
	killed := To([]Target{Field(&b, 1)}, time.Second)
	forever := To([]Target{Field(&c, 1)}, time.Second, WithRepeat(-1))
	tk.Add(short, killed, forever)

	killed.Kill()
	tk.Tick(200 * time.Millisecond)
	assert.Equal(t, 1, tk.Len())
	assert.Equal(t, float32(1), a)
	assert.Equal(t, float32(0), b)

	tk.KillAll()
	assert.Equal(t, 0, tk.Len())
	assert.True(t, forever.Killed())
}
