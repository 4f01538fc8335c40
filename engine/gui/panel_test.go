package gui

import (
	"testing"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSliderStepsWithArrowKeys(t *testing.T) {
	p := NewPanel()
	var got []float32
	p.AddSlider("camera X", 5, -40, 40, 0.1, func(v float32) { got = append(got, v) })

	assert.True(t, p.HandleKey(common.KeyRight, 0))
	assert.True(t, p.HandleKey(common.KeyLeft, common.ModShift))

	require.Len(t, got, 2)
	assert.InDelta(t, 5.1, got[0], 1e-4)
	assert.InDelta(t, 4.1, got[1], 1e-4)
}

func TestSliderClampsToRange(t *testing.T) {
	p := NewPanel()
	calls := 0
	s := p.AddSlider("camera Y", 100, -40, 40, 0.1, func(float32) { calls++ })
	assert.Equal(t, float32(40), s.Value(), "initial value is clamped")
	assert.Equal(t, 0, calls, "clamping the initial value is silent")

	assert.False(t, s.Set(45), "already at max")
	assert.True(t, s.Set(-100))
	assert.Equal(t, float32(-40), s.Value())
	assert.Equal(t, 1, calls)
}

func TestTabCyclesSelection(t *testing.T) {
	p := NewPanel()
	assert.Nil(t, p.Selected())
	assert.False(t, p.HandleKey(common.KeyTab, 0))
	assert.False(t, p.HandleKey(common.KeyRight, 0))

	p.AddSlider("x", 0, -1, 1, 0.5, nil)
	p.AddSlider("y", 0, -1, 1, 0.5, nil)
	p.AddSlider("z", 0, -1, 1, 0.5, nil)
	assert.Equal(t, "x", p.Selected().Label())

	p.HandleKey(common.KeyTab, 0)
	assert.Equal(t, "y", p.Selected().Label())
	p.HandleKey(common.KeyTab, common.ModShift)
	p.HandleKey(common.KeyTab, common.ModShift)
	assert.Equal(t, "z", p.Selected().Label())

	p.HandleKey(common.KeyRight, 0)
	assert.Equal(t, "z: 0.50", p.Status())
}

func TestButtonsGetDigitKeys(t *testing.T) {
	p := NewPanel()
	var pressed []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		p.AddButton(name, func() { pressed = append(pressed, name) })
	}

	buttons := p.Buttons()
	require.Len(t, buttons, 11)
	assert.Equal(t, uint32(common.Key1), buttons[0].Key())
	assert.Equal(t, uint32(common.Key0), buttons[9].Key())
	assert.Zero(t, buttons[10].Key())

	assert.True(t, p.HandleKey(common.Key2, 0))
	assert.True(t, p.HandleKey(common.Key0, 0))
	assert.False(t, p.HandleKey(common.KeyW, 0))
	assert.Equal(t, []string{"b", "j"}, pressed)

	assert.Contains(t, p.Help(), "[1] a")
	assert.Contains(t, p.Help(), "[0] j")
}

func TestButtonActionMayAddControls(t *testing.T) {
	p := NewPanel()
	p.AddButton("more", func() { p.AddSlider("late", 0, 0, 1, 0.1, nil) })
	require.True(t, p.HandleKey(common.Key1, 0))
	assert.Len(t, p.Sliders(), 1)
}

func TestChangesAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := logger.Set(zap.New(core))
	defer restore()

	p := NewPanel()
	p.AddSlider("fov", 45, 10, 120, 1, nil)
	p.AddButton("Run Cube", nil)
	p.HandleKey(common.KeyRight, 0)
	p.HandleKey(common.Key1, 0)

	changed := logs.FilterMessage("slider changed").All()
	require.Len(t, changed, 1)
	assert.Equal(t, "fov", changed[0].ContextMap()["slider"])
	assert.Equal(t, 1, logs.FilterMessage("button pressed").Len())
}
