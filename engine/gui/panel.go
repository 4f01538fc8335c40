// Package gui implements a keyboard-driven control panel: numeric sliders bound to callbacks
// and trigger buttons bound to actions.
//
// Keys (GLFW key codes):
//   - Tab / Shift+Tab select the next / previous slider
//   - Right / Left step the selected slider up / down, ten steps at a time with Shift
//   - 1..9 and 0 trigger the first ten buttons in the order they were added
package gui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// Panel holds sliders and buttons and dispatches key presses to them.
type Panel interface {
	// AddSlider registers a slider. The initial value is clamped to [min, max] without
	// invoking onChange.
	//
	// Parameters:
	//   - label: name shown in the status line and logs
	//   - value: initial value
	//   - min, max: value bounds
	//   - step: increment per key press (must be positive)
	//   - onChange: called with the new value whenever it changes
	//
	// Returns:
	//   - *Slider: the registered slider
	AddSlider(label string, value, min, max, step float32, onChange func(float32)) *Slider

	// AddButton registers a trigger button. The first ten buttons get the digit keys 1..9, 0.
	//
	// Parameters:
	//   - label: name shown in the help text and logs
	//   - action: called when the button is triggered
	//
	// Returns:
	//   - *Button: the registered button
	AddButton(label string, action func()) *Button

	// HandleKey applies a key press.
	//
	// Parameters:
	//   - keyCode: GLFW key code
	//   - mods: modifier bits (common.Mod*)
	//
	// Returns:
	//   - bool: true if the panel consumed the key
	HandleKey(keyCode, mods uint32) bool

	// Selected returns the slider the arrow keys currently drive, or nil if there is none.
	Selected() *Slider

	Sliders() []*Slider

	Buttons() []*Button

	// Status renders the selected slider as "label: value".
	Status() string

	// Help lists the buttons with their keys.
	Help() string
}

// Slider is a bounded numeric value.
type Slider struct {
	label    string
	value    float32
	min, max float32
	step     float32
	onChange func(float32)
}

// Label returns the slider's name.
func (s *Slider) Label() string { return s.label }

// Value returns the current value.
func (s *Slider) Value() float32 { return s.value }

// Bounds returns the slider's range.
func (s *Slider) Bounds() (min, max float32) { return s.min, s.max }

// Step returns the increment per key press.
func (s *Slider) Step() float32 { return s.step }

// Set snaps v to the step grid, clamps it into range and, if the value changed, invokes the
// change callback.
//
// Parameters:
//   - v: requested value
//
// Returns:
//   - bool: true if the value changed
func (s *Slider) Set(v float32) bool {
	v = s.snap(v)
	if v == s.value {
		return false
	}
	s.value = v
	logger.Info("slider changed", zap.String("slider", s.label), zap.Float32("value", v))
	if s.onChange != nil {
		s.onChange(v)
	}
	return true
}

// Nudge moves the value by n steps.
func (s *Slider) Nudge(n int) bool {
	return s.Set(s.value + float32(n)*s.step)
}

func (s *Slider) snap(v float32) float32 {
	if s.step > 0 {
		v = s.min + math32.Round((v-s.min)/s.step)*s.step
	}
	return clamp(v, s.min, s.max)
}

// Button is a named action.
type Button struct {
	label  string
	key    uint32
	action func()
}

// Label returns the button's name.
func (b *Button) Label() string { return b.label }

// Key returns the digit key code bound to the button, or 0 if none.
func (b *Button) Key() uint32 { return b.key }

// Press runs the button's action.
func (b *Button) Press() {
	logger.Info("button pressed", zap.String("button", b.label))
	if b.action != nil {
		b.action()
	}
}

type panel struct {
	mu       sync.Mutex
	sliders  []*Slider
	buttons  []*Button
	selected int
}

var _ Panel = &panel{}

// NewPanel returns an empty panel.
func NewPanel() Panel {
	return &panel{}
}

// digitKeys is the order digit keys are handed out to buttons.
var digitKeys = []uint32{
	common.Key1, common.Key2, common.Key3, common.Key4, common.Key5,
	common.Key6, common.Key7, common.Key8, common.Key9, common.Key0,
}

func (p *panel) AddSlider(label string, value, min, max, step float32, onChange func(float32)) *Slider {
	if max < min {
		min, max = max, min
	}
	if step <= 0 {
		step = (max - min) / 100
	}
	s := &Slider{label: label, min: min, max: max, step: step, onChange: onChange}
	s.value = clamp(value, min, max)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sliders = append(p.sliders, s)
	return s
}

func (p *panel) AddButton(label string, action func()) *Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	b := &Button{label: label, action: action}
	if n := len(p.buttons); n < len(digitKeys) {
		b.key = digitKeys[n]
	}
	p.buttons = append(p.buttons, b)
	return b
}

func (p *panel) HandleKey(keyCode, mods uint32) bool {
	p.mu.Lock()
	var (
		slider *Slider
		button *Button
		steps  int
	)
	switch keyCode {
	case common.KeyTab:
		if len(p.sliders) > 0 {
			dir := 1
			if mods&common.ModShift != 0 {
				dir = -1
			}
			p.selected = (p.selected + dir + len(p.sliders)) % len(p.sliders)
			logger.Debug("slider selected", zap.String("slider", p.sliders[p.selected].label))
		}
		p.mu.Unlock()
		return len(p.sliders) > 0
	case common.KeyRight, common.KeyLeft:
		if len(p.sliders) == 0 {
			p.mu.Unlock()
			return false
		}
		slider = p.sliders[p.selected]
		steps = 1
		if mods&common.ModShift != 0 {
			steps = 10
		}
		if keyCode == common.KeyLeft {
			steps = -steps
		}
	default:
		for _, b := range p.buttons {
			if b.key != 0 && b.key == keyCode {
				button = b
				break
			}
		}
	}
	p.mu.Unlock()

	// Callbacks run unlocked so they can add controls or query the panel.
	switch {
	case slider != nil:
		slider.Nudge(steps)
		return true
	case button != nil:
		button.Press()
		return true
	}
	return false
}

func (p *panel) Selected() *Slider {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sliders) == 0 {
		return nil
	}
	return p.sliders[p.selected]
}

func (p *panel) Sliders() []*Slider {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Slider(nil), p.sliders...)
}

func (p *panel) Buttons() []*Button {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Button(nil), p.buttons...)
}

func (p *panel) Status() string {
	s := p.Selected()
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%s: %.2f", s.label, s.value)
}

func (p *panel) Help() string {
	var sb strings.Builder
	for i, b := range p.Buttons() {
		if i > 0 {
			sb.WriteString("  ")
		}
		if b.key != 0 {
			fmt.Fprintf(&sb, "[%c] ", rune(b.key))
		}
		sb.WriteString(b.label)
	}
	return sb.String()
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
