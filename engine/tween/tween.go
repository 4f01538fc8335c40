package tween

import (
	"sync"
	"time"
)

// Target pairs a float field with the value a tween drives it to.
type Target struct {
	Field *float32
	End   float32
}

// Field is shorthand for a Target.
func Field(field *float32, end float32) Target {
	return Target{Field: field, End: end}
}

type tweenImpl struct {
	mu *sync.Mutex

	targets []Target
	from    []float32

	duration time.Duration
	delay    time.Duration
	elapsed  time.Duration

	ease   Ease
	repeat int
	yoyo   bool

	onUpdate   func()
	onComplete func()

	started bool
	done    bool
	killed  bool
}

// Tween interpolates a set of float fields from their values at start to fixed end values.
type Tween interface {
	// Step advances the tween, writes the fields and runs the update callback.
	//
	// Parameters:
	//   - dt: time since the previous step
	//
	// Returns:
	//   - bool: false once the tween has finished or been killed
	Step(dt time.Duration) bool

	// Kill stops the tween permanently. Its fields are never written again.
	Kill()

	// Killed reports whether Kill was called.
	//
	// Returns:
	//   - bool: true once killed
	Killed() bool

	// Done reports whether the tween ran to completion.
	//
	// Returns:
	//   - bool: true once finished
	Done() bool
}

var _ Tween = &tweenImpl{}

// To creates a tween driving each target field to its end value over duration. Start values
// are captured on the first step after the delay.
//
// Parameters:
//   - targets: the fields to drive
//   - duration: the length of one cycle
//   - options: a variadic list of TweenBuilderOption functions
//
// Returns:
//   - Tween: the tween, not yet attached to a Ticker
func To(targets []Target, duration time.Duration, options ...TweenBuilderOption) Tween {
	t := &tweenImpl{
		mu:       &sync.Mutex{},
		targets:  targets,
		duration: duration,
		ease:     PowerOut(1),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *tweenImpl) Step(dt time.Duration) bool {
	t.mu.Lock()
	if t.killed || t.done {
		t.mu.Unlock()
		return false
	}

	t.elapsed += dt
	if t.elapsed < t.delay {
		t.mu.Unlock()
		return true
	}
	if !t.started {
		t.started = true
		t.from = make([]float32, len(t.targets))
		for i, target := range t.targets {
			t.from[i] = *target.Field
		}
	}

	progress, finished := t.progress(t.elapsed - t.delay)
	eased := t.ease(progress)
	for i, target := range t.targets {
		*target.Field = t.from[i] + (target.End-t.from[i])*eased
	}
	t.done = finished

	onUpdate, onComplete := t.onUpdate, t.onComplete
	t.mu.Unlock()

	if onUpdate != nil {
		onUpdate()
	}
	if finished && onComplete != nil {
		onComplete()
	}
	return !finished
}

// progress returns the linear progress of the current cycle, mirrored on odd cycles when
// yoyo is set, and whether the final cycle has ended.
func (t *tweenImpl) progress(local time.Duration) (float32, bool) {
	if t.duration <= 0 {
		return t.endProgress(), t.repeat >= 0
	}

	cycle := int(local / t.duration)
	if t.repeat >= 0 && cycle > t.repeat {
		return t.endProgress(), true
	}

	p := float32(local%t.duration) / float32(t.duration)
	if t.yoyo && cycle%2 == 1 {
		p = 1 - p
	}
	return p, false
}

func (t *tweenImpl) endProgress() float32 {
	if t.yoyo && t.repeat%2 == 1 {
		return 0
	}
	return 1
}

func (t *tweenImpl) Kill() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.killed = true
}

func (t *tweenImpl) Killed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.killed
}

func (t *tweenImpl) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
