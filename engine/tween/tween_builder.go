package tween

import (
	"time"

	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"go.uber.org/zap"
)

// TweenBuilderOption is a functional option used to configure a Tween during construction.
type TweenBuilderOption func(*tweenImpl)

// WithEase sets the ease function. The default is power1.out.
//
// Parameters:
//   - ease: the ease function
//
// Returns:
//   - TweenBuilderOption: a function that sets the ease
func WithEase(ease Ease) TweenBuilderOption {
	return func(t *tweenImpl) {
		if ease != nil {
			t.ease = ease
		}
	}
}

// WithEaseName sets the ease by name, such as "power4.inOut". Unknown names fall back to
// linear and are logged.
//
// Parameters:
//   - name: the ease name
//
// Returns:
//   - TweenBuilderOption: a function that sets the ease
func WithEaseName(name string) TweenBuilderOption {
	return func(t *tweenImpl) {
		ease, err := EaseByName(name)
		if err != nil {
			logger.Warn("falling back to linear ease", zap.Error(err))
			ease = Linear
		}
		t.ease = ease
	}
}

// WithRepeat sets how many times the tween repeats after its first cycle; -1 repeats forever.
//
// Parameters:
//   - n: the repeat count
//
// Returns:
//   - TweenBuilderOption: a function that sets the repeat count
func WithRepeat(n int) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.repeat = n
	}
}

// WithYoyo makes every odd cycle run backwards.
//
// Parameters:
//   - yoyo: true to ping-pong
//
// Returns:
//   - TweenBuilderOption: a function that sets yoyo
func WithYoyo(yoyo bool) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.yoyo = yoyo
	}
}

// WithDelay postpones the first cycle.
//
// Parameters:
//   - d: the delay
//
// Returns:
//   - TweenBuilderOption: a function that sets the delay
func WithDelay(d time.Duration) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.delay = d
	}
}

// WithOnUpdate sets a callback run after every step that wrote the fields.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - TweenBuilderOption: a function that sets the update callback
func WithOnUpdate(fn func()) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onUpdate = fn
	}
}

// WithOnComplete sets a callback run once when the final cycle ends.
//
// Parameters:
//   - fn: the callback
//
// Returns:
//   - TweenBuilderOption: a function that sets the completion callback
func WithOnComplete(fn func()) TweenBuilderOption {
	return func(t *tweenImpl) {
		t.onComplete = fn
	}
}
