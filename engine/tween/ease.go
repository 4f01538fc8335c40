package tween

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// ErrUnknownEase is returned by EaseByName for names it does not recognise.
var ErrUnknownEase = errors.New("tween: unknown ease")

// Ease maps linear progress in [0, 1] to eased progress.
type Ease func(t float32) float32

// Linear is the identity ease.
func Linear(t float32) float32 {
	return t
}

// PowerIn returns an ease accelerating with t^(power+1).
func PowerIn(power int) Ease {
	exp := float32(power + 1)
	return func(t float32) float32 {
		return math32.Pow(t, exp)
	}
}

// PowerOut returns an ease decelerating with 1-(1-t)^(power+1).
func PowerOut(power int) Ease {
	exp := float32(power + 1)
	return func(t float32) float32 {
		return 1 - math32.Pow(1-t, exp)
	}
}

// PowerInOut returns an ease accelerating through the first half and decelerating through the second.
func PowerInOut(power int) Ease {
	exp := float32(power + 1)
	return func(t float32) float32 {
		if t < 0.5 {
			return math32.Pow(2*t, exp) / 2
		}
		return 1 - math32.Pow(2*(1-t), exp)/2
	}
}

// SineInOut follows half a cosine wave.
func SineInOut(t float32) float32 {
	return -(math32.Cos(math32.Pi*t) - 1) / 2
}

// EaseByName resolves names of the form "linear", "none", "sine.inOut" or
// "power<N>.<in|out|inOut>" with N from 0 to 4. A bare "power<N>" eases out.
//
// Parameters:
//   - name: the ease name, case-insensitive
//
// Returns:
//   - Ease: the ease function
//   - error: ErrUnknownEase if the name does not resolve
func EaseByName(name string) (Ease, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "linear", "none", "power0", "power0.in", "power0.out", "power0.inout":
		return Linear, nil
	case "sine.inout":
		return SineInOut, nil
	}

	family, kind, _ := strings.Cut(n, ".")
	var power int
	if _, err := fmt.Sscanf(family, "power%d", &power); err != nil || power < 1 || power > 4 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
	}
	switch kind {
	case "in":
		return PowerIn(power), nil
	case "", "out":
		return PowerOut(power), nil
	case "inout":
		return PowerInOut(power), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
}
