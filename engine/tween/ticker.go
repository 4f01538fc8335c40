package tween

import (
	"sync"
	"time"
)

type ticker struct {
	mu     *sync.Mutex
	tweens []Tween
}

// Ticker advances live tweens once per frame.
type Ticker interface {
	// Add schedules tweens on this ticker.
	//
	// Parameters:
	//   - tweens: the tweens to advance
	Add(tweens ...Tween)

	// Tick steps every live tween and drops the finished and killed ones.
	//
	// Parameters:
	//   - dt: the frame time
	Tick(dt time.Duration)

	// Len returns the number of scheduled tweens.
	//
	// Returns:
	//   - int: the tween count
	Len() int

	// KillAll kills and drops every scheduled tween.
	KillAll()
}

var _ Ticker = &ticker{}

// NewTicker creates an empty Ticker.
func NewTicker() Ticker {
	return &ticker{mu: &sync.Mutex{}}
}

func (tk *ticker) Add(tweens ...Tween) {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	tk.tweens = append(tk.tweens, tweens...)
}

func (tk *ticker) Tick(dt time.Duration) {
	// Callbacks may add tweens, so step a snapshot outside the lock.
	tk.mu.Lock()
	snapshot := append([]Tween(nil), tk.tweens...)
	tk.mu.Unlock()

	finished := make(map[Tween]bool)
	for _, t := range snapshot {
		if !t.Step(dt) {
			finished[t] = true
		}
	}
	if len(finished) == 0 {
		return
	}

	tk.mu.Lock()
	defer tk.mu.Unlock()
	live := tk.tweens[:0]
	for _, t := range tk.tweens {
		if !finished[t] {
			live = append(live, t)
		}
	}
	clear(tk.tweens[len(live):])
	tk.tweens = live
}

func (tk *ticker) Len() int {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return len(tk.tweens)
}

func (tk *ticker) KillAll() {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	for _, t := range tk.tweens {
		t.Kill()
	}
	tk.tweens = nil
}
