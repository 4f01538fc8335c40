package object

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/engine/camera"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/jinzhu/copier"
)

// GridLayout is a set of independent grids built from a list of per-grid props. It forwards
// the Object3D contract to every grid in order.
type GridLayout struct {
	mu *sync.Mutex

	label  string
	grids  []*Grid
	tweens []tween.Tween

	destroyed bool
}

var _ Object3D = &GridLayout{}

// NewGridLayout creates one grid per entry of props. Every entry is deep-copied, so the
// caller may reuse the slice and the Params inside it.
//
// Parameters:
//   - s: the grid shader
//   - props: the per-grid props
//   - options: options applied to every grid
//
// Returns:
//   - *GridLayout: the layout
//   - error: an error if a props entry cannot be copied
func NewGridLayout(s shader.Shader, props []GridProps, options ...ObjectBuilderOption) (*GridLayout, error) {
	l := &GridLayout{
		mu:    &sync.Mutex{},
		grids: make([]*Grid, 0, len(props)),
	}
	for i := range props {
		var p GridProps
		if err := copier.CopyWithOption(&p, &props[i], copier.Option{DeepCopy: true}); err != nil {
			return nil, fmt.Errorf("copy grid props %d: %w", i, err)
		}
		l.grids = append(l.grids, NewGrid(s, p, options...))
	}
	l.label = fmt.Sprintf("grid-layout-%d", nextID.Add(1))
	return l, nil
}

func (l *GridLayout) Label() string {
	return l.label
}

// Len returns the number of grids.
func (l *GridLayout) Len() int {
	return len(l.grids)
}

// Grid returns the i-th grid, or nil when i is out of range.
func (l *GridLayout) Grid(i int) *Grid {
	if i < 0 || i >= len(l.grids) {
		return nil
	}
	return l.grids[i]
}

// Init initializes every grid. On failure the grids already initialized are destroyed.
func (l *GridLayout) Init(r renderer.Renderer) error {
	l.mu.Lock()
	destroyed := l.destroyed
	l.mu.Unlock()
	if destroyed {
		return fmt.Errorf("%w: %s", ErrDestroyed, l.label)
	}

	for i, g := range l.grids {
		if err := g.Init(r); err != nil {
			for _, done := range l.grids[:i] {
				done.Destroy()
			}
			return fmt.Errorf("%s grid %d: %w", l.label, i, err)
		}
	}
	return nil
}

func (l *GridLayout) Ready() bool {
	for _, g := range l.grids {
		if !g.Ready() {
			return false
		}
	}
	return len(l.grids) > 0
}

func (l *GridLayout) SetCamera(c camera.Camera) {
	for _, g := range l.grids {
		g.SetCamera(c)
	}
}

func (l *GridLayout) UpdateCameraTransform() {
	for _, g := range l.grids {
		g.UpdateCameraTransform()
	}
}

func (l *GridLayout) Run(dt time.Duration) {
	for _, g := range l.grids {
		g.Run(dt)
	}
}

func (l *GridLayout) Render(pass renderer.RenderPass) {
	for _, g := range l.grids {
		g.Render(pass)
	}
}

// Props returns the props of the first grid, or nil for an empty layout. Use Grid(i) to
// reach the others.
func (l *GridLayout) Props() *Props {
	if len(l.grids) == 0 {
		return nil
	}
	return l.grids[0].Props()
}

// UpdateProps applies fn to every grid.
func (l *GridLayout) UpdateProps(fn func(p *Props)) {
	for _, g := range l.grids {
		g.UpdateProps(fn)
	}
}

// UpdateGridProps applies fn to the grid props of every grid.
func (l *GridLayout) UpdateGridProps(fn func(p *GridProps)) {
	for _, g := range l.grids {
		g.UpdateGridProps(fn)
	}
}

func (l *GridLayout) AddTween(t tween.Tween) {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		t.Kill()
		return
	}
	l.tweens = append(l.tweens, t)
	l.mu.Unlock()
}

func (l *GridLayout) Destroy() {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return
	}
	l.destroyed = true
	tweens := l.tweens
	l.tweens = nil
	l.mu.Unlock()

	for _, t := range tweens {
		t.Kill()
	}
	for _, g := range l.grids {
		g.Destroy()
	}
}

