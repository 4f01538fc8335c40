package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/Carmen-Shannon/gpulab-go/common"
	"github.com/Carmen-Shannon/gpulab-go/engine/geometry"
	"github.com/Carmen-Shannon/gpulab-go/engine/loader"
	"github.com/Carmen-Shannon/gpulab-go/engine/object"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/gpulab-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/gpulab-go/engine/scene"
	"github.com/Carmen-Shannon/gpulab-go/engine/tween"
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

const twoPi = 2 * math.Pi

// Upper bounds for the heavier demos; the configured count applies below them.
const (
	maxSpheres = 300
	maxTori    = 300
	maxGrids   = 100
	maxPlanes  = 100
)

var errNoModel = errors.New("no model configured")

// demoContext is everything a demo needs to populate a scene.
type demoContext struct {
	scene   scene.Scene
	shaders shader.Library
	loader  loader.Loader
	rng     *rand.Rand
	count   int
	spread  float32
	model   string

	// texture is shared by every textured plane. It may be nil.
	texture *renderer.Texture
}

// demoBuilder fills d.scene. The scene is empty when it is called.
type demoBuilder func(ctx context.Context, d *demoContext) error

var demos = map[string]demoBuilder{
	"cubes":     buildCubes,
	"spheres":   buildSpheres,
	"tori":      buildTori,
	"grids":     buildGrids,
	"planes":    buildPlanes,
	"model":     buildModel,
	"instanced": buildInstanced,
}

var demoLabels = map[string]string{
	"cubes":     "Run Cubes",
	"spheres":   "Run Sphere",
	"tori":      "Run Tori",
	"grids":     "Run Grids",
	"planes":    "Run Planes",
	"model":     "Run Model",
	"instanced": "Run Instanced",
}

func (d *demoContext) between(lo, hi float32) float32 {
	return lo + d.rng.Float32()*(hi-lo)
}

func (d *demoContext) position() common.Vec3 {
	h := d.spread / 2
	return common.Vec3{d.between(-h, h), d.between(-h, h), d.between(-h, h)}
}

func (d *demoContext) rotation() common.Vec3 {
	return common.Vec3{d.between(0, twoPi), d.between(0, twoPi), d.between(0, twoPi)}
}

func (d *demoContext) color() [4]float32 {
	return [4]float32{d.rng.Float32(), d.rng.Float32(), d.rng.Float32(), 1}
}

func (d *demoContext) limit(max int) int {
	return min(d.count, max)
}

// clone deep-copies a props template so no two drawables share slices.
func clone[T any](dst, src *T) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{DeepCopy: true}); err != nil {
		return fmt.Errorf("copy props: %w", err)
	}
	return nil
}

// transformTargets tweens every position, rotation and scale component toward fresh random
// values. Scale targets stay within [scaleLo, scaleHi].
func (d *demoContext) transformTargets(p *object.Props, scaleLo, scaleHi float32) []tween.Target {
	pos, rot := d.position(), d.rotation()
	targets := make([]tween.Target, 0, 9)
	for i := 0; i < 3; i++ {
		targets = append(targets,
			tween.Field(&p.Position[i], pos[i]),
			tween.Field(&p.Rotation[i], rot[i]),
		)
		if scaleHi > 0 {
			targets = append(targets, tween.Field(&p.Scale[i], d.between(scaleLo, scaleHi)))
		}
	}
	return targets
}

// loop schedules a repeating yoyo tween that refreshes obj every step.
func (d *demoContext) loop(obj object.Object3D, targets []tween.Target, dur time.Duration, ease string, delay time.Duration) {
	d.scene.Tween(obj, tween.To(targets, dur,
		tween.WithEaseName(ease),
		tween.WithRepeat(-1),
		tween.WithYoyo(true),
		tween.WithDelay(delay),
		tween.WithOnUpdate(obj.UpdateCameraTransform),
	))
}

func seconds(lo, hi float32, d *demoContext) time.Duration {
	return time.Duration(d.between(lo, hi) * float32(time.Second))
}

func buildCubes(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.MeshShader)
	if err != nil {
		return err
	}
	template := object.CubeProps{Props: object.DefaultProps()}
	for i := 0; i < d.count; i++ {
		var props object.CubeProps
		if err := clone(&props, &template); err != nil {
			return err
		}
		props.Position = d.position()
		props.Rotation = d.rotation()
		props.Scale = common.Vec3{d.between(0.1, 1), d.between(0.1, 1), d.between(0.1, 1)}
		props.Color = d.color()

		c := object.NewCube(sh, props)
		if err := d.scene.Add(c); err != nil {
			return err
		}
		d.loop(c, d.transformTargets(c.Props(), 0.1, 1), 4*time.Second, "power4.inOut", 0)
	}
	return nil
}

func buildSpheres(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.MeshShader)
	if err != nil {
		return err
	}
	template := object.SphereProps{Props: object.DefaultProps(), WidthSegments: 24, HeightSegments: 16}
	for i := 0; i < d.limit(maxSpheres); i++ {
		var props object.SphereProps
		if err := clone(&props, &template); err != nil {
			return err
		}
		props.Radius = d.between(0.2, 1)
		props.Position = d.position()
		props.Color = d.color()
		if d.rng.Intn(4) == 0 {
			props.Mode = pipeline.RenderModeWireframe
		}

		s := object.NewSphere(sh, props)
		if err := d.scene.Add(s); err != nil {
			return err
		}
		p := s.Props()
		targets := d.transformTargets(p, 0.5, 1.5)
		end := d.color()
		for c := 0; c < 3; c++ {
			targets = append(targets, tween.Field(&p.Color[c], end[c]))
		}
		d.loop(s, targets, seconds(3, 5, d), "power2.inOut", seconds(0, 1, d))
	}
	return nil
}

func buildTori(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.TorusShader)
	if err != nil {
		return err
	}
	template := object.TorusProps{Props: object.DefaultProps(), Shape: geometry.DefaultTorusParams()}
	for i := 0; i < d.limit(maxTori); i++ {
		var props object.TorusProps
		if err := clone(&props, &template); err != nil {
			return err
		}
		props.Shape.MajorRadius = d.between(0.5, 1.2)
		props.Shape.MinorRadius = d.between(0.1, 0.4)
		props.Position = d.position()
		props.Rotation = d.rotation()
		props.Color = d.color()
		props.Spin = common.Vec3{0, d.between(-1, 1), 0}
		if d.rng.Intn(3) == 0 {
			props.Mode = pipeline.RenderModeWireframe
		}

		t := object.NewTorus(sh, props)
		if err := d.scene.Add(t); err != nil {
			return err
		}
		d.loop(t, d.transformTargets(t.Props(), 0, 0), 4*time.Second, "sine.inOut", 0)
	}
	return nil
}

func buildGrids(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.GridShader)
	if err != nil {
		return err
	}
	n := d.limit(maxGrids)
	props := make([]object.GridProps, n)
	for i := range props {
		props[i] = object.GridProps{
			Props:       object.DefaultProps(),
			GridSize:    float32(16 + d.rng.Intn(64)),
			GridSpace:   d.between(0.1, 0.9),
			ActiveColor: d.color(),
		}
		props[i].Position = d.position()
		props[i].Rotation = d.rotation()
	}

	layout, err := object.NewGridLayout(sh, props)
	if err != nil {
		return err
	}
	if err := d.scene.Add(layout); err != nil {
		return err
	}

	for i := 0; i < layout.Len(); i++ {
		g := layout.Grid(i)
		delay := seconds(0, 2, d)
		d.loop(g, d.transformTargets(g.Props(), 0, 0), seconds(4, 6, d), "power4.inOut", delay)

		gp := g.GridProps()
		d.loop(g, []tween.Target{tween.Field(&gp.GridSpace, d.between(0.1, 0.9))},
			seconds(3, 5, d), "power2.inOut", delay+500*time.Millisecond)

		end := d.color()
		colors := []tween.Target{
			tween.Field(&gp.ActiveColor[0], end[0]),
			tween.Field(&gp.ActiveColor[1], end[1]),
			tween.Field(&gp.ActiveColor[2], end[2]),
			tween.Field(&gp.ActiveColor[3], 1),
		}
		d.loop(g, colors, seconds(5, 8, d), "power3.inOut", delay+time.Second)
	}
	return nil
}

func buildPlanes(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.PlaneShader)
	if err != nil {
		return err
	}
	template := object.PlaneProps{Props: object.DefaultProps()}
	for i := 0; i < d.limit(maxPlanes); i++ {
		var props object.PlaneProps
		if err := clone(&props, &template); err != nil {
			return err
		}
		props.Position = d.position()
		props.Rotation = d.rotation()
		props.Scale = common.Vec3{d.between(0.5, 2.5), d.between(0.5, 2.5), 1}
		props.Color = d.color()
		props.UseTexture = d.texture != nil && d.rng.Intn(2) == 0

		p := object.NewPlane(sh, props)
		if d.texture != nil {
			p.ShareTexture(d.texture)
		}
		if err := d.scene.Add(p); err != nil {
			return err
		}

		pp := p.Props()
		targets := d.transformTargets(pp, 0, 0)
		targets = append(targets,
			tween.Field(&pp.Scale[0], d.between(0.5, 2.5)),
			tween.Field(&pp.Scale[1], d.between(0.5, 2.5)),
		)
		d.loop(p, targets, 4*time.Second, "power4.inOut", 0)
	}
	return nil
}

func buildModel(ctx context.Context, d *demoContext) error {
	if d.model == "" {
		return fmt.Errorf("%w: %w", object.ErrAssetLoad, errNoModel)
	}
	sh, err := d.shaders.Load(object.ModelShader)
	if err != nil {
		return err
	}
	props := object.ModelProps{
		Props:            object.DefaultProps(),
		Path:             d.model,
		UseMaterialColor: true,
		Normalize:        true,
	}
	props.Scale = common.Vec3{4, 4, 4}

	m := object.NewModel(sh, d.loader, props)
	d.scene.Tween(m, tween.To([]tween.Target{tween.Field(&m.Props().Rotation[1], twoPi)}, 4*time.Second,
		tween.WithEaseName("power4.inOut"),
		tween.WithRepeat(-1),
		tween.WithYoyo(true),
		tween.WithOnUpdate(m.UpdateCameraTransform),
	))
	d.scene.AddAsync(ctx, m, func(err error) {
		if err != nil {
			logger.Warn("model demo failed", zap.String("path", d.model), zap.Error(err))
			return
		}
		logger.Info("model ready", zap.String("path", d.model))
	})
	return nil
}

func buildInstanced(_ context.Context, d *demoContext) error {
	sh, err := d.shaders.Load(object.InstancedShader)
	if err != nil {
		return err
	}
	instances := make([]object.Instance, d.count)
	for i := range instances {
		s := d.between(0.1, 0.6)
		instances[i] = object.Instance{
			Position: d.position(),
			Rotation: d.rotation(),
			Scale:    common.Vec3{s, s, s},
			Color:    d.color(),
			Spin:     common.Vec3{d.between(-2, 2), d.between(-2, 2), 0},
		}
	}
	if len(instances) == 0 {
		return nil
	}
	return d.scene.Add(object.NewInstancedCubes(sh, object.CubeProps{Props: object.DefaultProps(), Subdivisions: 1}, instances))
}
