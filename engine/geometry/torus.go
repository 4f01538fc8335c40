package geometry

import (
	"github.com/Carmen-Shannon/gpulab-go/internal/logger"
	"github.com/chewxy/math32"
	"go.uber.org/zap"
)

// SafeMinorRatio is the minor/major radius ratio used when a requested tube would self-intersect.
const SafeMinorRatio = 0.4

// TorusParams describes a torus ring. MajorRadius is the distance from the center to the
// middle of the tube and MinorRadius is the tube radius.
type TorusParams struct {
	MajorRadius   float32
	MinorRadius   float32
	MajorSegments int
	MinorSegments int
}

// DefaultTorusParams returns the ring used by the torus drawable when no shape is given.
func DefaultTorusParams() TorusParams {
	return TorusParams{
		MajorRadius:   1.0,
		MinorRadius:   0.4,
		MajorSegments: 32,
		MinorSegments: 16,
	}
}

// Normalize returns params that produce a valid mesh. A non-positive major radius falls back
// to the default ring. A minor radius that is non-positive or at or above the major radius is
// clamped to SafeMinorRatio*MajorRadius and reported with a warning.
// Segment counts are raised to at least 3.
func (p TorusParams) Normalize() (TorusParams, bool) {
	clamped := false
	if p.MajorRadius <= 0 {
		def := DefaultTorusParams()
		logger.Warn("torus major radius must be positive",
			zap.Float32("major_radius", p.MajorRadius),
			zap.Float32("replaced_with", def.MajorRadius),
		)
		p.MajorRadius = def.MajorRadius
		clamped = true
	}
	if p.MinorRadius <= 0 || p.MinorRadius >= p.MajorRadius {
		logger.Warn("torus minor radius clamped to avoid self-intersection",
			zap.Float32("minor_radius", p.MinorRadius),
			zap.Float32("major_radius", p.MajorRadius),
			zap.Float32("clamped_to", p.MajorRadius*SafeMinorRatio),
		)
		p.MinorRadius = p.MajorRadius * SafeMinorRatio
		clamped = true
	}
	p.MajorSegments = max(p.MajorSegments, 3)
	p.MinorSegments = max(p.MinorSegments, 3)
	return p, clamped
}

// Torus generates a torus around the Y axis with exactly 2*MajorSegments*MinorSegments triangles.
// It returns the params actually used, after Normalize.
func Torus(params TorusParams) (Geometry, TorusParams) {
	p, _ := params.Normalize()
	major, minor := p.MajorSegments, p.MinorSegments
	b := newBuilder((major+1)*(minor+1), major*minor*6)

	for i := 0; i <= major; i++ {
		u := float32(i) / float32(major) * 2 * math32.Pi
		sinU, cosU := math32.Sincos(u)
		for j := 0; j <= minor; j++ {
			v := float32(j) / float32(minor) * 2 * math32.Pi
			sinV, cosV := math32.Sincos(v)

			ring := p.MajorRadius + p.MinorRadius*cosV
			b.vertex(
				ring*cosU, p.MinorRadius*sinV, ring*sinU,
				cosV*cosU, sinV, cosV*sinU,
			)
		}
	}

	row := uint32(minor + 1)
	for i := uint32(0); i < uint32(major); i++ {
		for j := uint32(0); j < uint32(minor); j++ {
			a := i*row + j
			bb := (i+1)*row + j
			c := bb + 1
			d := a + 1
			b.triangle(a, d, bb)
			b.triangle(bb, d, c)
		}
	}
	return b.build(), p
}
