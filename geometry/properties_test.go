package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementProperty(t *testing.T) {
	var (
		x0 = []float64{0, 0}
		x1 = []float64{1, 0}
		x2 = []float64{0, 1}
	)
	{ // Reference orientation fixed by the constructor sample
		p := NewProperty2D(x0, x1, x2)
		assert.InDelta(t, 0.5, p.Area(x0, x1, x2), 1.e-12)
		assert.InDelta(t, -0.5, p.Area(x0, x2, x1), 1.e-12)
	}
	{ // A clockwise sample flips the convention
		p := NewProperty2D(x0, x2, x1)
		assert.InDelta(t, 0.5, p.Area(x0, x2, x1), 1.e-12)
		assert.InDelta(t, -0.5, p.Area(x0, x1, x2), 1.e-12)
	}
	{ // Tetrahedron volume
		var (
			y0 = []float64{0, 0, 0}
			y1 = []float64{1, 0, 0}
			y2 = []float64{0, 1, 0}
			y3 = []float64{0, 0, 1}
			p  = NewProperty3D(y0, y1, y2, y3)
		)
		assert.InDelta(t, 1.0/6.0, p.Volume(y0, y1, y2, y3), 1.e-12)
		assert.InDelta(t, -1.0/6.0, p.Volume(y1, y0, y2, y3), 1.e-12)
	}
}

func TestLength(t *testing.T) {
	{ // Identity metric recovers Euclidean length
		var (
			x0 = []float64{0, 0}
			x1 = []float64{3, 4}
			m  = []float64{1, 0, 0, 1}
		)
		assert.InDelta(t, 5.0, Length(x0, x1, m), 1.e-12)
	}
	{ // Uniform scaling metric I/h^2 measures in units of h
		var (
			x0 = []float64{0, 0}
			x1 = []float64{1, 0}
			h  = 0.25
			m  = []float64{1 / (h * h), 0, 0, 1 / (h * h)}
		)
		assert.InDelta(t, 4.0, Length(x0, x1, m), 1.e-12)
	}
	{ // Anisotropic tensor stretches one axis only
		var (
			x0 = []float64{0, 0, 0}
			x1 = []float64{0, 0, 1}
			m  = []float64{
				1, 0, 0,
				0, 1, 0,
				0, 0, 100,
			}
		)
		assert.InDelta(t, 10.0, Length(x0, x1, m), 1.e-12)
		assert.InDelta(t, 1.0, Length([]float64{0, 0, 0}, []float64{1, 0, 0}, m), 1.e-12)
	}
	{ // Off-diagonal terms contribute the full quadratic form
		var (
			x0 = []float64{0, 0}
			x1 = []float64{1, 1}
			m  = []float64{2, 1, 1, 2}
		)
		assert.InDelta(t, math.Sqrt(6), Length(x0, x1, m), 1.e-12)
	}
}
