package vec3

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLength(t *testing.T) {
	u := []float64{3, 4, 0}
	assert.Equal(t, 5.0, Length(u))
	assert.Equal(t, 25.0, LengthSquared(u))
}

func TestScaleAndNormalize(t *testing.T) {
	u := []float64{1, 2, 2}
	Scale(u, 2)
	assert.Equal(t, []float64{2, 4, 4}, u)

	v := []float64{0, 3, 4}
	Normalize(v)
	assert.InDelta(t, 1.0, Length(v), 1e-12)
}

func TestAddSubtractAliasing(t *testing.T) {
	u := []float64{1, 2, 3}
	v := []float64{4, 5, 6}
	w := make([]float64, 3)
	Add(u, v, w)
	assert.Equal(t, []float64{5, 7, 9}, w)

	// aliasing destination with an input is permitted
	Add(u, v, u)
	assert.Equal(t, []float64{5, 7, 9}, u)

	a := []float64{10, 10, 10}
	b := []float64{1, 2, 3}
	Subtract(a, b, a)
	assert.Equal(t, []float64{9, 8, 7}, a)
}

func TestDotCross(t *testing.T) {
	u := []float64{1, 0, 0}
	v := []float64{0, 1, 0}
	assert.Equal(t, 0.0, Dot(u, v))

	w := make([]float64, 3)
	Cross(u, v, w)
	assert.Equal(t, []float64{0, 0, 1}, w)
}

func TestCrossRejectsAliasing(t *testing.T) {
	u := []float64{1, 0, 0}
	v := []float64{0, 1, 0}
	assert.Panics(t, func() {
		Cross(u, v, u)
	})
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite([]float64{1, 2, 3}))
	assert.False(t, IsFinite([]float64{1, math.NaN(), 3}))
	assert.False(t, IsFinite([]float64{1, 2, math.Inf(1)}))
}
