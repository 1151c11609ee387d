package emath

import(
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rampGrid(w, h int) FloatGrid {
	g := NewFloatGrid(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			g.Set(x, y, float64(x))
		}
	}
	return g
}

func TestGaussianKernel(t *testing.T) {
	k, err := GaussianKernel(3, 1.0)
	require.NoError(t, err)
	require.Len(t, k, 3)
	assert.InDelta(t, 1.0, k[0]+k[1]+k[2], 1e-12)
	assert.InDelta(t, k[0], k[2], 1e-15)
	assert.Greater(t, k[1], k[0])

	for _, bad := range []struct{ ksize int; sigma float64 }{{0, 1}, {4, 1}, {-3, 1}, {3, 0}, {3, math.NaN()}} {
		_, err := GaussianKernel(bad.ksize, bad.sigma)
		assert.True(t, errors.Is(err, ErrConfiguration), "ksize=%d sigma=%v", bad.ksize, bad.sigma)
	}
}

func TestBlurKeepsFlatGridFlat(t *testing.T) {
	g := NewFloatGrid(5, 4)
	for i := range g.Values() {
		g.Values()[i] = 42
	}
	b, err := g.GaussianBlur(5, 2.0)
	require.NoError(t, err)
	for _, v := range b.Values() {
		assert.InDelta(t, 42.0, v, 1e-9)
	}
}

func TestSobelOnRamp(t *testing.T) {
	g := rampGrid(6, 3)
	sx := g.SobelX()
	sy := g.SobelY()

	assert.InDelta(t, 0.0, sx.Get(0, 1), 1e-12) // reflected border
	assert.InDelta(t, 8.0, sx.Get(2, 1), 1e-12)
	assert.InDelta(t, 0.0, sx.Get(5, 1), 1e-12)
	for _, v := range sy.Values() {
		assert.InDelta(t, 0.0, v, 1e-12)
	}
}

func TestLaplacian(t *testing.T) {
	g := NewFloatGrid(3, 3)
	g.Set(1, 1, 1)
	l := g.Laplacian()
	assert.Equal(t, -4.0, l.Get(1, 1))
	assert.Equal(t, 2.0, l.Get(0, 1)) // both neighbours reflect onto the centre
	assert.Equal(t, 2.0, l.Get(1, 0))
	assert.Equal(t, 0.0, l.Get(0, 0))

	flat := rampGrid(4, 4)
	assert.InDelta(t, 0.0, flat.Laplacian().Get(1, 1), 1e-12)
}

func TestBrightestMedian(t *testing.T) {
	vals := make([]float64, 200)
	for i := range vals {
		vals[i] = float64(i)
	}
	g, err := NewFloatGridFrom(20, 10, vals)
	require.NoError(t, err)

	// top 1% of 200 is the two largest values
	m := g.BrightestMedian(0.01)
	assert.GreaterOrEqual(t, m, 198.0)
	assert.LessOrEqual(t, m, 199.0)

	assert.Equal(t, 199.0, g.BrightestMedian(0.0))
}

func TestNewFloatGridFromRejectsBadShape(t *testing.T) {
	_, err := NewFloatGridFrom(3, 3, make([]float64, 8))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestToGray(t *testing.T) {
	g := rampGrid(3, 1)
	img := g.ToGray()
	assert.Equal(t, uint8(0), img.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(128), img.GrayAt(1, 0).Y)
	assert.Equal(t, uint8(255), img.GrayAt(2, 0).Y)
}

func TestSaturate8(t *testing.T) {
	assert.Equal(t, 0.0, Saturate8(-3))
	assert.Equal(t, 255.0, Saturate8(1000))
	assert.Equal(t, 12.0, Saturate8(12.4))
}

func TestVec(t *testing.T) {
	e := UnitVec2(math.Pi/2)
	assert.InDelta(t, 0.0, e[0], 1e-12)
	assert.InDelta(t, 1.0, e[1], 1e-12)
	p := UnitVec2(0).Perp()
	assert.InDelta(t, 0.0, p.Dot(UnitVec2(0)), 1e-12)
	assert.InDelta(t, 5.0, Vec3{3, 4, 0}.Norm(), 1e-12)
}
