package invariant

import(
	"context"
	"image"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
	"github.com/abworrall/shadowfree/pkg/synth"
)

var(
	// Same R*G*B, with R and G swapped: the two materials differ only
	// along the first basis row, so the invariant axis is at 90 degrees.
	colorA = emath.Vec3{200, 50, 100}
	colorB = emath.Vec3{50, 200, 100}
)

func chiOf(t *testing.T, img ecolor.Image) Chi {
	lc, err := ecolor.LogChromaticityOf(img)
	require.NoError(t, err)
	return DefaultBasis().Project(lc)
}

func TestDefaultBasisIsOrthonormal(t *testing.T) {
	b := DefaultBasis()
	r1, r2 := b.Row(0), b.Row(1)
	assert.InDelta(t, 1.0, r1.Norm(), 1e-12)
	assert.InDelta(t, 1.0, r2.Norm(), 1e-12)
	assert.InDelta(t, 0.0, r1.Dot(r2), 1e-12)
	assert.InDelta(t, 0.0, r1.Sum(), 1e-12)
	assert.InDelta(t, 0.0, r2.Sum(), 1e-12)
}

func TestNewBasisRejectsBadRows(t *testing.T) {
	s2 := 1/math.Sqrt2
	_, err := NewBasis(emath.Vec3{1, 0, 0}, emath.Vec3{0, 1, 0})
	assert.True(t, errors.Is(err, emath.ErrConfiguration))

	_, err = NewBasis(emath.Vec3{s2, -s2, 0}, emath.Vec3{s2, -s2, 0})
	assert.True(t, errors.Is(err, emath.ErrConfiguration))

	// a rotated basis in the same plane is fine
	s6 := 1/math.Sqrt(6)
	_, err = NewBasis(emath.Vec3{s6, s6, -2*s6}, emath.Vec3{-s2, s2, 0})
	assert.NoError(t, err)
}

func TestProjectAtAxisAngles(t *testing.T) {
	img := synth.AddNoise(synth.Split(6, 5, 2, colorA, emath.Vec3{10, 90, 240}), 20, 3)
	chi := chiOf(t, img)

	assert.Equal(t, chi.X.Values(), ProjectAtAngle(chi, 0).Values())

	at90 := ProjectAtAngle(chi, math.Pi/2)
	for i, v := range at90.Values() {
		assert.InDelta(t, chi.Y.Values()[i], v, 1e-12)
	}
}

func TestUnprojectRecoversRho(t *testing.T) {
	img := synth.AddNoise(synth.Uniform(5, 5, emath.Vec3{120, 80, 40}), 30, 11)
	lc, err := ecolor.LogChromaticityOf(img)
	require.NoError(t, err)

	b := DefaultBasis()
	back := b.Unproject(b.Project(lc))
	for c:=0; c<3; c++ {
		for i, v := range back.Rho[c].Values() {
			assert.InDelta(t, lc.Rho[c].Values()[i], v, 1e-12)
		}
	}
}

func TestShannonEntropy(t *testing.T) {
	assert.Equal(t, 0.0, ShannonEntropy(nil))
	assert.Equal(t, 0.0, ShannonEntropy([]float64{3, 3, 3, 3}))

	// 512 each of two values: bins 3.5*sigma/cbrt(1024) wide over 2 sigma
	// make 6 bins, two of them full
	vals := make([]float64, 1024)
	for i := range vals {
		if i%2 == 0 { vals[i] = 1 }
	}
	assert.InDelta(t, 1.0, ShannonEntropy(vals), 1e-12)

	// a single far outlier is clipped into the last bin, not stretching the range
	vals[0] = 1e9
	assert.Less(t, ShannonEntropy(vals), 2.0)
}

func TestSweepUniformImageIsFlat(t *testing.T) {
	chi := chiOf(t, synth.Uniform(8, 8, emath.Vec3{30, 60, 90}))
	sr, err := FindMinEntropyAngle(context.Background(), chi, 181, 4)
	require.NoError(t, err)
	require.Len(t, sr.Angles, 181)
	for _, ae := range sr.Angles {
		assert.Equal(t, 0.0, ae.Entropy)
	}
	assert.Equal(t, 0, sr.MinIndex)
}

func TestSweepFindsMaterialAxis(t *testing.T) {
	chi := chiOf(t, synth.Split(32, 32, 16, colorA, colorB))
	sr, err := FindMinEntropyAngle(context.Background(), chi, 181, 0)
	require.NoError(t, err)

	assert.Equal(t, 90, sr.MinIndex)
	assert.InDelta(t, math.Pi/2, sr.MinAngle, 1e-9)
	assert.InDelta(t, 0.0, sr.MinEntropy, 1e-12)
	assert.InDelta(t, math.Pi, sr.LightingAngle(), 1e-9)
	assert.InDelta(t, 1.0, sr.Angles[0].Entropy, 1e-9)
	assert.InDelta(t, 1.0, sr.Angles[89].Entropy, 1e-9)

	for i, ae := range sr.Angles {
		assert.Equal(t, i, ae.Index)
	}
}

func TestSweepFourByFour(t *testing.T) {
	// one column in four is the second material
	chi := chiOf(t, synth.Split(4, 4, 3, colorA, colorB))
	sr, err := FindMinEntropyAngle(context.Background(), chi, 181, 2)
	require.NoError(t, err)
	assert.Equal(t, 90, sr.MinIndex)
	assert.Greater(t, sr.Angles[45].Entropy, 0.5)
}

func TestSweepTwoAngles(t *testing.T) {
	chi := chiOf(t, synth.Split(32, 32, 16, colorA, colorB))
	sr, err := FindMinEntropyAngle(context.Background(), chi, 2, 1)
	require.NoError(t, err)
	require.Len(t, sr.Angles, 2)
	assert.InDelta(t, 0.0, sr.Angles[0].Angle, 1e-15)
	assert.InDelta(t, math.Pi, sr.Angles[1].Angle, 1e-12)
	assert.InDelta(t, sr.Angles[0].Entropy, sr.Angles[1].Entropy, 1e-12)
	assert.Equal(t, 0, sr.MinIndex)
}

func TestSweepTwoAnglesNoisyKeepsFirst(t *testing.T) {
	for seed := uint32(1); seed < 40; seed++ {
		img := synth.AddNoise(synth.Split(37, 29, 11, emath.Vec3{120, 80, 40}, emath.Vec3{60, 140, 90}), 25, seed)
		sr, err := FindMinEntropyAngle(context.Background(), chiOf(t, img), 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 0, sr.MinIndex, "seed %d", seed)
		assert.InDelta(t, sr.Angles[0].Entropy, sr.Angles[1].Entropy, 1e-9, "seed %d", seed)
	}
}

func TestShannonEntropyIgnoresSign(t *testing.T) {
	vals := []float64{0.3, -1.7, 2.2, 0.01, 5.5, -0.4, 1.9, 3.3, -2.8, 0.7, 1.1, -0.9}
	neg := make([]float64, len(vals))
	for i, v := range vals {
		neg[i] = -v
	}
	assert.Equal(t, ShannonEntropy(vals), ShannonEntropy(neg))
}

func TestSweepRejects(t *testing.T) {
	chi := chiOf(t, synth.Uniform(2, 2, colorA))
	_, err := FindMinEntropyAngle(context.Background(), chi, 1, 0)
	assert.True(t, errors.Is(err, emath.ErrConfiguration))

	_, err = FindMinEntropyAngle(context.Background(), Chi{}, 10, 0)
	assert.True(t, errors.Is(err, emath.ErrInvalidInput))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FindMinEntropyAngle(ctx, chi, 10, 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBuildInvariantRoundTrip(t *testing.T) {
	chi := chiOf(t, synth.AddNoise(synth.Split(8, 8, 4, colorA, colorB), 15, 5))
	theta := 0.7
	inv, err := BuildInvariant(chi, theta)
	require.NoError(t, err)

	proj := ProjectAtAngle(chi, theta)
	for i, v := range inv.Values() {
		assert.Greater(t, v, 0.0)
		assert.InDelta(t, proj.Values()[i], math.Log(v), 1e-12)
	}
}

func TestBuildInvariantRejectsOverflow(t *testing.T) {
	chi := Chi{X: emath.NewFloatGrid(1, 1), Y: emath.NewFloatGrid(1, 1)}
	chi.X.Set(0, 0, 1000)
	_, err := BuildInvariant(chi, 0)
	assert.True(t, errors.Is(err, emath.ErrInvalidInput))
}

func TestBuildColorCorrected(t *testing.T) {
	chi := chiOf(t, synth.AddNoise(synth.Split(16, 16, 8, colorA, colorB), 10, 9))
	b, err := NewBuilder(DefaultBasis(), 0.01)
	require.NoError(t, err)

	c1, err := b.BuildColorCorrected(chi, 1.1)
	require.NoError(t, err)
	c2, err := b.BuildColorCorrected(chi, 1.1)
	require.NoError(t, err)

	for c:=0; c<3; c++ {
		assert.Equal(t, c1.Planes[c].Values(), c2.Planes[c].Values())
	}
	for y:=0; y<16; y++ {
		for x:=0; x<16; x++ {
			p := c1.Pixel(x, y)
			assert.InDelta(t, 1.0, p.Sum(), 1e-12)
			for i:=0; i<3; i++ {
				assert.Greater(t, p[i], 0.0)
				assert.Less(t, p[i], 1.0)
			}
		}
	}

	_, err = NewBuilder(DefaultBasis(), 0)
	assert.True(t, errors.Is(err, emath.ErrConfiguration))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, NewConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.NumAngles = 1 },
		func(c *Config) { c.SmoothingKernelSize = 4 },
		func(c *Config) { c.SmoothingKernelSize = 1 },
		func(c *Config) { c.SmoothingSigma = 0 },
		func(c *Config) { c.BrightestFraction = 0 },
		func(c *Config) { c.BrightestFraction = 1 },
		func(c *Config) { c.BrightestFraction = 1.5 },
		func(c *Config) { c.Workers = -1 },
	}
	for i, mutate := range bad {
		c := NewConfig()
		mutate(&c)
		assert.True(t, errors.Is(c.Validate(), emath.ErrConfiguration), "case %d", i)
	}
}

func TestAnalyzerRemovesCastShadow(t *testing.T) {
	// Attenuation with R*G = B*B moves chromaticity along the first basis
	// row only, so the shadow vanishes when projecting at 90 degrees.
	lit := synth.Uniform(32, 32, emath.Vec3{180, 120, 90})
	img := synth.CastShadow(lit, image.Rect(0, 0, 16, 32), emath.Vec3{0.25, 0.64, 0.4})

	cfg := NewConfig()
	cfg.SmoothingSigma = 0.01 // hard edges stay hard
	a, err := NewAnalyzer(cfg, DefaultBasis())
	require.NoError(t, err)

	res, err := a.Run(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, 90, res.Sweep.MinIndex)

	shadow, sunlit := res.Invariant.Get(4, 10), res.Invariant.Get(28, 10)
	assert.InDelta(t, sunlit, shadow, 1e-9)

	gray := img.Gray()
	assert.Greater(t, math.Abs(gray.Get(4, 10) - gray.Get(28, 10)), 10.0)

	assert.Equal(t, 32, res.Corrected.Dx())
}

func TestAnalyzerRejectsBadInput(t *testing.T) {
	a, err := NewAnalyzer(NewConfig(), DefaultBasis())
	require.NoError(t, err)
	img := synth.Uniform(3, 3, colorA)
	img.Planes[2].Set(1, 1, math.Inf(1))
	_, err = a.Run(context.Background(), img)
	assert.True(t, errors.Is(err, emath.ErrInvalidInput))

	cfg := NewConfig()
	cfg.NumAngles = 0
	_, err = NewAnalyzer(cfg, DefaultBasis())
	assert.True(t, errors.Is(err, emath.ErrConfiguration))
}

func TestPlotSweep(t *testing.T) {
	chi := chiOf(t, synth.Split(8, 8, 4, colorA, colorB))
	sr, err := FindMinEntropyAngle(context.Background(), chi, 19, 0)
	require.NoError(t, err)
	img := PlotSweep(sr, 320, 200)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}
