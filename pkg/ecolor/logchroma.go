package ecolor

import(
	"math"

	"github.com/abworrall/shadowfree/pkg/emath"
)

// LogChromaticity holds rho_c = log(c / geomean(R,G,B)) per pixel, one
// plane per channel in R,G,B order. The three values at any pixel sum to
// zero, so the data lives on a 2D plane in 3-space.
type LogChromaticity struct {
	Rho [3]emath.FloatGrid
}

func (lc LogChromaticity)Dx() int { return lc.Rho[0].Dx() }
func (lc LogChromaticity)Dy() int { return lc.Rho[0].Dy() }

func (lc LogChromaticity)At(x, y int) emath.Vec3 {
	return emath.Vec3{lc.Rho[0].Get(x,y), lc.Rho[1].Get(x,y), lc.Rho[2].Get(x,y)}
}

// A Converter turns RGB images into log-chromaticity, after a Gaussian
// smoothing pass to knock down sensor noise.
type Converter struct {
	KernelSize int
	Sigma      float64
}

func NewConverter(ksize int, sigma float64) (Converter, error) {
	if _, err := emath.GaussianKernel(ksize, sigma); err != nil {
		return Converter{}, err
	}
	if ksize < 3 {
		return Converter{}, emath.Configurationf("smoothing kernel size %d, want >= 3", ksize)
	}
	return Converter{KernelSize: ksize, Sigma: sigma}, nil
}

func DefaultConverter() Converter { return Converter{KernelSize: 3, Sigma: 1.0} }

// Convert smooths then transforms. The input image is not modified.
func (c Converter)Convert(img Image) (LogChromaticity, error) {
	if err := img.Validate(); err != nil {
		return LogChromaticity{}, err
	}
	smoothed, err := img.Blur(c.KernelSize, c.Sigma)
	if err != nil {
		return LogChromaticity{}, err
	}
	return logChromaticity(smoothed)
}

// LogChromaticityOf transforms without smoothing.
func LogChromaticityOf(img Image) (LogChromaticity, error) {
	if err := img.Validate(); err != nil {
		return LogChromaticity{}, err
	}
	return logChromaticity(img)
}

// Zeros become 1.0 so the logarithm stays finite; at the 0-255 scale
// that is the smallest representable non-zero level.
func nonZero(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}

func logChromaticity(img Image) (LogChromaticity, error) {
	lc := LogChromaticity{}
	for c:=0; c<3; c++ {
		lc.Rho[c] = img.Planes[c].NewFromThis()
	}

	for y:=0; y<img.Dy(); y++ {
		for x:=0; x<img.Dx(); x++ {
			p := img.Pixel(x, y)
			r, g, b := nonZero(p[0]), nonZero(p[1]), nonZero(p[2])
			logGeoMean := math.Log(r*g*b) / 3.0
			rho := emath.Vec3{math.Log(r) - logGeoMean, math.Log(g) - logGeoMean, math.Log(b) - logGeoMean}
			for c:=0; c<3; c++ {
				if !emath.IsFinite(rho[c]) {
					return LogChromaticity{}, emath.InvalidInputf("log-chromaticity at (%d,%d) is %v", x, y, rho)
				}
				lc.Rho[c].Set(x, y, rho[c])
			}
		}
	}
	return lc, nil
}
