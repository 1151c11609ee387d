package illuminant

import(
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// The norm of a (255,255,255) estimate.
var MaxMagnitude = 255.0 * math.Sqrt(3)

// An Estimator guesses the color of the light falling on a frame.
type Estimator interface {
	Name() string
	Estimate(frame ecolor.Image) (Estimate, error)
}

// Estimate is the result for one frame. Nothing carries over between frames.
type Estimate struct {
	Method         string
	Color          emath.Vec3 // R,G,B, on the 0-255 scale
	Norm           float64
	Intensity      float64    // Norm as a fraction of MaxMagnitude
	SpecularPixels int

	// Distribution of per-pixel mean gradient (greyedge only)
	EdgeMedian     int64
	EdgeP95        int64
}

func newEstimate(method string, col emath.Vec3, nSpecular int) Estimate {
	n := col.Norm()
	return Estimate{
		Method:         method,
		Color:          col,
		Norm:           n,
		Intensity:      n / MaxMagnitude,
		SpecularPixels: nSpecular,
	}
}

// Chromaticity is the estimate scaled to unit length.
func (e Estimate)Chromaticity() emath.Vec3 { return e.Color.Normalized() }

// Hex renders the estimate's hue at full brightness, e.g. for a swatch.
func (e Estimate)Hex() string {
	c := e.Color
	max := math.Max(c[0], math.Max(c[1], c[2]))
	if max <= 0 {
		return "#000000"
	}
	return colorful.Color{R: c[0]/max, G: c[1]/max, B: c[2]/max}.Clamped().Hex()
}

func (e Estimate)String() string {
	return fmt.Sprintf("%s: rgb%s |%.3f| (%.1f%%) %s, %d specular px",
		e.Method, e.Color, e.Norm, 100*e.Intensity, e.Hex(), e.SpecularPixels)
}

// SpecularMask marks every pixel whose gray level is at or above threshold.
func SpecularMask(frame ecolor.Image, threshold float64) ([]bool, int) {
	gray := frame.Gray()
	mask := make([]bool, gray.Len())
	n := 0
	for i, v := range gray.Values() {
		if v >= threshold {
			mask[i] = true
			n++
		}
	}
	return mask, n
}

// minkowskiMean is (sum(v^p) / n)^(1/p), skipping masked entries in the
// sum but not in the count.
func minkowskiMean(vals []float64, mask []bool, p float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for i, v := range vals {
		if mask != nil && mask[i] {
			continue
		}
		sum += math.Pow(v, p)
	}
	return math.Pow(sum / float64(len(vals)), 1.0/p)
}
