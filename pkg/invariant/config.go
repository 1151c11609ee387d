package invariant

import(
	"github.com/abworrall/shadowfree/pkg/emath"
)

// Config holds the knobs for the entropy-minimisation pipeline. Field
// names double as the yaml keys (lowercased).
type Config struct {
	NumAngles           int      // Angles swept over [0,pi], inclusive at both ends
	SmoothingKernelSize int      // Odd, >= 3
	SmoothingSigma      float64
	BrightestFraction   float64  // Share of pixels used as the brightness anchor, in (0,1)
	Workers             int      // Parallel angle evaluations; 0 means one per CPU
}

func NewConfig() Config {
	return Config{
		NumAngles:           181,
		SmoothingKernelSize: 3,
		SmoothingSigma:      1.0,
		BrightestFraction:   0.01,
	}
}

// Validate rejects configs before any pixel gets touched.
func (c Config)Validate() error {
	if c.NumAngles < 2 {
		return emath.Configurationf("numangles=%d, need at least 2", c.NumAngles)
	}
	if c.SmoothingKernelSize < 3 || c.SmoothingKernelSize%2 == 0 {
		return emath.Configurationf("smoothingkernelsize=%d, need an odd size >= 3", c.SmoothingKernelSize)
	}
	if !(c.SmoothingSigma > 0) || !emath.IsFinite(c.SmoothingSigma) {
		return emath.Configurationf("smoothingsigma=%v, need > 0", c.SmoothingSigma)
	}
	if !(c.BrightestFraction > 0) || !(c.BrightestFraction < 1) {
		return emath.Configurationf("brightestfraction=%v, need (0,1)", c.BrightestFraction)
	}
	if c.Workers < 0 {
		return emath.Configurationf("workers=%d, need >= 0", c.Workers)
	}
	return nil
}
