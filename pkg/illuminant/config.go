package illuminant

import(
	"github.com/abworrall/shadowfree/pkg/emath"
)

var(
	Methods = []string{"greyedge", "greyworld"}
)

type Config struct {
	Method              string
	DerivativeOrder     int      // 1 = Sobel, 2 = Laplacian; greyedge only
	MinkowskiNorm       float64  // p in the p-norm mean, 1 is a plain mean
	SmoothingKernelSize int
	SmoothingSigma      float64
	SpecularThreshold   float64  // Gray level at or above which a pixel counts as specular
}

func NewConfig() Config {
	return Config{
		Method:              "greyedge",
		DerivativeOrder:     1,
		MinkowskiNorm:       1,
		SmoothingKernelSize: 3,
		SmoothingSigma:      1.0,
		SpecularThreshold:   254,
	}
}

// ClampDerivativeOrder pulls out-of-range orders back into {1,2}. Config
// files get this treatment; code that builds a Config directly gets an
// error from Validate instead.
func (c *Config)ClampDerivativeOrder() {
	if c.DerivativeOrder < 1 { c.DerivativeOrder = 1 }
	if c.DerivativeOrder > 2 { c.DerivativeOrder = 2 }
}

func (c Config)Validate() error {
	if c.DerivativeOrder != 1 && c.DerivativeOrder != 2 {
		return emath.Configurationf("derivativeorder=%d, need 1 or 2", c.DerivativeOrder)
	}
	if !(c.MinkowskiNorm > 0) || !emath.IsFinite(c.MinkowskiNorm) {
		return emath.Configurationf("minkowskinorm=%v, need > 0", c.MinkowskiNorm)
	}
	if _, err := emath.GaussianKernel(c.SmoothingKernelSize, c.SmoothingSigma); err != nil {
		return err
	}
	if c.SmoothingKernelSize < 3 {
		return emath.Configurationf("smoothingkernelsize=%d, need an odd size >= 3", c.SmoothingKernelSize)
	}
	if !emath.IsFinite(c.SpecularThreshold) {
		return emath.Configurationf("specularthreshold=%v", c.SpecularThreshold)
	}
	return nil
}

// NewEstimator picks the estimation strategy named in the config.
func (c Config)NewEstimator() (Estimator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Method {
	case "greyedge", "":  return GreyEdge{Config: c}, nil
	case "greyworld":     return GreyWorld{Config: c}, nil
	default:
		return nil, emath.Configurationf("no illuminant method named '%s', want one of %v", c.Method, Methods)
	}
}
