package invariant

import(
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// An Analyzer runs the whole intrinsic image pipeline on one image:
// log-chromaticity, projection, entropy sweep, then the invariant and
// color corrected images.
type Analyzer struct {
	Config
	Converter ecolor.Converter
	Basis     Basis
	Builder   Builder
}

// Result holds everything one run produces.
type Result struct {
	Chi       Chi
	Sweep     SweepResult
	Invariant emath.FloatGrid // exp of the projection onto the invariant axis
	Corrected ecolor.Image    // per-pixel reflectance ratios
}

func NewAnalyzer(cfg Config, b Basis) (Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return Analyzer{}, err
	}
	conv, err := ecolor.NewConverter(cfg.SmoothingKernelSize, cfg.SmoothingSigma)
	if err != nil {
		return Analyzer{}, err
	}
	builder, err := NewBuilder(b, cfg.BrightestFraction)
	if err != nil {
		return Analyzer{}, err
	}
	return Analyzer{Config: cfg, Converter: conv, Basis: b, Builder: builder}, nil
}

func (a Analyzer)Run(ctx context.Context, img ecolor.Image) (Result, error) {
	tStart := time.Now()

	lc, err := a.Converter.Convert(img)
	if err != nil {
		return Result{}, errors.Wrap(err, "log-chromaticity")
	}

	res := Result{Chi: a.Basis.Project(lc)}

	if res.Sweep, err = FindMinEntropyAngle(ctx, res.Chi, a.NumAngles, a.Workers); err != nil {
		return Result{}, err
	}

	if res.Invariant, err = BuildInvariant(res.Chi, res.Sweep.MinAngle); err != nil {
		return Result{}, errors.Wrap(err, "invariant image")
	}

	if res.Corrected, err = a.Builder.BuildColorCorrected(res.Chi, res.Sweep.MinAngle); err != nil {
		return Result{}, errors.Wrap(err, "color correction")
	}

	log.Info().
		Int("width", img.Dx()).
		Int("height", img.Dy()).
		Float64("minAngleRad", res.Sweep.MinAngle).
		Float64("minAngleDeg", res.Sweep.MinAngle * 180.0 / math.Pi).
		Float64("minEntropy", res.Sweep.MinEntropy).
		Float64("lightingAngleDeg", res.Sweep.LightingAngle() * 180.0 / math.Pi).
		Dur("elapsed", time.Since(tStart)).
		Msg("invariant analysis done")

	return res, nil
}
