package invariant

import(
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/shadowfree/pkg/emath"
)

// Below this standard deviation a projection is treated as flat.
const degenerateStdDev = 1e-10

// Entropies closer than this are a tie, and the earlier angle wins. The
// projections at 0 and pi mirror each other only up to rounding.
const entropyTieTolerance = 1e-12

// AngleEntropy is one row of the sweep table.
type AngleEntropy struct {
	Index   int
	Angle   float64 // radians
	Entropy float64 // bits
}

func (ae AngleEntropy)Degrees() float64 { return ae.Angle * 180.0 / math.Pi }

// SweepResult is the full entropy-vs-angle table, plus the winner. The
// minimising angle is the invariant axis: projecting onto it removes the
// variation that lighting (shadows) introduces.
type SweepResult struct {
	Angles     []AngleEntropy
	MinIndex   int
	MinAngle   float64
	MinEntropy float64
}

// LightingAngle is the axis perpendicular to the invariant one.
func (sr SweepResult)LightingAngle() float64 { return sr.MinAngle + math.Pi/2 }

func (sr SweepResult)String() string {
	return fmt.Sprintf("sweep[%d angles, min %.2f bits at %.1f deg (idx %d)]",
		len(sr.Angles), sr.MinEntropy, sr.MinAngle * 180.0 / math.Pi, sr.MinIndex)
}

// SweepAngles spreads n angles evenly over [0,pi], both ends included.
func SweepAngles(n int) []float64 {
	step := math.Pi / float64(n-1)
	return lo.Times(n, func(i int) float64 { return float64(i) * step })
}

// ShannonEntropy estimates the entropy (in bits) of the distribution the
// values were drawn from. Values are clipped to mean +/- 3 stddev, then
// histogrammed with bins 3.5*stddev*N^(-1/3) wide spanning the clipped
// range. A flat set of values has zero entropy.
func ShannonEntropy(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return 0
	}

	mean, std := stat.PopMeanStdDev(vals, nil)
	if !(std > degenerateStdDev) {
		return 0
	}

	lo3, hi3 := mean - 3*std, mean + 3*std
	clipped := make([]float64, n)
	min, max := math.MaxFloat64, -math.MaxFloat64
	for i, v := range vals {
		if v < lo3 { v = lo3 }
		if v > hi3 { v = hi3 }
		clipped[i] = v
		if v < min { min = v }
		if v > max { max = v }
	}

	width := 3.5 * std * math.Pow(float64(n), -1.0/3.0)
	nBins := int(math.Round((max - min) / width))
	if nBins < 2 || !(max > min) {
		return 0
	}

	counts := make([]int, nBins)
	scale := float64(nBins) / (max - min)
	for _, v := range clipped {
		i := int((v - min) * scale)
		if i >= nBins { i = nBins-1 } // the max lands in the last bin
		counts[i]++
	}

	// summed in count order so a mirrored projection gives the same bits
	sort.Ints(counts)
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}

// FindMinEntropyAngle sweeps numAngles projections of chi over [0,pi]
// and returns the table plus the first angle with the lowest entropy.
// Angles are evaluated concurrently, `workers` at a time (0 means one
// per CPU).
func FindMinEntropyAngle(ctx context.Context, chi Chi, numAngles, workers int) (SweepResult, error) {
	if numAngles < 2 {
		return SweepResult{}, emath.Configurationf("sweep of %d angles, need at least 2", numAngles)
	}
	if chi.Dx() <= 0 || chi.Dy() <= 0 {
		return SweepResult{}, emath.InvalidInputf("entropy sweep over empty projection (%dx%d)", chi.Dx(), chi.Dy())
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	angles := SweepAngles(numAngles)
	results := make([]AngleEntropy, numAngles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, theta := range angles {
		i, theta := i, theta
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			proj := ProjectAtAngle(chi, theta)
			results[i] = AngleEntropy{Index: i, Angle: theta, Entropy: ShannonEntropy(proj.Values())}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepResult{}, errors.Wrap(err, "entropy sweep")
	}

	best := lo.MinBy(results, func(a, b AngleEntropy) bool {
		return a.Entropy < b.Entropy - entropyTieTolerance
	})

	return SweepResult{
		Angles:     results,
		MinIndex:   best.Index,
		MinAngle:   best.Angle,
		MinEntropy: best.Entropy,
	}, nil
}
