package illuminant

import(
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/pkg/errors"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// GreyEdge assumes the average edge in a scene is achromatic, so the
// mean gradient per channel points at the illuminant color.
type GreyEdge struct {
	Config
}

func (ge GreyEdge)Name() string { return "greyedge" }

// GradientMaps smooths the frame and returns an 8 bit style gradient
// magnitude per channel (saturated to [0,255]). Pixels are not masked.
func (ge GreyEdge)GradientMaps(frame ecolor.Image) ([3]emath.FloatGrid, error) {
	var grads [3]emath.FloatGrid

	smoothed, err := frame.Blur(ge.SmoothingKernelSize, ge.SmoothingSigma)
	if err != nil {
		return grads, err
	}

	for c:=0; c<3; c++ {
		switch ge.DerivativeOrder {
		case 1:
			sx, sy := smoothed.Planes[c].SobelX(), smoothed.Planes[c].SobelY()
			g := sx.NewFromThis()
			gv, xv, yv := g.Values(), sx.Values(), sy.Values()
			for i := range gv {
				gv[i] = emath.Saturate8(0.5*emath.Saturate8(math.Abs(xv[i])) + 0.5*emath.Saturate8(math.Abs(yv[i])))
			}
			grads[c] = g
		case 2:
			l := smoothed.Planes[c].Laplacian()
			grads[c] = l.Map(func(v float64) float64 { return emath.Saturate8(math.Abs(v)) })
		default:
			return grads, emath.Configurationf("derivative order %d", ge.DerivativeOrder)
		}
	}
	return grads, nil
}

func (ge GreyEdge)Estimate(frame ecolor.Image) (Estimate, error) {
	if err := ge.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := frame.Validate(); err != nil {
		return Estimate{}, errors.Wrap(err, "greyedge")
	}

	mask, nSpecular := SpecularMask(frame, ge.SpecularThreshold)
	grads, err := ge.GradientMaps(frame)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "greyedge")
	}

	col := emath.Vec3{}
	for c:=0; c<3; c++ {
		col[c] = minkowskiMean(grads[c].Values(), mask, ge.MinkowskiNorm)
	}
	est := newEstimate(ge.Name(), col, nSpecular)

	// Edge strength distribution over the unmasked pixels
	h := hdrhistogram.New(1, 255, 3)
	for i := range mask {
		if mask[i] {
			continue
		}
		mean := (grads[0].Values()[i] + grads[1].Values()[i] + grads[2].Values()[i]) / 3.0
		if err := h.RecordValue(int64(math.Round(mean))); err != nil {
			return Estimate{}, errors.Wrap(err, "greyedge histogram")
		}
	}
	if h.TotalCount() > 0 {
		est.EdgeMedian = h.ValueAtQuantile(50)
		est.EdgeP95 = h.ValueAtQuantile(95)
	}

	return est, nil
}
