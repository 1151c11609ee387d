package illuminant

import(
	"github.com/pkg/errors"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// GreyWorld assumes the scene averages out to grey, so the mean of each
// channel is the illuminant. Specular pixels are blacked out first.
type GreyWorld struct {
	Config
}

func (gw GreyWorld)Name() string { return "greyworld" }

func (gw GreyWorld)Estimate(frame ecolor.Image) (Estimate, error) {
	if err := gw.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := frame.Validate(); err != nil {
		return Estimate{}, errors.Wrap(err, "greyworld")
	}

	mask, nSpecular := SpecularMask(frame, gw.SpecularThreshold)

	masked := ecolor.Image{}
	for c:=0; c<3; c++ {
		masked.Planes[c] = *frame.Planes[c].Copy()
		vals := masked.Planes[c].Values()
		for i := range vals {
			if mask[i] { vals[i] = 0 }
		}
	}

	smoothed, err := masked.Blur(gw.SmoothingKernelSize, gw.SmoothingSigma)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "greyworld")
	}

	col := emath.Vec3{}
	for c:=0; c<3; c++ {
		col[c] = minkowskiMean(smoothed.Planes[c].Values(), nil, gw.MinkowskiNorm)
	}
	return newEstimate(gw.Name(), col, nSpecular), nil
}
