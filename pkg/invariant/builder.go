package invariant

import(
	"math"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// BuildInvariant projects chi onto the axis at theta and exponentiates,
// giving a positive single channel image free of the lighting component.
func BuildInvariant(chi Chi, theta float64) (emath.FloatGrid, error) {
	if chi.Dx() <= 0 || chi.Dy() <= 0 {
		return emath.FloatGrid{}, emath.InvalidInputf("invariant image from empty projection")
	}
	proj := ProjectAtAngle(chi, theta)
	inv := proj.Map(math.Exp)
	if !inv.AllFinite() {
		return emath.FloatGrid{}, emath.InvalidInputf("invariant image at %.4f rad overflowed", theta)
	}
	return inv, nil
}

// A Builder turns the sweep result back into a color image, recovering
// the brightness that the projection throws away.
type Builder struct {
	Basis             Basis
	BrightestFraction float64
}

func NewBuilder(b Basis, brightestFraction float64) (Builder, error) {
	if !(brightestFraction > 0) || !(brightestFraction < 1) {
		return Builder{}, emath.Configurationf("brightest fraction %v, need (0,1)", brightestFraction)
	}
	return Builder{Basis: b, BrightestFraction: brightestFraction}, nil
}

// BuildColorCorrected squashes chi onto the lighting axis eT = (cos,sin)
// of theta, shifts it along the invariant axis e = (-sin,cos) so the
// brightest pixels keep their offset, and maps the result back to
// per-pixel reflectance ratios (channels sum to 1).
func (b Builder)BuildColorCorrected(chi Chi, theta float64) (ecolor.Image, error) {
	if chi.Dx() <= 0 || chi.Dy() <= 0 {
		return ecolor.Image{}, emath.InvalidInputf("color correction of empty projection")
	}

	eT := emath.UnitVec2(theta)
	e := eT.Perp()

	chiTheta := Chi{X: chi.X.NewFromThis(), Y: chi.Y.NewFromThis()}
	for y:=0; y<chi.Dy(); y++ {
		for x:=0; x<chi.Dx(); x++ {
			v := eT.Scale(chi.At(x,y).Dot(eT))
			chiTheta.X.Set(x, y, v[0])
			chiTheta.Y.Set(x, y, v[1])
		}
	}

	I := ProjectOnto(chi, e)
	ITheta := ProjectOnto(chiTheta, e)
	shift := e.Scale(I.BrightestMedian(b.BrightestFraction) - ITheta.BrightestMedian(b.BrightestFraction))

	for y:=0; y<chi.Dy(); y++ {
		for x:=0; x<chi.Dx(); x++ {
			v := chiTheta.At(x,y).Add(shift)
			chiTheta.X.Set(x, y, v[0])
			chiTheta.Y.Set(x, y, v[1])
		}
	}

	rho := b.Basis.Unproject(chiTheta)
	out := ecolor.NewImage(chi.Dx(), chi.Dy())
	for y:=0; y<chi.Dy(); y++ {
		for x:=0; x<chi.Dx(); x++ {
			r := rho.At(x, y)
			c := emath.Vec3{math.Exp(r[0]), math.Exp(r[1]), math.Exp(r[2])}
			c = c.Scale(1.0 / c.Sum())
			for i:=0; i<3; i++ {
				if !emath.IsFinite(c[i]) {
					return ecolor.Image{}, emath.InvalidInputf("color corrected pixel (%d,%d) is %v", x, y, c)
				}
			}
			out.SetPixel(x, y, c)
		}
	}
	return out, nil
}
