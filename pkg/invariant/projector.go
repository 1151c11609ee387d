package invariant

import(
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// A Basis is a 2x3 matrix U whose rows are orthonormal and orthogonal to
// (1,1,1). It maps log-chromaticity 3-vectors (which always sum to zero)
// onto 2D coordinates in the plane they live on. Columns line up with
// the R,G,B order of ecolor.LogChromaticity. Treat as immutable.
type Basis struct {
	u *mat.Dense
}

const basisTolerance = 1e-9

// NewBasis checks the rows before building the matrix.
func NewBasis(row1, row2 emath.Vec3) (Basis, error) {
	ones := emath.Vec3{1, 1, 1}
	checks := []struct {
		name string
		got, want float64
	}{
		{"|row1|", row1.Norm(), 1},
		{"|row2|", row2.Norm(), 1},
		{"row1.row2", row1.Dot(row2), 0},
		{"row1.(1,1,1)", row1.Dot(ones), 0},
		{"row2.(1,1,1)", row2.Dot(ones), 0},
	}
	for _, c := range checks {
		if math.Abs(c.got - c.want) > basisTolerance {
			return Basis{}, emath.Configurationf("basis %s = %v, want %v", c.name, c.got, c.want)
		}
	}

	return Basis{u: mat.NewDense(2, 3, []float64{
		row1[0], row1[1], row1[2],
		row2[0], row2[1], row2[2],
	})}, nil
}

// DefaultBasis: row1 = (1,-1,0)/sqrt2, row2 = (1,1,-2)/sqrt6
func DefaultBasis() Basis {
	b, err := NewBasis(
		emath.Vec3{1/math.Sqrt2, -1/math.Sqrt2, 0},
		emath.Vec3{1/math.Sqrt(6), 1/math.Sqrt(6), -2/math.Sqrt(6)},
	)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Basis)Row(i int) emath.Vec3 {
	return emath.Vec3{b.u.At(i,0), b.u.At(i,1), b.u.At(i,2)}
}

// Chi is the log-chromaticity of each pixel in basis coordinates.
type Chi struct {
	X, Y emath.FloatGrid
}

func (c Chi)Dx() int { return c.X.Dx() }
func (c Chi)Dy() int { return c.X.Dy() }

func (c Chi)At(x, y int) emath.Vec2 { return emath.Vec2{c.X.Get(x,y), c.Y.Get(x,y)} }

// Project computes U.rho for every pixel.
func (b Basis)Project(lc ecolor.LogChromaticity) Chi {
	w, h := lc.Dx(), lc.Dy()
	n := w * h
	if n == 0 {
		return Chi{}
	}

	// Each plane is one row of a 3xN matrix, so U.rho for all pixels is a
	// single 2x3 by 3xN product.
	rho := mat.NewDense(3, n, nil)
	for c:=0; c<3; c++ {
		rho.SetRow(c, lc.Rho[c].Values())
	}

	var chi mat.Dense
	chi.Mul(b.u, rho)

	return Chi{X: gridFromRow(&chi, 0, w, h), Y: gridFromRow(&chi, 1, w, h)}
}

// Unproject computes U^T.chi, taking plane coordinates back to
// log-chromaticity.
func (b Basis)Unproject(chi Chi) ecolor.LogChromaticity {
	w, h := chi.Dx(), chi.Dy()
	n := w * h
	if n == 0 {
		return ecolor.LogChromaticity{}
	}

	c2 := mat.NewDense(2, n, nil)
	c2.SetRow(0, chi.X.Values())
	c2.SetRow(1, chi.Y.Values())

	var rho mat.Dense
	rho.Mul(b.u.T(), c2)

	lc := ecolor.LogChromaticity{}
	for c:=0; c<3; c++ {
		lc.Rho[c] = gridFromRow(&rho, c, w, h)
	}
	return lc
}

func gridFromRow(m *mat.Dense, row, w, h int) emath.FloatGrid {
	vals := mat.Row(nil, row, m)
	g, _ := emath.NewFloatGridFrom(w, h, vals)
	return g
}

// ProjectAtAngle gives chi.x*cos(theta) + chi.y*sin(theta) per pixel.
func ProjectAtAngle(chi Chi, theta float64) emath.FloatGrid {
	return ProjectOnto(chi, emath.UnitVec2(theta))
}

// ProjectOnto takes the dot product of every chi with dir.
func ProjectOnto(chi Chi, dir emath.Vec2) emath.FloatGrid {
	out := chi.X.NewFromThis()
	xs, ys, vals := chi.X.Values(), chi.Y.Values(), out.Values()
	for i := range vals {
		vals[i] = xs[i]*dir[0] + ys[i]*dir[1]
	}
	return out
}
