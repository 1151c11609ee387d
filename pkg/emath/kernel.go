package emath

import "math"

// Separable and small 2D convolution kernels. Borders reflect about the
// edge pixel ("reflect 101": for a row abcd, the pixel left of a is b).

// GaussianKernel returns a normalized 1D Gaussian of odd size ksize.
func GaussianKernel(ksize int, sigma float64) ([]float64, error) {
	if ksize < 1 || ksize%2 == 0 {
		return nil, Configurationf("gaussian kernel size %d, want odd and positive", ksize)
	}
	if !(sigma > 0) || !IsFinite(sigma) {
		return nil, Configurationf("gaussian sigma %v, want > 0", sigma)
	}

	k := make([]float64, ksize)
	sum := 0.0
	mid := float64(ksize-1) / 2.0
	for i := range k {
		d := float64(i) - mid
		k[i] = math.Exp(-(d*d) / (2*sigma*sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k, nil
}

var(
	// Sobel aperture 3, as separable pairs: derivative along one axis,
	// smoothing along the other.
	SobelDeriv  = []float64{-1, 0, 1}
	SobelSmooth = []float64{1, 2, 1}
)

func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// ConvolveSeparable applies kx along rows, then ky along columns. Both
// kernels must have odd length.
func (g1 FloatGrid)ConvolveSeparable(kx, ky []float64) FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	T := g1.NewFromThis()
	g2 := g1.NewFromThis()

	rx := len(kx) / 2
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			t := 0.0
			for i, k := range kx {
				t += k * g1.Get(reflect101(x+i-rx, width), y)
			}
			T.Set(x, y, t)
		}
	}

	ry := len(ky) / 2
	for x:=0; x<width; x++ {
		for y:=0; y<height; y++ {
			t := 0.0
			for i, k := range ky {
				t += k * T.Get(x, reflect101(y+i-ry, height))
			}
			g2.Set(x, y, t)
		}
	}

	return g2
}

// GaussianBlur smooths the grid with a ksize x ksize Gaussian.
func (g1 FloatGrid)GaussianBlur(ksize int, sigma float64) (FloatGrid, error) {
	k, err := GaussianKernel(ksize, sigma)
	if err != nil {
		return FloatGrid{}, err
	}
	return g1.ConvolveSeparable(k, k), nil
}

func (g1 FloatGrid)SobelX() FloatGrid { return g1.ConvolveSeparable(SobelDeriv, SobelSmooth) }
func (g1 FloatGrid)SobelY() FloatGrid { return g1.ConvolveSeparable(SobelSmooth, SobelDeriv) }

// Laplacian uses the 4-neighbour aperture:
//   0  1  0
//   1 -4  1
//   0  1  0
func (g1 FloatGrid)Laplacian() FloatGrid {
	width := g1.Dx()
	height := g1.Dy()
	g2 := g1.NewFromThis()

	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			t := -4.0 * g1.Get(x, y)
			t += g1.Get(reflect101(x-1, width), y)
			t += g1.Get(reflect101(x+1, width), y)
			t += g1.Get(x, reflect101(y-1, height))
			t += g1.Get(x, reflect101(y+1, height))
			g2.Set(x, y, t)
		}
	}

	return g2
}
