package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	"gonum.org/v1/gonum/stat"
)

// A FloatGrid is a grid of floats, with some operations. Images are
// held as one FloatGrid per channel.
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

// NewFloatGridFrom wraps vals, which must hold w*h values in row order.
func NewFloatGridFrom(w, h int, vals []float64) (FloatGrid, error) {
	if w <= 0 || h <= 0 || len(vals) != w*h {
		return FloatGrid{}, InvalidInputf("grid %dx%d with %d values", w, h, len(vals))
	}
	return FloatGrid{stride: w, values: vals}, nil
}

func (g1 FloatGrid)NewFromThis() FloatGrid  { return NewFloatGrid(g1.Dx(), g1.Dy()) }
func (fg FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg FloatGrid)Dx() int                 { return fg.stride }
func (fg FloatGrid)Len() int                { return len(fg.values) }
func (fg FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }

// Values exposes the backing slice (row order). Callers must not resize it.
func (fg FloatGrid)Values() []float64 { return fg.values }

func (fg FloatGrid)Dy() int {
	if fg.stride == 0 {
		return 0
	}
	return len(fg.values) / fg.stride
}

func (g1 FloatGrid)Copy() *FloatGrid {
	g2 := FloatGrid{stride: g1.stride, values:make([]float64, len(g1.values))}
	copy(g2.values, g1.values)
	return &g2
}

// Map builds a new grid by applying f to every value.
func (g1 FloatGrid)Map(f func(float64) float64) FloatGrid {
	g2 := g1.NewFromThis()
	for i, v := range g1.values {
		g2.values[i] = f(v)
	}
	return g2
}

// AllFinite reports whether the grid is free of NaN and Inf.
func (fg FloatGrid)AllFinite() bool {
	for _, v := range fg.values {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

func (fg FloatGrid)MinMax() (float64, float64) {
	min := math.MaxFloat64
	max := -1.0  * min
	for i:=0 ; i<len(fg.values) ; i++ {
		if fg.values[i] > max { max = fg.values[i] }
		if fg.values[i] < min { min = fg.values[i] }
	}
	return min, max
}

// MeanStdDev returns the population mean and standard deviation.
func (fg FloatGrid)MeanStdDev() (float64, float64) {
	return stat.PopMeanStdDev(fg.values, nil)
}

// BrightestMedian returns the median of the brightest `frac` of the
// values (at least one value is always taken).
func (fg FloatGrid)BrightestMedian(frac float64) float64 {
	vI := make([]float64, len(fg.values))
	copy(vI, fg.values)
	sort.Float64s(vI)

	n := int(math.Ceil(frac * float64(len(vI))))
	if n < 1       { n = 1 }
	if n > len(vI) { n = len(vI) }

	return stat.Quantile(0.5, stat.LinInterp, vI[len(vI)-n:], nil)
}

func (fg FloatGrid)Stats() string {
	min, max := fg.MinMax()
	mean, std := fg.MeanStdDev()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}, mean=%f, std=%f]", fg.Dx(), fg.Dy(), min, max, mean, std)
}

// ToGray maps the grid onto 8 bit gray, stretching the range of values
// in the grid to [0,255]. A flat grid comes out black.
func (fg FloatGrid)ToGray() *image.Gray {
	min, max := fg.MinMax()
	img := image.NewGray(fg.Bounds())
	for y:=0; y<fg.Dy(); y++ {
		for x:=0; x<fg.Dx(); x++ {
			lum := 0.0
			if max > min {
				lum = (fg.Get(x,y) - min) / (max - min)
			}
			img.SetGray(x, y, color.Gray{uint8(math.Round(lum * 255.0))})
		}
	}
	return img
}

// ToImg saves a simple grayscale, based on the range of values in the grid, and gamma scaling the
// gray to look normal for human vision
func (fg FloatGrid)ToImg(title, filename string) error {
	min, max := fg.MinMax()

	img := image.NewRGBA64(fg.Bounds())
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			gray := 0.0
			if max > min {
				gray = GammaExpand_F64((fg.Get(x,y) - min) / (max - min))
			}
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,0,0)
	dc.DrawString(title, 10, 20)
	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("FloatGrid.ToImg '%s': %v", filename, err)
	}
	return nil
}
