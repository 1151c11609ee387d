package ecolor

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/pbnjay/memory"

	"github.com/abworrall/shadowfree/pkg/emath"
)

// An Image is a three channel float image, channels held in R,G,B
// order on a nominal 0-255 scale. Implements image.Image and hdr.Image.
type Image struct {
	Planes [3]emath.FloatGrid
}

// How many float planes the whole pipeline keeps alive per pixel, at
// worst. Used to refuse images that would not fit in memory.
const workingPlanesPerPixel = 16

func NewImage(w, h int) Image {
	return Image{
		Planes: [3]emath.FloatGrid{emath.NewFloatGrid(w,h), emath.NewFloatGrid(w,h), emath.NewFloatGrid(w,h)},
	}
}

// FromImage converts any image.Image into an Image. 16 bit channels are
// mapped onto the 0-255 scale. Colours are un-premultiplied, so alpha is
// dropped without darkening translucent pixels.
func FromImage(src image.Image) (Image, error) {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Image{}, emath.InvalidInputf("image has empty bounds %s", b)
	}
	if err := CheckFitsInMemory(b.Dx(), b.Dy()); err != nil {
		return Image{}, err
	}

	im := NewImage(b.Dx(), b.Dy())
	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			c := color.NRGBA64Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			im.SetPixel(x, y, emath.Vec3{float64(c.R)/257.0, float64(c.G)/257.0, float64(c.B)/257.0})
		}
	}
	return im, nil
}

// CheckFitsInMemory rejects dimensions whose working set would take
// more than half the physical memory. If the total can't be read, any
// size is allowed.
func CheckFitsInMemory(w, h int) error {
	total := memory.TotalMemory()
	if total == 0 {
		return nil
	}
	need := uint64(w) * uint64(h) * workingPlanesPerPixel * 8
	if need > total/2 {
		return emath.InvalidInputf("image %dx%d needs ~%d MB, physical memory is %d MB", w, h, need>>20, total>>20)
	}
	return nil
}

func (im Image)Dx() int { return im.Planes[0].Dx() }
func (im Image)Dy() int { return im.Planes[0].Dy() }

func (im Image)Pixel(x, y int) emath.Vec3 {
	return emath.Vec3{im.Planes[0].Get(x,y), im.Planes[1].Get(x,y), im.Planes[2].Get(x,y)}
}

func (im *Image)SetPixel(x, y int, v emath.Vec3) {
	im.Planes[0].Set(x, y, v[0])
	im.Planes[1].Set(x, y, v[1])
	im.Planes[2].Set(x, y, v[2])
}

// Implement image.Image
func (im Image)ColorModel() color.Model { return hdrcolor.RGBModel }
func (im Image)Bounds() image.Rectangle { return im.Planes[0].Bounds() }
func (im Image)At(x, y int) color.Color { return im.HDRAt(x,y) }

// Implement hdr.Image; HDR values are linear, with 255 mapped to 1.0
func (im Image)HDRAt(x, y int) hdrcolor.Color {
	p := im.Pixel(x, y)
	return hdrcolor.RGB{R: p[0]/255.0, G: p[1]/255.0, B: p[2]/255.0}
}
func (im Image)Size() int { return im.Dx() * im.Dy() }

func (im Image)String() string {
	return fmt.Sprintf("Image[%dx%d]", im.Dx(), im.Dy())
}

// Validate checks the image is something we can take logs of: non-empty,
// equal plane sizes, finite and non-negative.
func (im Image)Validate() error {
	w, h := im.Dx(), im.Dy()
	if w <= 0 || h <= 0 {
		return emath.InvalidInputf("image is empty (%dx%d)", w, h)
	}
	for c:=0; c<3; c++ {
		p := im.Planes[c]
		if p.Dx() != w || p.Dy() != h {
			return emath.InvalidInputf("channel %d is %dx%d, want %dx%d", c, p.Dx(), p.Dy(), w, h)
		}
		for i, v := range p.Values() {
			if !emath.IsFinite(v) || v < 0 {
				return emath.InvalidInputf("channel %d pixel %d has value %v", c, i, v)
			}
		}
	}
	return nil
}

// Gray is the BT.601 luma of each pixel, rounded to whole levels.
func (im Image)Gray() emath.FloatGrid {
	g := im.Planes[0].NewFromThis()
	for y:=0; y<im.Dy(); y++ {
		for x:=0; x<im.Dx(); x++ {
			p := im.Pixel(x, y)
			g.Set(x, y, math.Round(0.299*p[0] + 0.587*p[1] + 0.114*p[2]))
		}
	}
	return g
}

// Blur applies the same Gaussian to each channel.
func (im Image)Blur(ksize int, sigma float64) (Image, error) {
	out := Image{}
	for c:=0; c<3; c++ {
		p, err := im.Planes[c].GaussianBlur(ksize, sigma)
		if err != nil {
			return Image{}, err
		}
		out.Planes[c] = p
	}
	return out, nil
}

// Scaled multiplies every channel value by s.
func (im Image)Scaled(s float64) Image {
	out := Image{}
	for c:=0; c<3; c++ {
		out.Planes[c] = im.Planes[c].Map(func(v float64) float64 { return v * s })
	}
	return out
}

// ToRGBA clamps onto 8 bits per channel.
func (im Image)ToRGBA() *image.RGBA {
	img := image.NewRGBA(im.Bounds())
	for y:=0; y<im.Dy(); y++ {
		for x:=0; x<im.Dx(); x++ {
			p := im.Pixel(x, y)
			img.SetRGBA(x, y, color.RGBA{uint8(emath.Saturate8(p[0])), uint8(emath.Saturate8(p[1])), uint8(emath.Saturate8(p[2])), 0xFF})
		}
	}
	return img
}
