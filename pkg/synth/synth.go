// Package synth makes small test scenes with known structure: flat
// patches, hard material edges, cast shadows and sensor noise.
package synth

import(
	"image"

	"github.com/valyala/fastrand"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
)

// Uniform is a single flat color.
func Uniform(w, h int, col emath.Vec3) ecolor.Image {
	return Fill(ecolor.NewImage(w, h), image.Rect(0, 0, w, h), col)
}

// Split has `left` in columns [0,splitX) and `right` in the rest.
func Split(w, h, splitX int, left, right emath.Vec3) ecolor.Image {
	im := Uniform(w, h, left)
	return Fill(im, image.Rect(splitX, 0, w, h), right)
}

// Fill paints col over the part of r inside the image. It paints into a
// copy; the input is left alone.
func Fill(im ecolor.Image, r image.Rectangle, col emath.Vec3) ecolor.Image {
	out := clone(im)
	r = r.Intersect(im.Bounds())
	for y:=r.Min.Y; y<r.Max.Y; y++ {
		for x:=r.Min.X; x<r.Max.X; x++ {
			out.SetPixel(x, y, col)
		}
	}
	return out
}

// CastShadow multiplies each channel inside r by the matching entry in
// attenuation. A shadow lit by bluish skylight has a smaller red factor
// than blue, for example {0.3, 0.4, 0.6}.
func CastShadow(im ecolor.Image, r image.Rectangle, attenuation emath.Vec3) ecolor.Image {
	out := clone(im)
	r = r.Intersect(im.Bounds())
	for y:=r.Min.Y; y<r.Max.Y; y++ {
		for x:=r.Min.X; x<r.Max.X; x++ {
			p := im.Pixel(x, y)
			out.SetPixel(x, y, emath.Vec3{p[0]*attenuation[0], p[1]*attenuation[1], p[2]*attenuation[2]})
		}
	}
	return out
}

// AddNoise adds uniform integer noise in [-amplitude, amplitude] to every
// channel, clamped to [0,255]. The same seed gives the same noise.
func AddNoise(im ecolor.Image, amplitude int, seed uint32) ecolor.Image {
	out := clone(im)
	if amplitude <= 0 {
		return out
	}

	rng := fastrand.RNG{}
	rng.Seed(seed)
	span := uint32(2*amplitude + 1)
	for c:=0; c<3; c++ {
		vals := out.Planes[c].Values()
		for i := range vals {
			v := vals[i] + float64(int(rng.Uint32n(span)) - amplitude)
			if v < 0 { v = 0 }
			if v > 255 { v = 255 }
			vals[i] = v
		}
	}
	return out
}

func clone(im ecolor.Image) ecolor.Image {
	out := ecolor.Image{}
	for c:=0; c<3; c++ {
		out.Planes[c] = *im.Planes[c].Copy()
	}
	return out
}
