package shadowfree

// A few helper routines for golang's image libraries

import(
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"

	"github.com/abworrall/shadowfree/pkg/invariant"
)

// Frames this big or bigger get halved for display.
var LargeFrame = image.Point{1920, 1080}

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteHDR outputs a Radiance HDR image. You can load this into photoshop or other HDR tools.
func WriteHDR(img hdr.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("WriteHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, img); err != nil {
			return fmt.Errorf("WriteHDR, encoding RGBE file '%s': %v", filename, err)
		}
		return nil
	}
}

// HalveIfLarge shrinks frames of LargeFrame size and up to half size.
func HalveIfLarge(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() < LargeFrame.X || b.Dy() < LargeFrame.Y {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func (ws *Workspace)outputName(f Frame, suffix string) string {
	return filepath.Join(ws.Output.Dir, f.stem() + "-" + suffix)
}

func (ws *Workspace)display(img image.Image) image.Image {
	if ws.Output.HalveLarge {
		return HalveIfLarge(img)
	}
	return img
}

// WriteInvariantOutputs writes the invariant grayscale, the color
// corrected image (tonemapped, and optionally as HDR), and the plot.
func (ws *Workspace)WriteInvariantOutputs(f Frame, res invariant.Result) error {
	if err := os.MkdirAll(ws.Output.Dir, 0755); err != nil {
		return errors.Wrapf(err, "output dir %s", ws.Output.Dir)
	}

	filename := ws.outputName(f, "invariant.png")
	if err := WritePNG(ws.display(res.Invariant.ToGray()), filename); err != nil {
		return err
	}
	log.Printf("wrote %s", filename)

	// Reflectance ratios are in (0,1); scale so an equal split sits mid-range
	corrected := res.Corrected.Scaled(255.0 * 1.5)

	if ws.Output.WriteHDR {
		filename := ws.outputName(f, "corrected.hdr")
		if err := WriteHDR(corrected, filename); err != nil {
			return err
		}
		log.Printf("wrote %s", filename)
	}

	for _, name := range ws.tonemapperNames() {
		ldr, err := Tonemap(corrected, name)
		if err != nil {
			return err
		}
		filename := ws.outputName(f, fmt.Sprintf("corrected-%s.png", name))
		if err := WritePNG(ws.display(ldr), filename); err != nil {
			return err
		}
		log.Printf("wrote %s", filename)
	}

	if ws.Output.WritePlot {
		filename := ws.outputName(f, "entropy.png")
		if err := WritePNG(invariant.PlotSweep(res.Sweep, 800, 400), filename); err != nil {
			return err
		}
		log.Printf("wrote %s", filename)
	}

	return nil
}
