package shadowfree

import(
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abworrall/shadowfree/pkg/ecolor"
	"github.com/abworrall/shadowfree/pkg/emath"
	"github.com/abworrall/shadowfree/pkg/illuminant"
	"github.com/abworrall/shadowfree/pkg/invariant"
)

// A Frame is one loaded image.
type Frame struct {
	Filename string
	Camera   string  // From EXIF, if present
	Image    ecolor.Image
}

func (f Frame)String() string {
	str := fmt.Sprintf("%s %s", f.Filename, f.Image)
	if f.Camera != "" {
		str += " (" + f.Camera + ")"
	}
	return str
}

// stem is the filename without dir or extension, used to name outputs.
func (f Frame)stem() string {
	base := filepath.Base(f.Filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Workspace holds the config and the frames loaded from the command
// line, and runs the pipelines over them.
type Workspace struct {
	Config
	Frames []Frame
}

func NewWorkspace() Workspace {
	return Workspace{
		Frames: []Frame{},
		Config: NewConfig(),
	}
}

func (ws Workspace)String() string {
	str := "Workspace [\n"
	for _, f := range ws.Frames {
		str += fmt.Sprintf("  %s\n", f)
	}
	return str + "]\n"
}

func (ws *Workspace)AddFrame(f Frame) {
	ws.Frames = append(ws.Frames, f)
}

// AnalyzeInvariant runs the entropy pipeline over each frame and writes
// out the images. It stops at the first frame that fails.
func (ws *Workspace)AnalyzeInvariant(ctx context.Context) ([]invariant.Result, error) {
	analyzer, err := invariant.NewAnalyzer(ws.Config.Invariant, invariant.DefaultBasis())
	if err != nil {
		return nil, err
	}

	results := []invariant.Result{}
	for _, f := range ws.Frames {
		log.Printf("Analyzing %s", f)
		res, err := analyzer.Run(ctx, f.Image)
		if err != nil {
			return results, errors.Wrapf(err, "%s", f.Filename)
		}
		if ws.Verbosity > 0 {
			log.Printf("%s: %s", f.Filename, res.Sweep)
			log.Printf("%s: invariant %s", f.Filename, res.Invariant.Stats())
		}
		if err := ws.WriteInvariantOutputs(f, res); err != nil {
			return results, err
		}
		if ws.Verbosity > 1 {
			ws.dumpChi(f, res.Chi)
		}
		results = append(results, res)
	}
	return results, nil
}

// EstimateIlluminants runs the configured estimator over each frame.
func (ws *Workspace)EstimateIlluminants() ([]illuminant.Estimate, error) {
	est, err := ws.Config.Illuminant.NewEstimator()
	if err != nil {
		return nil, err
	}

	estimates := []illuminant.Estimate{}
	for _, f := range ws.Frames {
		e, err := est.Estimate(f.Image)
		if err != nil {
			return estimates, errors.Wrapf(err, "%s", f.Filename)
		}
		log.Info().
			Str("file", f.Filename).
			Str("method", e.Method).
			Floats64("rgb", e.Color[:]).
			Float64("norm", e.Norm).
			Float64("intensityPct", 100*e.Intensity).
			Str("hex", e.Hex()).
			Int("specular", e.SpecularPixels).
			Msg("illuminant")
		estimates = append(estimates, e)
	}
	return estimates, nil
}

// dumpChi writes both chromaticity planes as gamma'd grayscale, for debugging.
func (ws *Workspace)dumpChi(f Frame, chi invariant.Chi) {
	for name, g := range map[string]emath.FloatGrid{"chi-x": chi.X, "chi-y": chi.Y} {
		if err := g.ToImg(f.stem() + " " + name, ws.outputName(f, name + ".png")); err != nil {
			log.Warn().Err(err).Msg("dump chi")
		}
	}
}
