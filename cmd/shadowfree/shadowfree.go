package main

import(
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abworrall/shadowfree/pkg/emath"
	"github.com/abworrall/shadowfree/pkg/server"
	"github.com/abworrall/shadowfree/pkg/shadowfree"
	"github.com/abworrall/shadowfree/pkg/synth"
)

var(
	fVerbosity int
	fConfig string
	fOutputDir string

	fNumAngles int
	fKernelSize int
	fSigma float64
	fBrightest float64
	fWorkers int
	fTonemapper string

	fMethod string
	fOrder int
	fMinkowski float64
	fSpecular float64

	fAddr string

	fScene string
	fWidth, fHeight int
	fNoise int
	fSeed uint32
)

func main() {
	root := &cobra.Command{
		Use:           "shadowfree",
		Short:         "Illuminant invariant images, and illuminant estimation",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if fVerbosity > 0 {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
				Level(level).With().Timestamp().Logger()
			log.Printf("shadowfree starting")
		},
	}
	root.PersistentFlags().IntVarP(&fVerbosity, "verbosity", "v", 0, "how verbose to get")
	root.PersistentFlags().StringVar(&fConfig, "config", "", "yaml config file (a .yaml among the args works too)")
	root.PersistentFlags().StringVarP(&fOutputDir, "out", "o", "", "directory for output files")

	root.AddCommand(invariantCmd(), illuminantCmd(), serveCmd(), generateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadWorkspace reads the config and the files, then lets any flags
// the user set on the command line override the config.
func loadWorkspace(cmd *cobra.Command, args []string) (shadowfree.Workspace, error) {
	ws := shadowfree.NewWorkspace()

	if fConfig != "" {
		cfg, err := shadowfree.LoadConfig(fConfig)
		if err != nil {
			return ws, err
		}
		ws.Config = cfg
	}
	if err := ws.LoadFilesAndDirs(args...); err != nil {
		return ws, err
	}

	applyFlags(cmd, &ws.Config)

	if err := ws.Config.Validate(); err != nil {
		return ws, err
	}
	if ws.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", ws.Config.AsYaml())
	}
	return ws, nil
}

func applyFlags(cmd *cobra.Command, c *shadowfree.Config) {
	set := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if set("verbosity")  { c.Verbosity = fVerbosity }
	if set("out")        { c.Output.Dir = fOutputDir }

	if set("angles")     { c.Invariant.NumAngles = fNumAngles }
	if set("ksize")      { c.Invariant.SmoothingKernelSize = fKernelSize; c.Illuminant.SmoothingKernelSize = fKernelSize }
	if set("sigma")      { c.Invariant.SmoothingSigma = fSigma; c.Illuminant.SmoothingSigma = fSigma }
	if set("brightest")  { c.Invariant.BrightestFraction = fBrightest }
	if set("workers")    { c.Invariant.Workers = fWorkers }
	if set("tonemapper") { c.Output.Tonemapper = fTonemapper }

	if set("method")     { c.Illuminant.Method = fMethod }
	if set("order")      { c.Illuminant.DerivativeOrder = fOrder }
	if set("minkowski")  { c.Illuminant.MinkowskiNorm = fMinkowski }
	if set("specular")   { c.Illuminant.SpecularThreshold = fSpecular }
}

func addSmoothingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fKernelSize, "ksize", 3, "gaussian smoothing kernel size (odd)")
	cmd.Flags().Float64Var(&fSigma, "sigma", 1.0, "gaussian smoothing sigma")
}

func invariantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invariant [files or dirs...]",
		Short: "Find the minimum entropy projection, write the invariant and color corrected images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(cmd, args)
			if err != nil {
				return err
			}
			if len(ws.Frames) == 0 {
				return emath.InvalidInputf("no images found in %v", args)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			_, err = ws.AnalyzeInvariant(ctx)
			return err
		},
	}
	cmd.Flags().IntVar(&fNumAngles, "angles", 181, "number of projection angles to sweep over [0,180] degrees")
	cmd.Flags().Float64Var(&fBrightest, "brightest", 0.01, "fraction of brightest pixels anchoring the color correction")
	cmd.Flags().IntVar(&fWorkers, "workers", 0, "angles evaluated in parallel (0 = one per CPU)")
	cmd.Flags().StringVar(&fTonemapper, "tonemapper", "reinhard05", "how to tonemap the color corrected image: all, or one of "+shadowfree.ListTonemappers())
	addSmoothingFlags(cmd)
	return cmd
}

func illuminantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "illuminant [files or dirs...]",
		Short: "Estimate the illuminant color of each frame",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(cmd, args)
			if err != nil {
				return err
			}
			estimates, err := ws.EstimateIlluminants()
			if err != nil {
				return err
			}
			for i, e := range estimates {
				fmt.Printf("%s\t%s\n", ws.Frames[i].Filename, e)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fMethod, "method", "greyedge", "greyedge or greyworld")
	cmd.Flags().IntVar(&fOrder, "order", 1, "greyedge derivative order, 1 (Sobel) or 2 (Laplacian)")
	cmd.Flags().Float64Var(&fMinkowski, "minkowski", 1, "Minkowski norm p")
	cmd.Flags().Float64Var(&fSpecular, "specular", 254, "gray level at or above which pixels are ignored as specular")
	addSmoothingFlags(cmd)
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipelines over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadWorkspace(cmd, nil)
			if err != nil {
				return err
			}
			s, err := server.New(ws.Config)
			if err != nil {
				return err
			}
			return s.Run(fAddr)
		},
	}
	cmd.Flags().StringVar(&fAddr, "addr", ":8080", "listen address")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [output.png]",
		Short: "Write a synthetic test scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fWidth <= 0 || fHeight <= 0 {
				return emath.Configurationf("scene size %dx%d", fWidth, fHeight)
			}
			img := synth.Uniform(fWidth, fHeight, emath.Vec3{180, 120, 90})

			switch fScene {
			case "uniform":
			case "split":
				img = synth.Split(fWidth, fHeight, fWidth/2, emath.Vec3{200, 50, 100}, emath.Vec3{50, 200, 100})
			case "shadow":
				// skylight-tinted shadow over the left half
				img = synth.CastShadow(img, image.Rect(0, 0, fWidth/2, fHeight), emath.Vec3{0.25, 0.64, 0.4})
			default:
				return errors.Errorf("unknown scene %q, want uniform, split or shadow", fScene)
			}
			img = synth.AddNoise(img, fNoise, fSeed)

			filename := args[0]
			if fOutputDir != "" {
				filename = filepath.Join(fOutputDir, filename)
			}
			if err := shadowfree.WritePNG(img.ToRGBA(), filename); err != nil {
				return err
			}
			log.Info().Str("file", filename).Str("scene", fScene).Msg("generated")
			return nil
		},
	}
	cmd.Flags().StringVar(&fScene, "scene", "shadow", "uniform, split or shadow")
	cmd.Flags().IntVar(&fWidth, "width", 256, "image width")
	cmd.Flags().IntVar(&fHeight, "height", 256, "image height")
	cmd.Flags().IntVar(&fNoise, "noise", 2, "uniform noise amplitude, in 8 bit levels")
	cmd.Flags().Uint32Var(&fSeed, "seed", 1, "noise seed")
	return cmd
}
