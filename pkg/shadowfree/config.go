package shadowfree

import(
	"gopkg.in/yaml.v2"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abworrall/shadowfree/pkg/illuminant"
	"github.com/abworrall/shadowfree/pkg/invariant"
)

type Config struct {
	Verbosity    int

	Invariant    invariant.Config
	Illuminant   illuminant.Config
	Output       OutputConfig
}

type OutputConfig struct {
	Dir          string   // Where output files go
	Tonemapper   string   // One of Tonemappers, or "all"
	WriteHDR     bool     // Also write the color corrected image as Radiance HDR
	WritePlot    bool     // Entropy vs. angle plot
	HalveLarge   bool     // Halve frames of 1920x1080 and up before writing
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, errors.Wrap(err, "config yaml")
	}
	c.Illuminant.ClampDerivativeOrder()
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatal().Err(err).Msg("can't marshal config yaml")
	}
	return string(b)
}

func NewConfig() Config {
	return Config{
		Invariant:  invariant.NewConfig(),
		Illuminant: illuminant.NewConfig(),
		Output: OutputConfig{
			Dir:        ".",
			Tonemapper: "reinhard05",
			WriteHDR:   true,
			WritePlot:  true,
			HalveLarge: true,
		},
	}
}

// Validate checks every section, before any image gets processed.
func (c Config)Validate() error {
	if err := c.Invariant.Validate(); err != nil {
		return errors.Wrap(err, "invariant")
	}
	if err := c.Illuminant.Validate(); err != nil {
		return errors.Wrap(err, "illuminant")
	}
	if _, err := c.Illuminant.NewEstimator(); err != nil {
		return errors.Wrap(err, "illuminant")
	}
	if err := checkTonemapperName(c.Output.Tonemapper); err != nil {
		return errors.Wrap(err, "output")
	}
	return nil
}
