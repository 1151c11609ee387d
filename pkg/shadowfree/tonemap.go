package shadowfree

import(
	"fmt"
	"image"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"

	"github.com/abworrall/shadowfree/pkg/emath"
)

var(
	Tonemappers = []string{"drago03", "durand", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

func checkTonemapperName(name string) error {
	if name == "all" {
		return nil
	}
	for _, t := range Tonemappers {
		if t == name {
			return nil
		}
	}
	return emath.Configurationf("tonemapper %q not recognized, wanted all or one of %s", name, ListTonemappers())
}

func (ws *Workspace)tonemapperNames() []string {
	if ws.Output.Tonemapper == "all" {
		return Tonemappers
	}
	return []string{ws.Output.Tonemapper}
}

// Tonemap renders the HDR image down to 8 bits with the named operator.
func Tonemap(img hdr.Image, name string) (image.Image, error) {
	op, err := SetupTonemapper(img, name)
	if err != nil {
		return nil, err
	}
	return op.Perform(), nil
}

// The reflectance images are low contrast and contain no highlights, so
// the defaults mostly want less compression than they'd use on photos.
func SetupTonemapper(img hdr.Image, name string) (tmo.ToneMappingOperator, error) {
	switch name {
	case "drago03":
		op := tmo.NewDefaultDrago03(img)
		op.Bias = 0.85
		return op, nil

	case "durand":
		return tmo.NewDefaultDurand(img), nil

	case "icam06":
		op := tmo.NewDefaultICam06(img)
		op.Contrast = 0.8
		return op, nil

	case "linear":
		return tmo.NewLinear(img), nil

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(img)
		op.Chromatic = 0.5
		op.Light = 0.5
		return op, nil
	}

	return nil, emath.Configurationf("tonemapper %q not recognized, wanted one of %s", name, ListTonemappers())
}
