package shadowfree

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/abworrall/shadowfree/pkg/ecolor"
)

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".tif": true, ".tiff": true, ".bmp": true, ".webp": true,
}

// LoadFilesAndDirs loads every image and yaml config it finds, recursing
// into directories. Files with other extensions are skipped.
func (ws *Workspace)LoadFilesAndDirs(args ...string) (error) {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := ws.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := ws.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (ws *Workspace)loadFile(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {

	case imageExtensions[ext]:
		f, err := LoadFrame(filename)
		if err != nil {
			return err
		}
		ws.AddFrame(f)

	case ext == ".yaml" || ext == ".yml":
		cfg, err := LoadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		ws.Config = cfg
		log.Printf("Loaded base configuration from %s", filename)
	}

	return nil
}

func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return newConfigFromYaml(contents)
}

// LoadFrame decodes an image file, and picks up the camera name from
// EXIF if there is any.
func LoadFrame(filename string) (Frame, error) {
	f := Frame{Filename: filename}

	if reader, err := os.Open(filename); err != nil {
		return f, fmt.Errorf("open+r img '%s': %v", filename, err)
	} else {
		defer reader.Close()
		if f.Image, err = DecodeImage(reader); err != nil {
			return f, fmt.Errorf("decoding '%s': %v", filename, err)
		}
	}

	f.Camera = readCamera(filename)
	return f, nil
}

// DecodeImage handles any format registered with the image package.
func DecodeImage(r io.Reader) (ecolor.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return ecolor.Image{}, err
	}
	log.Debug().Str("format", format).Stringer("bounds", img.Bounds()).Msg("decoded image")
	return ecolor.FromImage(img)
}

// readCamera is best effort; most PNGs carry no EXIF at all.
func readCamera(filename string) string {
	reader, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer reader.Close()

	ex, err := exif.Decode(reader)
	if err != nil {
		return ""
	}

	name := []string{}
	for _, field := range []exif.FieldName{exif.Make, exif.Model} {
		if tag, err := ex.Get(field); err == nil {
			if val, err := tag.StringVal(); err == nil {
				name = append(name, strings.TrimSpace(val))
			}
		}
	}
	if len(name) > 0 {
		log.Printf("%s: taken with %s", filename, strings.Join(name, " "))
	}
	return strings.Join(name, " ")
}
