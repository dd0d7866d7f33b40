package assets

import (
	"strconv"

	"github.com/juju/errgo"
	"github.com/mongodb/grip"
)

const statusBarHeight = 20

// Keys of the information property list entries of launch images.
const (
	KeyLaunchImages    = "UILaunchImages"
	KeyLaunchImageName = "UILaunchImageName"
)

// A Copy copies an image of a set into the compiled output.
type Copy struct {
	Source      string
	Destination string
}

// LaunchImageInfo describes one launch image to the system.
type LaunchImageInfo struct {
	MinimumOSVersion string `yaml:"UILaunchImageMinimumOSVersion"`
	Name             string `yaml:"UILaunchImageName"`
	Orientation      string `yaml:"UILaunchImageOrientation,omitempty"`
	Size             string `yaml:"UILaunchImageSize"`
}

// An Output collects what compiling sets produces.
type Output struct {
	Root    string
	Copies  []Copy
	Outputs []string
	// AdditionalInfo is merged into the information property list of the
	// product.
	AdditionalInfo map[string]interface{}
}

func NewOutput(root string) *Output {
	return &Output{Root: root, AdditionalInfo: map[string]interface{}{}}
}

func supportsLandscape(idiom, subtype string) bool {
	switch idiom {
	case "iphone":
		return subtype == "736h"
	case "ipad":
		return true
	}
	return false
}

func screenSize(idiom, subtype string) (int, int, bool) {
	switch idiom {
	case "iphone":
		switch subtype {
		case "":
			return 320, 480, true
		case "retina4":
			return 320, 568, true
		case "667h":
			return 375, 667, true
		case "736h":
			return 414, 736, true
		}
	case "ipad":
		if subtype == "" {
			return 768, 1024, true
		}
	case "tv":
		if subtype == "" {
			return 1920, 1080, true
		}
	}
	return 0, 0, false
}

// extentSize takes the status bar off the height of portrait images and
// off the width of landscape ones.
func extentSize(w, h int, extent, orientation string) (int, int) {
	if extent != "to-status-bar" {
		return w, h
	}
	if orientation == "landscape" {
		return w - statusBarHeight, h
	}
	return w, h - statusBarHeight
}

func orientationValue(o string) string {
	switch o {
	case "portrait":
		return "Portrait"
	case "landscape":
		return "Landscape"
	}
	return ""
}

// CompileLaunchImage copies the images of a launch image set into out
// under names derived from their slots and records them for the system.
// Images for systems before 7 have no record; the set name is recorded as
// the legacy launch image instead. Images without a file or idiom are
// skipped with a warning, images of an unknown size fail the compile.
func CompileLaunchImage(s *Set, out *Output) error {
	catcher := grip.NewBasicCatcher()
	var infos []LaunchImageInfo
	legacy := false

	for _, img := range s.Contents.Images {
		if img.FileName == "" || img.Idiom == "" {
			grip.Warningf("a launch image in %q is unassigned", s.Name)
			continue
		}
		w, h, ok := screenSize(img.Idiom, img.Subtype)
		if !ok {
			catcher.Add(errgo.Newf("a launch image in %q has an invalid idiom and/or subtype", s.Name))
			continue
		}
		if img.Extent != "" {
			w, h = extentSize(w, h, img.Extent, img.Orientation)
		}

		var version *Version
		if img.MinimumSystemVersion != "" {
			v, err := ParseVersion(img.MinimumSystemVersion)
			if err != nil {
				catcher.Add(errgo.Notef(err, "launch image %s of %q", img.FileName, s.Name))
				continue
			}
			version = &v
		}

		name := s.Name
		if version != nil {
			name += version.suffix()
		}
		if img.Orientation != "" && supportsLandscape(img.Idiom, img.Subtype) {
			name += "-" + orientationValue(img.Orientation)
		}
		name += SubtypeSuffix(img.Subtype)

		dst := out.Root + "/" + name + ScaleSuffix(img.Scale) + IdiomSuffix(img.Idiom) + ".png"
		out.Copies = append(out.Copies, Copy{Source: s.Path + "/" + img.FileName, Destination: dst})
		out.Outputs = append(out.Outputs, dst)

		if version == nil || version.Major < 7 {
			legacy = true
			continue
		}
		infos = append(infos, LaunchImageInfo{
			MinimumOSVersion: version.String(),
			Name:             name,
			Orientation:      orientationValue(img.Orientation),
			Size:             "{" + strconv.Itoa(w) + ", " + strconv.Itoa(h) + "}",
		})
	}

	if legacy {
		out.AdditionalInfo[KeyLaunchImageName] = s.Name
	}
	if len(infos) > 0 {
		out.AdditionalInfo[KeyLaunchImages] = infos
	}
	return catcher.Resolve()
}

// CompileImageSet copies the images of an image set into out unchanged.
func CompileImageSet(s *Set, out *Output) error {
	for _, img := range s.Contents.Images {
		if img.FileName == "" {
			continue
		}
		dst := out.Root + "/" + img.FileName
		out.Copies = append(out.Copies, Copy{Source: s.Path + "/" + img.FileName, Destination: dst})
		out.Outputs = append(out.Outputs, dst)
	}
	return nil
}

// Compile compiles the sets it knows of, skipping the others with a
// warning.
func Compile(sets []*Set, out *Output) error {
	catcher := grip.NewBasicCatcher()
	for _, s := range sets {
		switch s.Extension {
		case LaunchImageExtension:
			catcher.Add(CompileLaunchImage(s, out))
		case ImageSetExtension:
			catcher.Add(CompileImageSet(s, out))
		default:
			grip.Warningf("unsupported asset %s", s.Path)
		}
	}
	return catcher.Resolve()
}
