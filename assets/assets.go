// Package assets reads the sets of an asset catalog and compiles them into
// the files and information property list entries of a product.
package assets

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errgo"
	"gopkg.in/yaml.v3"

	"github.com/vron/xcbuild/filesystem"
)

// Extensions of the asset sets.
const (
	CatalogExtension     = "xcassets"
	LaunchImageExtension = "launchimage"
	ImageSetExtension    = "imageset"
	contentsFile         = "Contents.json"
)

// An Image is one slot of a set as listed in its Contents.json.
type Image struct {
	FileName             string `yaml:"filename"`
	Idiom                string `yaml:"idiom"`
	Subtype              string `yaml:"subtype"`
	Orientation          string `yaml:"orientation"`
	Extent               string `yaml:"extent"`
	MinimumSystemVersion string `yaml:"minimum-system-version"`
	Scale                string `yaml:"scale"`
}

// Contents is the Contents.json of a set.
type Contents struct {
	Images []Image `yaml:"images"`
	Info   struct {
		Version int    `yaml:"version"`
		Author  string `yaml:"author"`
	} `yaml:"info"`
}

// A Set is a directory of a catalog holding a Contents.json.
type Set struct {
	Path string
	// Name is the directory name without its extension.
	Name      string
	Extension string
	Contents  Contents
}

func readContents(fs filesystem.Filesystem, dir string) (Contents, error) {
	var c Contents
	p := dir + "/" + contentsFile
	if !fs.Exists(p) {
		return c, nil
	}
	data, err := fs.Read(p)
	if err != nil {
		return c, errgo.Notef(err, "cannot read %s", p)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, errgo.Notef(err, "cannot parse %s", p)
	}
	return c, nil
}

// LoadSet reads the set at dir.
func LoadSet(fs filesystem.Filesystem, dir string) (*Set, error) {
	base := path.Base(dir)
	ext := strings.TrimPrefix(path.Ext(base), ".")
	c, err := readContents(fs, dir)
	if err != nil {
		return nil, err
	}
	return &Set{
		Path:      dir,
		Name:      strings.TrimSuffix(base, path.Ext(base)),
		Extension: ext,
		Contents:  c,
	}, nil
}

// LoadCatalog finds the sets below the catalog at dir, in path order.
// Folders without an extension are namespaces and are searched too.
func LoadCatalog(fs filesystem.Filesystem, dir string) ([]*Set, error) {
	if !fs.IsDirectory(dir) {
		return nil, errgo.Newf("%s is not an asset catalog", dir)
	}
	var sets []*Set
	var walk func(string) error
	walk = func(d string) error {
		names, err := fs.EnumerateDirectory(d)
		if err != nil {
			return errgo.Notef(err, "cannot list %s", d)
		}
		sort.Strings(names)
		for _, n := range names {
			p := d + "/" + n
			if !fs.IsDirectory(p) {
				continue
			}
			if path.Ext(n) == "" {
				if err := walk(p); err != nil {
					return err
				}
				continue
			}
			s, err := LoadSet(fs, p)
			if err != nil {
				return err
			}
			sets = append(sets, s)
		}
		return nil
	}
	if err := walk(dir); err != nil {
		return nil, err
	}
	return sets, nil
}

// A Version is a minimum system version such as 8.0 or 9.3.1.
type Version struct {
	Major, Minor int
	Patch        *int
}

// ParseVersion parses a dotted version of two or three numbers.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return v, errgo.Newf("invalid version %q", s)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, errgo.Newf("invalid version %q", s)
		}
		nums[i] = n
	}
	v.Major, v.Minor = nums[0], nums[1]
	if len(nums) == 3 {
		v.Patch = &nums[2]
	}
	return v, nil
}

func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor)
	if v.Patch != nil {
		s += "." + strconv.Itoa(*v.Patch)
	}
	return s
}

// suffix is the version as it appears in file names: every component
// including the patch level, without separators.
func (v Version) suffix() string {
	patch := 0
	if v.Patch != nil {
		patch = *v.Patch
	}
	return "-" + strconv.Itoa(v.Major) + strconv.Itoa(v.Minor) + strconv.Itoa(patch)
}

// IdiomSuffix is appended to the names of files for idiom.
func IdiomSuffix(idiom string) string {
	switch idiom {
	case "ipad":
		return "~ipad"
	case "tv":
		return "~tv"
	case "watch":
		return "~watch"
	case "car":
		return "~car"
	}
	return ""
}

// ScaleSuffix is appended to the names of files of scales other than 1x.
func ScaleSuffix(scale string) string {
	if scale == "" || scale == "1x" {
		return ""
	}
	return "@" + scale
}

// SubtypeSuffix is appended to the names of files for a device subtype.
func SubtypeSuffix(subtype string) string {
	switch subtype {
	case "retina4":
		return "-568h"
	case "667h", "736h":
		return "-" + subtype
	}
	return ""
}
