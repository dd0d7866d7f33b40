package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vron/xcbuild/filesystem"
)

const launchImageContents = `{
  "images": [
    {
      "filename": "phone.png",
      "idiom": "iphone",
      "orientation": "portrait",
      "extent": "to-status-bar",
      "minimum-system-version": "7.0",
      "scale": "1x"
    },
    {
      "filename": "giraffe.png",
      "idiom": "iphone",
      "subtype": "retina4",
      "orientation": "portrait",
      "extent": "full-screen",
      "minimum-system-version": "8.0",
      "scale": "2x"
    },
    {
      "filename": "phone-landscape.png",
      "idiom": "iphone",
      "subtype": "736h",
      "orientation": "landscape",
      "extent": "full-screen",
      "minimum-system-version": "8.0",
      "scale": "3x"
    },
    {
      "filename": "pad-portrait.png",
      "idiom": "ipad",
      "orientation": "portrait",
      "extent": "full-screen",
      "minimum-system-version": "7.0",
      "scale": "1x"
    },
    {
      "filename": "pad-landscape.png",
      "idiom": "ipad",
      "orientation": "landscape",
      "extent": "full-screen",
      "minimum-system-version": "7.0",
      "scale": "1x"
    }
  ],
  "info": {
    "version": 1,
    "author": "xcode"
  }
}`

const legacyContents = `{
  "images": [
    {
      "filename": "legacy.png",
      "idiom": "iphone",
      "orientation": "portrait",
      "extent": "full-screen",
      "scale": "1x"
    },
    {
      "filename": "modern.png",
      "idiom": "iphone",
      "orientation": "portrait",
      "extent": "full-screen",
      "minimum-system-version": "7.0",
      "scale": "1x"
    }
  ],
  "info": {
    "version": 1,
    "author": "xcode"
  }
}`

func launchImage(t *testing.T, contents string, files ...string) *Set {
	fs := filesystem.NewMemory()
	fs.AddFile("/LaunchImage.launchimage/Contents.json", []byte(contents), false)
	for _, f := range files {
		fs.AddFile("/LaunchImage.launchimage/"+f, []byte(f), false)
	}
	s, err := LoadSet(fs, "/LaunchImage.launchimage")
	require.NoError(t, err)
	return s
}

func TestCompileLaunchImage(t *testing.T) {
	s := launchImage(t, launchImageContents)
	assert.Equal(t, "LaunchImage", s.Name)
	assert.Equal(t, LaunchImageExtension, s.Extension)
	assert.Equal(t, 1, s.Contents.Info.Version)

	out := NewOutput("/output")
	require.NoError(t, CompileLaunchImage(s, out))

	assert.Equal(t, []Copy{
		{"/LaunchImage.launchimage/phone.png", "/output/LaunchImage-700.png"},
		{"/LaunchImage.launchimage/giraffe.png", "/output/LaunchImage-800-568h@2x.png"},
		{"/LaunchImage.launchimage/phone-landscape.png", "/output/LaunchImage-800-Landscape-736h@3x.png"},
		{"/LaunchImage.launchimage/pad-portrait.png", "/output/LaunchImage-700-Portrait~ipad.png"},
		{"/LaunchImage.launchimage/pad-landscape.png", "/output/LaunchImage-700-Landscape~ipad.png"},
	}, out.Copies)
	assert.Equal(t, []string{
		"/output/LaunchImage-700.png",
		"/output/LaunchImage-800-568h@2x.png",
		"/output/LaunchImage-800-Landscape-736h@3x.png",
		"/output/LaunchImage-700-Portrait~ipad.png",
		"/output/LaunchImage-700-Landscape~ipad.png",
	}, out.Outputs)

	require.Len(t, out.AdditionalInfo, 1)
	assert.Equal(t, []LaunchImageInfo{
		{"7.0", "LaunchImage-700", "Portrait", "{320, 460}"},
		{"8.0", "LaunchImage-800-568h", "Portrait", "{320, 568}"},
		{"8.0", "LaunchImage-800-Landscape-736h", "Landscape", "{414, 736}"},
		{"7.0", "LaunchImage-700-Portrait", "Portrait", "{768, 1024}"},
		{"7.0", "LaunchImage-700-Landscape", "Landscape", "{768, 1024}"},
	}, out.AdditionalInfo[KeyLaunchImages])
}

func TestCompileLaunchImageLegacy(t *testing.T) {
	out := NewOutput("/output")
	require.NoError(t, CompileLaunchImage(launchImage(t, legacyContents), out))

	assert.Equal(t, []Copy{
		{"/LaunchImage.launchimage/legacy.png", "/output/LaunchImage.png"},
		{"/LaunchImage.launchimage/modern.png", "/output/LaunchImage-700.png"},
	}, out.Copies)
	assert.Len(t, out.AdditionalInfo, 2)
	assert.Equal(t, "LaunchImage", out.AdditionalInfo[KeyLaunchImageName])
	assert.Equal(t, []LaunchImageInfo{
		{"7.0", "LaunchImage-700", "Portrait", "{320, 480}"},
	}, out.AdditionalInfo[KeyLaunchImages])
}

func TestCompileLaunchImageInvalid(t *testing.T) {
	s := launchImage(t, `{"images": [
		{"filename": "a.png", "idiom": "mac"},
		{"idiom": "iphone"},
		{"filename": "b.png", "idiom": "ipad", "landscape": "x", "minimum-system-version": "seven"}
	]}`)
	out := NewOutput("/output")
	assert.Error(t, CompileLaunchImage(s, out))
	assert.Empty(t, out.Copies)
	assert.Empty(t, out.AdditionalInfo)
}

func TestExtentSize(t *testing.T) {
	w, h := extentSize(768, 1024, "to-status-bar", "landscape")
	assert.Equal(t, []int{748, 1024}, []int{w, h})
	w, h = extentSize(768, 1024, "to-status-bar", "portrait")
	assert.Equal(t, []int{768, 1004}, []int{w, h})
	w, h = extentSize(768, 1024, "full-screen", "portrait")
	assert.Equal(t, []int{768, 1024}, []int{w, h})
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("9.3.1")
	require.NoError(t, err)
	assert.Equal(t, "9.3.1", v.String())
	assert.Equal(t, "-931", v.suffix())

	v, err = ParseVersion("10.0")
	require.NoError(t, err)
	assert.Equal(t, "10.0", v.String())
	assert.Equal(t, "-1000", v.suffix())

	for _, s := range []string{"", "7", "7.x", "1.2.3.4", "-1.0"} {
		_, err := ParseVersion(s)
		assert.Error(t, err, s)
	}
}

func TestLoadCatalog(t *testing.T) {
	fs := filesystem.NewMemory()
	fs.AddFile("/A.xcassets/Contents.json", []byte(`{"info": {"version": 1}}`), false)
	fs.AddFile("/A.xcassets/Icon.imageset/Contents.json", []byte(`{"images": [{"filename": "icon.png", "idiom": "mac"}, {"idiom": "mac", "scale": "2x"}]}`), false)
	fs.AddFile("/A.xcassets/Icon.imageset/icon.png", []byte("png"), false)
	fs.AddFile("/A.xcassets/Group/Launch.launchimage/Contents.json", []byte(legacyContents), false)
	fs.AddFile("/A.xcassets/Color.colorset/Contents.json", []byte(`{}`), false)

	sets, err := LoadCatalog(fs, "/A.xcassets")
	require.NoError(t, err)
	var paths []string
	for _, s := range sets {
		paths = append(paths, s.Path)
	}
	assert.Equal(t, []string{
		"/A.xcassets/Color.colorset",
		"/A.xcassets/Group/Launch.launchimage",
		"/A.xcassets/Icon.imageset",
	}, paths)

	out := NewOutput("/out")
	require.NoError(t, Compile(sets, out))
	assert.Equal(t, []string{"/out/Launch.png", "/out/Launch-700.png", "/out/icon.png"}, out.Outputs)
	assert.Equal(t, "Launch", out.AdditionalInfo[KeyLaunchImageName])

	_, err = LoadCatalog(fs, "/missing.xcassets")
	assert.Error(t, err)
}
