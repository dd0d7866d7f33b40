package build

import (
	"crypto/md5"
	"encoding/binary"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/setting"
)

// Actions a build can perform.
const (
	ActionBuild   = "build"
	ActionInstall = "install"
	ActionClean   = "clean"
)

// A Context is one requested build of a project.
type Context struct {
	Project       *project.Project
	Action        string
	Configuration string
	// DefaultConfiguration is set when Configuration was not requested
	// explicitly and each target may use its own default.
	DefaultConfiguration bool
	Overrides            []setting.Level
}

// NewContext creates a build context. An empty configuration selects the
// project's default configuration.
func NewContext(p *project.Project, action, configuration string, overrides ...setting.Level) *Context {
	c := &Context{
		Project:       p,
		Action:        action,
		Configuration: configuration,
		Overrides:     overrides,
	}
	if c.Action == "" {
		c.Action = ActionBuild
	}
	if c.Configuration == "" {
		c.DefaultConfiguration = true
		c.Configuration = p.DefaultConfiguration
	}
	return c
}

// ActionSettings returns the settings derived from the request.
func (c *Context) ActionSettings() setting.Level {
	return setting.NewLevel(
		setting.Create("ACTION", c.Action),
		setting.Create("BUILD_COMPONENTS", "headers build"),
		setting.Create("CONFIGURATION", c.Configuration),
	)
}

// BaseSettings returns the build directory layout below the derived data
// directory of the project.
func (c *Context) BaseSettings() setting.Level {
	build := c.DerivedDataName()
	return setting.NewLevel(
		setting.Define("CONFIGURATION_BUILD_DIR", "$(BUILD_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)"),
		setting.Define("CONFIGURATION_TEMP_DIR", "$(PROJECT_TEMP_DIR)/$(CONFIGURATION)$(EFFECTIVE_PLATFORM_NAME)"),
		setting.Define("SYMROOT", "$(DERIVED_DATA_DIR)/"+build+"/Build/Products"),
		setting.Define("OBJROOT", "$(DERIVED_DATA_DIR)/"+build+"/Build/Intermediates"),
	)
}

// DerivedDataName names the project's derived data directory by its name
// and a hash of its path.
func (c *Context) DerivedDataName() string {
	return c.Project.Name + "-" + DerivedDataHash(c.Project.Path)
}

// DerivedDataHash encodes the md5 of p as 28 letters, each half of the
// digest giving 14 base 26 digits.
func DerivedDataHash(p string) string {
	sum := md5.Sum([]byte(p))
	out := make([]byte, 28)
	for half := 0; half < 2; half++ {
		n := binary.BigEndian.Uint64(sum[half*8:])
		for i := 13; i >= 0; i-- {
			out[half*14+i] = 'a' + byte(n%26)
			n /= 26
		}
	}
	return string(out)
}
