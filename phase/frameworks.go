package phase

import (
	"path"

	"github.com/juju/errgo"

	"github.com/vron/xcbuild/project"
	"github.com/vron/xcbuild/tool"
)

type linkers struct {
	ld, libtool, lipo *tool.LinkerResolver
	dsymutil          *tool.Resolver
}

func (c *Context) linkers() (*linkers, error) {
	r, domains := c.env.Build.Registry, c.domains()
	var (
		l   linkers
		err error
	)
	if l.ld, err = tool.NewLinkerResolver(r, domains, tool.LinkerIdentifier); err != nil {
		return nil, errgo.Notef(err, "cannot get linker tools")
	}
	if l.libtool, err = tool.NewLinkerResolver(r, domains, tool.LibtoolIdentifier); err != nil {
		return nil, errgo.Notef(err, "cannot get linker tools")
	}
	if l.lipo, err = tool.NewLinkerResolver(r, domains, tool.LipoIdentifier); err != nil {
		return nil, errgo.Notef(err, "cannot get linker tools")
	}
	if l.dsymutil, err = c.ToolResolver(tool.DsymutilIdentifier); err != nil {
		return nil, errgo.Notef(err, "cannot get linker tools")
	}
	return &l, nil
}

// objects are the object files compiled for variant and arch.
func (c *Context) objects(variant, arch string) []tool.Input {
	var out []tool.Input
	for _, inv := range c.Tool.VariantArchitectureInvocations[tool.VariantArch{Variant: variant, Arch: arch}] {
		for _, o := range inv.Outputs {
			if path.Ext(o) == ".o" {
				out = append(out, tool.PathInput(o))
			}
		}
	}
	return out
}

// resolveFrameworks links the compiled objects with the libraries and
// frameworks of ph, which may be nil. Static libraries are archived with
// libtool; everything else is linked through the compiler driver. With
// more than one architecture each is linked apart and merged with lipo.
func (c *Context) resolveFrameworks(ph *project.Phase) error {
	l, err := c.linkers()
	if err != nil {
		return err
	}
	env := c.env.Settings()
	te := c.env.Target

	binaryType := env.Resolve("MACH_O_TYPE")
	linker := l.ld
	var executable string
	var args []string
	if binaryType == "staticlib" {
		linker = l.libtool
	} else {
		executable = c.Tool.Compilation.LinkerDriver
		args = c.Tool.Compilation.LinkerArgs
	}

	var libraries []tool.Input
	if ph != nil {
		libraries = c.env.ResolveBuildFiles(env, ph.Files)
	}
	products := env.Resolve("BUILT_PRODUCTS_DIR")
	universal := len(te.Architectures) > 1

	for _, variant := range te.Variants {
		venv := env.InsertFront(VariantLevel(variant), false)
		name := venv.Resolve("EXECUTABLE_NAME") + venv.Resolve("EXECUTABLE_VARIANT_SUFFIX")
		intermediates := venv.Resolve("OBJECT_FILE_DIR_" + variant)
		output := products + "/" + venv.Resolve("EXECUTABLE_PATH") + venv.Resolve("EXECUTABLE_VARIANT_SUFFIX")

		var slices []tool.Input
		for _, arch := range te.Architectures {
			aenv := venv.InsertFront(ArchitectureLevel(arch), false)
			objects := c.objects(variant, arch)
			if universal {
				slice := intermediates + "/" + arch + "/" + name
				linker.Resolve(c.Tool, aenv, objects, libraries, slice, args, executable)
				slices = append(slices, tool.PathInput(slice))
			} else {
				linker.Resolve(c.Tool, aenv, objects, libraries, output, args, executable)
			}
		}
		if universal {
			l.lipo.Resolve(c.Tool, venv, slices, nil, output, nil, "")
		}

		if venv.Resolve("DEBUG_INFORMATION_FORMAT") == "dwarf-with-dsym" && binaryType != "staticlib" && binaryType != "mh_object" {
			dsym := venv.Resolve("DWARF_DSYM_FOLDER_PATH") + "/" + venv.Resolve("DWARF_DSYM_FILE_NAME")
			l.dsymutil.Resolve(c.Tool, venv, []tool.Input{tool.PathInput(output)}, []string{dsym}, "")
		}
	}
	return nil
}
