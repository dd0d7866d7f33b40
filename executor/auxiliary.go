package executor

import (
	"bytes"
	"path"

	"github.com/dustin/go-humanize"
	"github.com/juju/errgo"
	"github.com/mongodb/grip/message"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/tool"
)

// writeAuxiliaryFiles writes files before any invocation of a target runs.
// A file already holding its contents is not written again, and a
// directory is only created when missing. Chunks copied from other files
// are read when the file is written.
func (o *Options) writeAuxiliaryFiles(fs filesystem.Filesystem, files []tool.AuxiliaryFile) error {
	for _, f := range files {
		dir := path.Dir(f.Path)
		if !fs.IsDirectory(dir) {
			show(o.Logger, o.Formatter.CreateAuxiliaryDirectory(dir))
			if !o.DryRun {
				if err := fs.CreateDirectory(dir); err != nil {
					return errgo.Notef(err, "cannot create directory %s", dir)
				}
			}
		}

		contents, err := f.Data(fs)
		if err != nil {
			return err
		}
		if current, err := fs.Read(f.Path); err == nil && bytes.Equal(current, contents) {
			o.Logger.Debug(message.Fields{
				"message": "auxiliary file unchanged",
				"path":    f.Path,
			})
		} else {
			show(o.Logger, o.Formatter.WriteAuxiliaryFile(f.Path))
			if !o.DryRun {
				if err := fs.Write(f.Path, contents); err != nil {
					return errgo.Notef(err, "cannot write auxiliary file %s", f.Path)
				}
				o.Logger.Debug(message.Fields{
					"message": "wrote auxiliary file",
					"path":    f.Path,
					"size":    humanize.Bytes(uint64(len(contents))),
				})
			}
		}

		if f.Executable && !fs.IsExecutable(f.Path) {
			show(o.Logger, o.Formatter.SetAuxiliaryExecutable(f.Path))
			if !o.DryRun {
				if err := fs.SetExecutable(f.Path, true); err != nil {
					return errgo.Notef(err, "cannot make %s executable", f.Path)
				}
			}
		}
	}
	return nil
}
