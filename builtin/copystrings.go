package builtin

import (
	"path"
	"strings"

	"github.com/juju/errgo"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/vron/xcbuild/filesystem"
	"github.com/vron/xcbuild/process"
)

// CopyStrings copies strings files into a directory, converting their
// encoding:
//
//	builtin-copyStrings [--inputencoding enc] [--outputencoding enc] --outdir dir input...
//
// Encodings are utf-8, utf-16 and utf-32; the wide ones are little endian
// with a byte order mark. Output defaults to utf-16. Input without an
// encoding is read as utf-8 unless it starts with a utf-16 byte order
// mark.
type CopyStrings struct{}

func (*CopyStrings) Name() string { return "builtin-copyStrings" }

type copyStringsOptions struct {
	inputEncoding  string
	outputEncoding string
	outputDir      string
	validate       bool
	inputs         []string
}

func parseCopyStringsOptions(args []string) (copyStringsOptions, error) {
	var o copyStringsOptions
	a := &arguments{args: args}
	for {
		arg, ok := a.next()
		if !ok {
			break
		}
		var err error
		switch arg {
		case "--inputencoding":
			o.inputEncoding, err = a.value(arg)
		case "--outputencoding":
			o.outputEncoding, err = a.value(arg)
		case "--outdir":
			o.outputDir, err = a.value(arg)
		case "--validate":
			o.validate = true
		default:
			if arg == "" || strings.HasPrefix(arg, "-") {
				return o, errgo.Newf("unknown argument %q", arg)
			}
			o.inputs = append(o.inputs, arg)
		}
		if err != nil {
			return o, err
		}
	}
	return o, nil
}

// stringsEncoding returns the encoding called name and whether it is known.
// Decoding with it skips a leading byte order mark.
func stringsEncoding(name string) (encoding.Encoding, bool) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return unicode.UTF8, true
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), true
	case "utf-32", "utf32":
		return utf32.UTF32(utf32.LittleEndian, utf32.UseBOM), true
	}
	return nil, false
}

func (*CopyStrings) Run(pc *process.Context, fs filesystem.Filesystem) error {
	o, err := parseCopyStringsOptions(pc.Arguments)
	if err != nil {
		return err
	}
	if o.outputDir == "" {
		return errgo.New("output directory not provided")
	}
	if len(o.inputs) == 0 {
		return errgo.New("no input files provided")
	}

	out := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	if o.outputEncoding != "" {
		e, ok := stringsEncoding(o.outputEncoding)
		if !ok {
			return errgo.Newf("invalid output encoding %q", o.outputEncoding)
		}
		out = e
	}
	var in transform.Transformer = unicode.BOMOverride(unicode.UTF8BOM.NewDecoder())
	if o.inputEncoding != "" {
		e, ok := stringsEncoding(o.inputEncoding)
		if !ok {
			return errgo.Newf("invalid input encoding %q", o.inputEncoding)
		}
		if e == unicode.UTF8 {
			e = unicode.UTF8BOM
		}
		in = e.NewDecoder()
	}

	dir := resolve(pc, o.outputDir)
	for _, input := range o.inputs {
		data, err := fs.Read(resolve(pc, input))
		if err != nil {
			return errgo.Notef(err, "unable to read input %s", input)
		}
		text, _, err := transform.Bytes(in, data)
		if err != nil {
			return errgo.Notef(err, "%s: cannot decode", input)
		}
		if o.validate && !strings.Contains(string(text), "=") && strings.TrimSpace(string(text)) != "" {
			return errgo.Newf("%s: not a strings file", input)
		}
		encoded, err := out.NewEncoder().Bytes(text)
		if err != nil {
			return errgo.Notef(err, "%s: cannot encode", input)
		}
		if err := fs.CreateDirectory(dir); err != nil {
			return errgo.Notef(err, "cannot create %s", dir)
		}
		if err := fs.Write(dir+"/"+path.Base(input), encoded); err != nil {
			return errgo.Notef(err, "%s: could not write output", input)
		}
	}
	return nil
}
