package filesystem

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errgo"
)

// OS is the Filesystem of the running process.
type OS struct{}

var _ Filesystem = OS{}

func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) IsDirectory(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func (OS) IsExecutable(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir() && fi.Mode()&0111 != 0
}

func (OS) Info(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, errgo.Mask(err, os.IsNotExist)
	}
	return Info{
		Size:       fi.Size(),
		ModTime:    fi.ModTime(),
		Directory:  fi.IsDir(),
		Executable: !fi.IsDir() && fi.Mode()&0111 != 0,
	}, nil
}

func (OS) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	return data, errgo.Mask(err, os.IsNotExist)
}

func (OS) Write(path string, data []byte) error {
	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	return errgo.Mask(os.WriteFile(path, data, mode))
}

func (OS) SetExecutable(path string, executable bool) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errgo.Mask(err, os.IsNotExist)
	}
	mode := fi.Mode().Perm()
	if executable {
		mode |= 0111
	} else {
		mode &^= 0111
	}
	return errgo.Mask(os.Chmod(path, mode))
}

func (OS) Remove(path string) error {
	return errgo.Mask(os.RemoveAll(path))
}

func (OS) CreateDirectory(path string) error {
	return errgo.Mask(os.MkdirAll(path, 0755))
}

func (OS) EnumerateDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errgo.Mask(err, os.IsNotExist)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (OS) ResolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
