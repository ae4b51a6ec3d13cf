package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileNames lists the manifest file names probed in a directory, in order.
var FileNames = []string{"manifest.hcl", "manifest.yaml", "manifest.yml"}

// FileReader is the default Reader. A location is either a manifest file or
// a directory holding one of FileNames; the format follows the extension.
type FileReader struct {
	HCL  HCLReader
	YAML YAMLReader
}

// NewFileReader returns a FileReader for both supported formats.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// Read resolves location to a manifest file and parses it.
func (r *FileReader) Read(ctx context.Context, location string) (*Manifest, error) {
	path, err := Locate(location)
	if err != nil {
		return nil, wrapError(location, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return r.HCL.Read(ctx, path)
	case ".yaml", ".yml":
		return r.YAML.Read(ctx, path)
	default:
		return nil, &Error{Location: location, Err: fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))}
	}
}

// Locate returns the manifest file for location. A file is returned as is;
// a directory is probed for FileNames.
func Locate(location string) (string, error) {
	info, err := os.Stat(location)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return location, nil
	}
	for _, name := range FileNames {
		candidate := filepath.Join(location, name)
		fi, err := os.Stat(candidate)
		switch {
		case err == nil && !fi.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", err
		}
	}
	return "", ErrNoManifest
}

// IsManifestFile reports whether name is one of FileNames.
func IsManifestFile(name string) bool {
	for _, n := range FileNames {
		if name == n {
			return true
		}
	}
	return false
}
