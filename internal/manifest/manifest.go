// Package manifest reads the per-addon declaration of a name, a version and
// the version constraints on other addons.
//
// Manifests are HCL (manifest.hcl) or YAML (manifest.yaml, manifest.yml).
// The resolver only ever talks to the Reader interface, so the on-disk
// format stays this package's concern.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/addongraph/internal/version"
)

var (
	// ErrNoManifest is returned when a directory holds no manifest file.
	ErrNoManifest = errors.New("no manifest found")
	// ErrMissingName is returned when a manifest does not name its addon.
	ErrMissingName = errors.New("manifest name must not be empty")
	// ErrUnsupportedFormat is returned for files that are neither HCL nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
)

// Manifest is the declaration of one addon.
type Manifest struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Dependencies maps a dependency name to the version constraint
	// required of it. An empty constraint accepts any version.
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// Location is where the manifest was read from.
	Location string `json:"location,omitempty" yaml:"-"`
}

// DependencyNames returns the dependency names in lexical order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks the fields every reader must produce.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if m.Version != "" {
		if err := version.Validate(m.Version); err != nil {
			return fmt.Errorf("addon %q: %w", m.Name, err)
		}
	}
	for _, name := range m.DependencyNames() {
		if name == "" {
			return fmt.Errorf("addon %q: dependency name must not be empty", m.Name)
		}
	}
	return nil
}

// Reader produces a Manifest for a location.
type Reader interface {
	Read(ctx context.Context, location string) (*Manifest, error)
}

// Error is a failure to read or validate the manifest at Location.
type Error struct {
	Location string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapError(location string, err error) error {
	var me *Error
	if errors.As(err, &me) {
		return err
	}
	return &Error{Location: location, Err: err}
}
