package manifest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/addongraph/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// YAMLReader reads manifests of the form:
//
//	name: physics
//	version: 1.4.0
//	dependencies:
//	  core: ^1.0.0
type YAMLReader struct{}

type yamlManifest struct {
	Name         string            `yaml:"name"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description"`
	Dependencies map[string]string `yaml:"dependencies"`
}

// Read parses the YAML file at location. Unknown keys are rejected.
func (YAMLReader) Read(ctx context.Context, location string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Reading YAML manifest.", "location", location)

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, &Error{Location: location, Err: err}
	}

	var raw yamlManifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &Error{Location: location, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	m := &Manifest{
		Name:         raw.Name,
		Version:      raw.Version,
		Dependencies: raw.Dependencies,
		Location:     location,
	}
	if err := m.Validate(); err != nil {
		return nil, &Error{Location: location, Err: err}
	}
	logger.Debug("YAML manifest read.", "addon", m.Name, "dependencies", len(m.Dependencies))
	return m, nil
}
