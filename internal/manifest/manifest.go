// SPDX-License-Identifier: MPL-2.0

// Package manifest reads the parts of a module's Cargo.toml that the
// orchestrator cross-checks against its catalog: the package name and the
// declared features.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the manifest file of every module.
const FileName = "Cargo.toml"

// ErrMissingFeature is the sentinel wrapped by MissingFeatureError.
var ErrMissingFeature = errors.New("feature not declared")

type (
	// Manifest is the decoded subset of a Cargo.toml.
	Manifest struct {
		Package  Package             `toml:"package"`
		Features map[string][]string `toml:"features"`
	}

	// Package is the [package] table.
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	}

	// MissingFeatureError reports planned features a module does not declare.
	MissingFeatureError struct {
		Module   string
		Features []string
	}
)

// Error implements the error interface.
func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("module %s does not declare feature(s) %v in %s", e.Module, e.Features, FileName)
}

// Unwrap returns ErrMissingFeature for errors.Is() compatibility.
func (e *MissingFeatureError) Unwrap() error { return ErrMissingFeature }

// Parse decodes manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("line %d, column %d: %w", row, col, err)
		}
		return nil, err
	}
	return &m, nil
}

// Load reads moduleDir/Cargo.toml.
func Load(moduleDir string) (*Manifest, error) {
	path := filepath.Join(moduleDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// HasFeature reports whether the manifest declares feature.
func (m *Manifest) HasFeature(feature string) bool {
	_, ok := m.Features[feature]
	return ok
}

// Require returns a *MissingFeatureError listing every feature in want that
// the manifest does not declare.
func (m *Manifest) Require(module string, want ...string) error {
	var missing []string
	for _, f := range want {
		if !m.HasFeature(f) && !slices.Contains(missing, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFeatureError{Module: module, Features: missing}
	}
	return nil
}
