// Package manifest handles bpfgen.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a bpfgen.toml project configuration.
type Manifest struct {
	Project Project       `toml:"project"`
	Bindgen BindgenConfig `toml:"bindgen"`
	Libbpf  LibbpfConfig  `toml:"libbpf"`
	Format  FormatConfig  `toml:"format"`

	// Dir is the directory containing the bpfgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// BindgenConfig configures the binding generator invocation.
type BindgenConfig struct {
	Bin       string `toml:"bin"`
	LibbpfDir string `toml:"libbpf-dir"`
	OutDir    string `toml:"out-dir"`
}

// LibbpfConfig pins the libbpf checkout used for include paths.
type LibbpfConfig struct {
	Git string `toml:"git"`
	Tag string `toml:"tag"`
}

// FormatConfig configures the source formatter run on generated files.
type FormatConfig struct {
	Bin string `toml:"bin"`
}

// Load parses a bpfgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "bpfgen.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Bindgen.Bin == "" {
		m.Bindgen.Bin = "bindgen"
	}
	if m.Format.Bin == "" {
		m.Format.Bin = "gofmt"
	}
	if m.Bindgen.OutDir == "" {
		m.Bindgen.OutDir = filepath.Join("bpf", "gobpf", "generated")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a bpfgen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "bpfgen.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// LibbpfDirPath returns the absolute path of the configured libbpf checkout.
func (m *Manifest) LibbpfDirPath() string {
	if m.Bindgen.LibbpfDir == "" {
		return ""
	}
	if filepath.IsAbs(m.Bindgen.LibbpfDir) {
		return m.Bindgen.LibbpfDir
	}
	return filepath.Join(m.Dir, m.Bindgen.LibbpfDir)
}

// OutDirPath returns the absolute path of the generated-sources directory.
func (m *Manifest) OutDirPath() string {
	if filepath.IsAbs(m.Bindgen.OutDir) {
		return m.Bindgen.OutDir
	}
	return filepath.Join(m.Dir, m.Bindgen.OutDir)
}
