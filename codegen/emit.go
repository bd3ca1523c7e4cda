package codegen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Artifact filenames under the generated-sources directory.
const (
	BindingsFile = "bindings.go"
	HelpersFile  = "helpers.go"
)

const generatedHeader = "// Code generated by bpfgen. DO NOT EDIT.\n\n"

// helpersPrelude opens the helpers artifact: the reference to the bindings
// namespace (the two files share the generated package) and the single
// invoke-by-fixed-index primitive every wrapper goes through. The loader
// substitutes the real call target for the integer at load time; on this
// target the index is a protocol value, not a memory address.
const helpersPrelude = `package generated

import "unsafe"

// helperFn reinterprets a fixed helper call index as a callable of type F.
//
//go:inline
func helperFn[F any](idx uintptr) F {
	return *(*F)(unsafe.Pointer(&idx))
}
`

// RenderBindings serializes the rewritten declaration tree.
func RenderBindings(fset *token.FileSet, file *ast.File) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, fmt.Errorf("printing bindings: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderHelpers concatenates the prelude and the wrapper texts in
// accumulation order. Suppressed wrappers are included as-is; they are
// already inert block comments.
func RenderHelpers(helpers []Helper) []byte {
	var buf bytes.Buffer
	buf.WriteString(generatedHeader)
	buf.WriteString(helpersPrelude)
	for _, h := range helpers {
		buf.WriteString("\n")
		buf.WriteString(h.Wrapper)
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// WriteArtifact writes one artifact, creating the output directory on first
// use.
func WriteArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// FormatFile runs the external formatter on one artifact in place. The exit
// status is checked for both artifacts; an unformatted helpers file would
// otherwise sit on disk looking healthy.
func FormatFile(bin, path string) error {
	if bin == "" {
		bin = "gofmt"
	}
	cmd := exec.Command(bin, "-w", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s -w %s: %s: %w", bin, path, strings.TrimSpace(string(out)), err)
	}
	return nil
}
