// Package bindgen invokes the binding generator that turns the BPF helper
// header into raw Go declarations.
package bindgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
)

// Header is the helper binding header, relative to the project root.
const Header = "bpf/gobpf/include/gobpf_bindings.h"

// Allow-lists passed to the generator. The generated file must contain the
// map and XDP types plus every helper constant and function pointer, and
// nothing else.
var (
	allowTypes = []string{"bpf_map_.*", "xdp_.*"}
	allowVars  = []string{"BPF_.*", "bpf_.*"}
)

// Options configures a generator run.
type Options struct {
	// Bin is the generator binary. Defaults to "bindgen".
	Bin string

	// LibbpfDir is the libbpf checkout supplying include paths.
	LibbpfDir string

	// Header overrides the default binding header path.
	Header string

	// Stderr receives the generator's standard error when it exits non-zero.
	Stderr io.Writer
}

// Command builds the fixed generator invocation. The flag set is not
// user-configurable beyond the binary and include directory: layout tests are
// disabled, only the core runtime is targeted, primitive C types are emitted
// under the cty prefix, and enums become plain constants without name
// prefixing.
func Command(opts Options) *exec.Cmd {
	bin := opts.Bin
	if bin == "" {
		bin = "bindgen"
	}
	header := opts.Header
	if header == "" {
		header = Header
	}

	args := []string{
		"--no-layout-tests",
		"--use-core",
		"--ctypes-prefix", "cty",
		"--default-enum-style", "consts",
		"--no-prepend-enum-name",
		header,
	}
	for _, t := range allowTypes {
		args = append(args, "--allowlist-type", t)
	}
	for _, v := range allowVars {
		args = append(args, "--allowlist-var", v)
	}
	args = append(args, "--", "-I", filepath.Join(opts.LibbpfDir, "src"))

	return exec.Command(bin, args...)
}

// Generate runs the generator and returns its full standard output. The call
// blocks until the generator exits. A non-zero exit forwards the captured
// standard error to opts.Stderr and reports the exit status; a spawn failure
// is propagated as-is.
func Generate(opts Options) ([]byte, error) {
	cmd := Command(opts)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if opts.Stderr != nil {
				opts.Stderr.Write(stderr.Bytes())
			}
			return nil, fmt.Errorf("%s failed: %s", cmd.Path, exitErr.ProcessState)
		}
		return nil, fmt.Errorf("running %s: %w", cmd.Path, err)
	}

	return stdout.Bytes(), nil
}
