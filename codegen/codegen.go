// Package codegen rewrites raw BPF helper bindings into direct-call wrapper
// functions. The BPF target cannot link external symbols; each kernel helper
// is reached by handing the loader a small fixed call index instead of an
// address. The pipeline runs the binding generator over the helper header,
// deletes the extern declarations the target can never use, and synthesizes
// one wrapper per helper that forwards its arguments through the fixed index.
package codegen

import (
	"io"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/bpfgen/bindgen"
)

var log = commonlog.GetLogger("bpfgen")

// Options configures one pipeline run.
type Options struct {
	// LibbpfDir supplies the generator's include path.
	LibbpfDir string

	// OutDir is the generated-sources directory. Defaults to
	// bpf/gobpf/generated.
	OutDir string

	// BindgenBin and FormatBin override the generator and formatter
	// binaries.
	BindgenBin string
	FormatBin  string

	// Stderr receives generator diagnostics on failure.
	Stderr io.Writer
}

// Run executes the full pipeline: generate, parse, rewrite, emit, format.
// Stages run strictly in sequence and the first failing stage aborts the run;
// artifacts written before the failure are left on disk.
func Run(opts Options) error {
	log.Infof("running binding generator against %s", opts.LibbpfDir)
	raw, err := bindgen.Generate(bindgen.Options{
		Bin:       opts.BindgenBin,
		LibbpfDir: opts.LibbpfDir,
		Stderr:    opts.Stderr,
	})
	if err != nil {
		return err
	}

	fset, file, err := Parse(BindingsFile, raw)
	if err != nil {
		return err
	}

	helpers, err := Rewrite(fset, file)
	if err != nil {
		return err
	}
	log.Infof("extracted %d helpers", len(helpers))
	for _, h := range helpers {
		if h.Suppressed {
			log.Noticef("helper %s (index %d) suppressed: variadic signature", h.Name, h.CallIndex)
		}
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = filepath.Join("bpf", "gobpf", "generated")
	}
	bindingsPath := filepath.Join(outDir, BindingsFile)
	helpersPath := filepath.Join(outDir, HelpersFile)

	bindings, err := RenderBindings(fset, file)
	if err != nil {
		return err
	}
	if err := WriteArtifact(bindingsPath, bindings); err != nil {
		return err
	}
	if err := WriteArtifact(helpersPath, RenderHelpers(helpers)); err != nil {
		return err
	}
	log.Debugf("wrote %s and %s", bindingsPath, helpersPath)

	if err := FormatFile(opts.FormatBin, bindingsPath); err != nil {
		return err
	}
	if err := FormatFile(opts.FormatBin, helpersPath); err != nil {
		return err
	}

	return nil
}
