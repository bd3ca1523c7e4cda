// bpfgen regenerates the BPF helper bindings for the gobpf support library.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/bpfgen/codegen"
	"github.com/chazu/bpfgen/manifest"
)

// loadManifest switches to chdir when set, then resolves the nearest
// bpfgen.toml upward from the working directory. Relative flag paths are
// interpreted after the switch, like make -C.
func loadManifest(chdir string) (*manifest.Manifest, error) {
	if chdir != "" {
		if err := os.Chdir(chdir); err != nil {
			return nil, fmt.Errorf("cannot change to %s: %w", chdir, err)
		}
	}
	return manifest.FindAndLoad(".")
}

func main() {
	chdir := flag.String("C", "", "Change to this directory before doing anything")
	libbpfDir := flag.String("libbpf-dir", "", "Path to the libbpf checkout (overrides bpfgen.toml)")
	outDir := flag.String("o", "", "Output directory for generated sources")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bpfgen [options]\n\n")
		fmt.Fprintf(os.Stderr, "Regenerates bindings.go and helpers.go from the helper binding header.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bpfgen -libbpf-dir ../libbpf     # explicit checkout\n")
		fmt.Fprintf(os.Stderr, "  bpfgen -C bpf/gobpf              # settings from bpfgen.toml there\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	m, err := loadManifest(*chdir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading manifest: %v\n", err)
		os.Exit(1)
	}

	opts := codegen.Options{
		LibbpfDir: *libbpfDir,
		OutDir:    *outDir,
		Stderr:    os.Stderr,
	}

	if m != nil {
		opts.BindgenBin = m.Bindgen.Bin
		opts.FormatBin = m.Format.Bin
		if opts.OutDir == "" {
			opts.OutDir = m.OutDirPath()
		}
		if opts.LibbpfDir == "" {
			dir, err := m.EnsureLibbpf()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error preparing libbpf: %v\n", err)
				os.Exit(1)
			}
			opts.LibbpfDir = dir
		}
	}

	if opts.LibbpfDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -libbpf-dir is required (or configure [bindgen] libbpf-dir in bpfgen.toml)")
		flag.Usage()
		os.Exit(1)
	}

	if err := codegen.Run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "bpfgen: %v\n", err)
		os.Exit(1)
	}
}
