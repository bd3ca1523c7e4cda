package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnsureLibbpfExistingDir(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "libbpf"), 0755); err != nil {
		t.Fatal(err)
	}

	m := &Manifest{Dir: base}
	m.Bindgen.LibbpfDir = "libbpf"

	got, err := m.EnsureLibbpf()
	if err != nil {
		t.Fatalf("EnsureLibbpf failed: %v", err)
	}
	if want := filepath.Join(base, "libbpf"); got != want {
		t.Errorf("EnsureLibbpf = %q, want %q", got, want)
	}
}

func TestEnsureLibbpfUnconfigured(t *testing.T) {
	m := &Manifest{Dir: t.TempDir()}

	_, err := m.EnsureLibbpf()
	if err == nil {
		t.Fatal("EnsureLibbpf succeeded with no libbpf directory configured")
	}
	if !strings.Contains(err.Error(), "bpfgen.toml") {
		t.Errorf("error = %v, want a hint at bpfgen.toml", err)
	}
}

func TestEnsureLibbpfMissingWithoutRemote(t *testing.T) {
	m := &Manifest{Dir: t.TempDir()}
	m.Bindgen.LibbpfDir = "libbpf"

	_, err := m.EnsureLibbpf()
	if err == nil {
		t.Fatal("EnsureLibbpf succeeded for a missing dir with no git remote")
	}
	if !strings.Contains(err.Error(), "git remote") {
		t.Errorf("error = %v, want missing-remote explanation", err)
	}
}

func TestEnsureLibbpfClones(t *testing.T) {
	base := t.TempDir()
	logFile := filepath.Join(t.TempDir(), "git.log")

	// Stub git that records its invocations and creates the clone target.
	binDir := t.TempDir()
	script := `#!/bin/sh
echo "$@" >> "$GIT_STUB_LOG"
if [ "$1" = "clone" ]; then
	mkdir -p "$4"
fi
exit 0
`
	if err := os.WriteFile(filepath.Join(binDir, "git"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("GIT_STUB_LOG", logFile)

	m := &Manifest{Dir: base}
	m.Bindgen.LibbpfDir = "libbpf"
	m.Libbpf.Git = "https://example.com/libbpf.git"
	m.Libbpf.Tag = "v1.4.3"

	got, err := m.EnsureLibbpf()
	if err != nil {
		t.Fatalf("EnsureLibbpf failed: %v", err)
	}
	if want := filepath.Join(base, "libbpf"); got != want {
		t.Errorf("EnsureLibbpf = %q, want %q", got, want)
	}

	invocations, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("git stub never ran: %v", err)
	}
	log := string(invocations)
	if !strings.Contains(log, "clone --quiet https://example.com/libbpf.git") {
		t.Errorf("clone with the configured remote missing from git invocations:\n%s", log)
	}
	if !strings.Contains(log, "checkout --quiet v1.4.3") {
		t.Errorf("checkout of the pinned tag missing from git invocations:\n%s", log)
	}
}

func TestEnsureLibbpfCloneFailure(t *testing.T) {
	binDir := t.TempDir()
	script := "#!/bin/sh\necho 'fatal: repository not found' >&2\nexit 128\n"
	if err := os.WriteFile(filepath.Join(binDir, "git"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	m := &Manifest{Dir: t.TempDir()}
	m.Bindgen.LibbpfDir = "libbpf"
	m.Libbpf.Git = "https://example.com/missing.git"

	_, err := m.EnsureLibbpf()
	if err == nil {
		t.Fatal("EnsureLibbpf succeeded despite git clone failure")
	}
	if !strings.Contains(err.Error(), "repository not found") {
		t.Errorf("error = %v, want git diagnostics included", err)
	}
}
