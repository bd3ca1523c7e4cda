package manifest

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// gitClone clones a git repository to dest.
func gitClone(url, dest string) error {
	cmd := exec.Command("git", "clone", "--quiet", url, dest)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clone %s: %s: %w", url, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// gitCheckout checks out a specific ref (tag, branch, or commit) in a repo.
func gitCheckout(dir, ref string) error {
	cmd := exec.Command("git", "checkout", "--quiet", ref)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git checkout %s in %s: %s: %w", ref, dir, strings.TrimSpace(string(out)), err)
	}
	return nil
}

// EnsureLibbpf makes sure the configured libbpf checkout exists, cloning the
// pinned tag when the directory is missing and a [libbpf] remote is set.
// Returns the checkout path.
func (m *Manifest) EnsureLibbpf() (string, error) {
	dir := m.LibbpfDirPath()
	if dir == "" {
		return "", fmt.Errorf("no libbpf directory configured (set [bindgen] libbpf-dir in bpfgen.toml)")
	}

	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}

	if m.Libbpf.Git == "" {
		return "", fmt.Errorf("libbpf directory %s does not exist and no [libbpf] git remote is configured", dir)
	}

	if err := gitClone(m.Libbpf.Git, dir); err != nil {
		return "", err
	}
	if m.Libbpf.Tag != "" {
		if err := gitCheckout(dir, m.Libbpf.Tag); err != nil {
			return "", err
		}
	}
	return dir, nil
}
