package codegen

import (
	"errors"
	"testing"
)

func TestParseWellFormed(t *testing.T) {
	src := `package generated

const BPF_ANY uint32 = 0
`
	fset, file, err := Parse("bindings.go", []byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if fset == nil || file == nil {
		t.Fatal("Parse returned nil tree for well-formed input")
	}
	if file.Name.Name != "generated" {
		t.Errorf("package name = %q, want generated", file.Name.Name)
	}
}

func TestParseMalformed(t *testing.T) {
	_, _, err := Parse("bindings.go", []byte("pub static mut bpf_x: u32;"))
	if err == nil {
		t.Fatal("Parse succeeded on malformed input")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %T, want *ParseError", err)
	}
	if pe.Unwrap() == nil {
		t.Error("ParseError does not wrap the underlying parser error")
	}
}
