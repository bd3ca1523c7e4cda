package codegen

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// helperPrefix selects which extern statics are rewritten into wrappers.
const helperPrefix = "bpf_"

// externMarker is the doc-comment directive the generator puts on var groups
// that describe externally-linked symbols. The BPF target has no linker to
// resolve them, so every marked group is removed from the tree.
const externMarker = "//go:extern"

// Helper describes one extracted kernel helper. Created once during
// traversal and never mutated afterward.
type Helper struct {
	Name      string
	CallIndex int

	// Wrapper is the synthesized function text. When Suppressed is set the
	// text is wrapped in a block comment and must never reach the compiler.
	Wrapper    string
	Suppressed bool
}

// InvariantError reports a declaration that matched the eligibility surface
// shape but whose inner type desynchronized from the generator's output
// shape. Aborting here beats silently emitting a wrapper with the wrong
// calling convention.
type InvariantError struct {
	Name   string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("helper %s: %s", e.Name, e.Reason)
}

// Rewrite performs the single extraction pass over the declaration tree:
// every extern var group is deleted after its statics have been visited, and
// each eligible static is turned into a wrapper with a 1-based call index
// assigned in encounter order. The helper list is the only output besides the
// mutated tree; Rewrite keeps no state between calls.
func Rewrite(fset *token.FileSet, file *ast.File) ([]Helper, error) {
	var helpers []Helper
	var dead []posRange
	var firstErr error

	astutil.Apply(file, nil, func(c *astutil.Cursor) bool {
		decl, ok := c.Node().(*ast.GenDecl)
		if !ok || !isExternGroup(decl) {
			return true
		}

		// Statics first, then the group itself goes away. Non-eligible
		// statics are simply left alone here; deleting the group drops them.
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			h, eligible, err := extract(fset, vs, len(helpers)+1)
			if err != nil {
				firstErr = err
				return false
			}
			if eligible {
				helpers = append(helpers, h)
			}
		}

		dead = append(dead, posRange{decl.Pos(), decl.End()})
		if decl.Doc != nil {
			dead = append(dead, posRange{decl.Doc.Pos(), decl.Doc.End()})
		}
		c.Delete()
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	pruneComments(file, dead)
	pruneImports(fset, file)

	return helpers, nil
}

// isExternGroup reports whether a declaration is a generator-emitted extern
// var group.
func isExternGroup(decl *ast.GenDecl) bool {
	if decl.Tok != token.VAR || decl.Doc == nil {
		return false
	}
	for _, c := range decl.Doc.List {
		if strings.TrimSpace(c.Text) == externMarker {
			return true
		}
	}
	return false
}

// extract applies the eligibility predicate to one extern static and, when it
// passes, synthesizes the wrapper. Eligibility is the surface shape only: the
// helper name prefix plus a pointer wrapper around a single type. A pointer
// whose pointee is not a function type passes the surface test but cannot be
// wrapped, which is an internal invariant violation rather than a skip.
func extract(fset *token.FileSet, vs *ast.ValueSpec, callIndex int) (Helper, bool, error) {
	if len(vs.Names) != 1 || vs.Type == nil {
		return Helper{}, false, nil
	}
	name := vs.Names[0].Name
	if !strings.HasPrefix(name, helperPrefix) {
		return Helper{}, false, nil
	}

	star, ok := vs.Type.(*ast.StarExpr)
	if !ok {
		return Helper{}, false, nil
	}

	fn, ok := star.X.(*ast.FuncType)
	if !ok {
		return Helper{}, false, &InvariantError{
			Name:   name,
			Reason: fmt.Sprintf("pointer to %T, expected a function type", star.X),
		}
	}

	wrapper, suppressed, err := synthesize(fset, name, fn, callIndex)
	if err != nil {
		return Helper{}, false, err
	}

	return Helper{
		Name:       name,
		CallIndex:  callIndex,
		Wrapper:    wrapper,
		Suppressed: suppressed,
	}, true, nil
}

type posRange struct {
	lo, hi token.Pos
}

// pruneComments drops comment groups that belonged to deleted declarations.
// go/printer emits comments from file.Comments by position, so without this
// the extern markers would resurface in the output as floating comments.
func pruneComments(file *ast.File, dead []posRange) {
	if len(dead) == 0 {
		return
	}
	kept := make([]*ast.CommentGroup, 0, len(file.Comments))
	for _, cg := range file.Comments {
		buried := false
		for _, r := range dead {
			if cg.Pos() >= r.lo && cg.End() <= r.hi {
				buried = true
				break
			}
		}
		if !buried {
			kept = append(kept, cg)
		}
	}
	file.Comments = kept
}

// pruneImports removes imports that only the deleted extern groups used,
// typically "unsafe" when no surviving declaration mentions it.
func pruneImports(fset *token.FileSet, file *ast.File) {
	var paths []string
	for _, imp := range file.Imports {
		paths = append(paths, strings.Trim(imp.Path.Value, `"`))
	}
	for _, path := range paths {
		if !astutil.UsesImport(file, path) {
			astutil.DeleteImport(fset, file, path)
		}
	}
}
