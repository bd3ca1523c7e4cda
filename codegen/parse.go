package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// ParseError reports generator output that the declaration parser cannot
// read. The generator contract guarantees well-formed declarations, so a
// parse failure means the installed generator no longer matches the version
// this tool was written against. Not recoverable.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed generator output (generator version mismatch?): %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse reads the raw generated declarations into a declaration tree. It is a
// thin wrapper over go/parser; comments are kept because the extern marker
// lives in a doc comment.
func Parse(filename string, src []byte) (*token.FileSet, *ast.File, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, nil, &ParseError{Err: err}
	}
	return fset, file, nil
}
