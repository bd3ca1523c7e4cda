package codegen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"
)

// suppressMarker flags helpers whose real kernel signature is variadic. The
// bindings declare them with a fixed arity, so a live wrapper would present a
// wrong signature; the wrapper is kept as a block comment instead of being
// dropped outright.
const suppressMarker = "printk"

// invokePrimitive is the one place generated code is allowed to treat a call
// index as a callable: a generic function emitted once into the helpers file.
const invokePrimitive = "helperFn"

// synthesize builds the wrapper function text for one helper. The wrapper
// carries the extracted signature verbatim, reinterprets its call index as a
// value of the helper's function type through the invoke primitive, and
// forwards the parameters positionally.
func synthesize(fset *token.FileSet, name string, fn *ast.FuncType, callIndex int) (string, bool, error) {
	fnType, err := exprString(fset, fn)
	if err != nil {
		return "", false, err
	}

	var params, args []jen.Code
	if fn.Params != nil {
		for _, field := range fn.Params.List {
			if len(field.Names) == 0 {
				return "", false, &InvariantError{Name: name, Reason: "unnamed parameter in helper signature"}
			}
			typ, err := exprString(fset, field.Type)
			if err != nil {
				return "", false, err
			}
			for _, id := range field.Names {
				params = append(params, jen.Id(id.Name).Id(typ))
				args = append(args, jen.Id(id.Name))
			}
		}
	}

	var results []jen.Code
	if fn.Results != nil {
		for _, field := range fn.Results.List {
			typ, err := exprString(fset, field.Type)
			if err != nil {
				return "", false, err
			}
			if len(field.Names) == 0 {
				results = append(results, jen.Id(typ))
				continue
			}
			for _, id := range field.Names {
				results = append(results, jen.Id(id.Name).Id(typ))
			}
		}
	}

	call := jen.Id("f").Call(args...)
	var tail jen.Code = call
	if len(results) > 0 {
		tail = jen.Return(call)
	}

	stmt := jen.Comment("//go:inline").Line().
		Func().Id(name).Params(params...)
	switch len(results) {
	case 0:
	case 1:
		stmt.Add(results[0])
	default:
		stmt.Parens(jen.List(results...))
	}
	stmt.Block(
		jen.Id("f").Op(":=").Id(invokePrimitive).Index(jen.Id(fnType)).Call(jen.Lit(callIndex)),
		tail,
	)

	text := fmt.Sprintf("%#v", stmt)
	if strings.Contains(text, suppressMarker) {
		return "/*\n" + text + "\n*/", true, nil
	}
	return text, false, nil
}

// exprString prints a type expression exactly as it appeared in the
// generated declarations.
func exprString(fset *token.FileSet, x ast.Expr) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, x); err != nil {
		return "", fmt.Errorf("printing type: %w", err)
	}
	return buf.String(), nil
}
