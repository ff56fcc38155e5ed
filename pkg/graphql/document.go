package graphql

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Document is a parsed GraphQL document holding exactly one operation.
type Document struct {
	Name      string
	Operation ast.Operation
	Query     string
}

// Parse checks query syntax and extracts its single operation.
func Parse(query string) (*Document, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "document", Input: query})
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("parse document: expected one operation, got %d", len(doc.Operations))
	}
	op := doc.Operations[0]
	return &Document{Name: op.Name, Operation: op.Operation, Query: query}, nil
}

// MustParse is Parse for package-level documents; it panics on error.
func MustParse(query string) *Document {
	d, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return d
}

// IsMutation reports whether the operation changes server state.
func (d *Document) IsMutation() bool {
	return d.Operation == ast.Mutation
}

// Request builds the wire request for vars.
func (d *Document) Request(vars map[string]any) Request {
	return Request{Query: d.Query, OperationName: d.Name, Variables: vars}
}
