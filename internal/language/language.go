package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Schema is the compiled gqlparser schema used for query validation.
type Schema = ast.Schema

// Error is a located parse or validation error.
type Error = gqlerror.Error

// ErrorList is a list of located errors.
type ErrorList = gqlerror.List

// ParseQuery parses a GraphQL executable document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates an SDL document into a compiled schema.
func LoadSchema(name, source string) (*Schema, error) {
	return gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
}

// Validate checks an executable document against a compiled schema and
// returns the validation errors, if any.
func Validate(schema *Schema, doc *QueryDocument) ErrorList {
	return validator.Validate(schema, doc)
}
