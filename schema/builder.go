package schema

import (
	"fmt"
	"sort"
	"strings"

	language "github.com/livegql/livegql/internal/language"
)

type compiledSchema = *language.Schema

// Compiled returns the underlying gqlparser schema when this schema was
// built from SDL, or nil for programmatically assembled schemas. The
// executor facade uses it to validate incoming documents.
func (s *Schema) Compiled() *language.Schema { return s.compiled }

// FromSDL compiles an SDL document into an executable schema and binds the
// given resolvers by "TypeName" and field name. Every resolver must address
// a field that exists in the SDL; unbound SDL fields fall back to parent
// property lookup at execution time.
func FromSDL(sdl string, resolvers ResolverMap) (*Schema, error) {
	ast, err := language.LoadSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}

	s := NewSchema("")
	s.compiled = ast
	if ast.Query != nil {
		s.SetQueryType(ast.Query.Name)
	}
	if ast.Mutation != nil {
		s.SetMutationType(ast.Mutation.Name)
	}
	if ast.Subscription != nil {
		s.SetSubscriptionType(ast.Subscription.Name)
	}

	for name, def := range ast.Types {
		if strings.HasPrefix(name, "__") {
			continue
		}
		s.AddType(buildType(def))
	}

	if err := bindResolvers(s, resolvers); err != nil {
		return nil, err
	}
	return s, nil
}

// MustFromSDL is FromSDL that panics on error, for initialization code and
// tests.
func MustFromSDL(sdl string, resolvers ResolverMap) *Schema {
	s, err := FromSDL(sdl, resolvers)
	if err != nil {
		panic(err)
	}
	return s
}

func buildType(def *language.Definition) *Type {
	t := NewType(def.Name, kindOf(def.Kind), def.Description)
	switch def.Kind {
	case language.Object, language.Interface:
		for _, fd := range def.Fields {
			if strings.HasPrefix(fd.Name, "__") {
				continue
			}
			t.AddField(buildField(fd))
		}
	case language.Enum:
		for _, ev := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, ev.Name)
		}
	}
	return t
}

func buildField(fd *language.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, typeRefFromAST(fd.Type))
	for _, ad := range fd.Arguments {
		f.AddArgument(NewInputValue(ad.Name, typeRefFromAST(ad.Type), language.GoValue(ad.DefaultValue)))
	}
	return f
}

func bindResolvers(s *Schema, resolvers ResolverMap) error {
	typeNames := make([]string, 0, len(resolvers))
	for name := range resolvers {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		t := s.Types[typeName]
		if t == nil {
			return fmt.Errorf("resolver bound to unknown type %q", typeName)
		}
		fieldNames := make([]string, 0, len(resolvers[typeName]))
		for name := range resolvers[typeName] {
			fieldNames = append(fieldNames, name)
		}
		sort.Strings(fieldNames)
		for _, fieldName := range fieldNames {
			f := t.Field(fieldName)
			if f == nil {
				return fmt.Errorf("resolver bound to unknown field %q on type %q", fieldName, typeName)
			}
			f.SetResolver(resolvers[typeName][fieldName])
		}
	}
	return nil
}

func kindOf(k language.DefinitionKind) TypeKind {
	switch k {
	case language.Object:
		return TypeKindObject
	case language.Interface:
		return TypeKindInterface
	case language.Union:
		return TypeKindUnion
	case language.Enum:
		return TypeKindEnum
	case language.InputObject:
		return TypeKindInputObject
	default:
		return TypeKindScalar
	}
}

func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(typeRefFromAST(t.Elem))
}
