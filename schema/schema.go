// Package schema holds the executable schema model consumed by the executor:
// named types, field definitions with their bound resolvers, and type
// references carrying list/non-null markers. Schemas are built either from
// SDL with FromSDL or programmatically with the New* builders.
package schema

// Schema is a complete executable GraphQL schema.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Description      string

	compiled compiledSchema
}

// NewSchema creates an empty schema with the conventional root type names
// left unset.
func NewSchema(description string) *Schema {
	return &Schema{Types: make(map[string]*Type), Description: description}
}

// SetQueryType sets the root query type name.
func (s *Schema) SetQueryType(name string) *Schema { s.QueryType = name; return s }

// SetMutationType sets the root mutation type name.
func (s *Schema) SetMutationType(name string) *Schema { s.MutationType = name; return s }

// SetSubscriptionType sets the root subscription type name.
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers a named type, replacing any previous definition.
func (s *Schema) AddType(t *Type) *Schema { s.Types[t.Name] = t; return s }

// GetQueryType returns the root query type, or nil if absent.
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type, or nil if absent.
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type, or nil if absent.
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// Type is a named GraphQL type.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field // for OBJECT and INTERFACE
	EnumValues  []string // for ENUM
}

// NewType creates a named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

// AddField appends a field definition.
func (t *Type) AddField(f *Field) *Type { t.Fields = append(t.Fields, f); return t }

// Field looks up a field definition by name, returning nil when absent.
func (t *Type) Field(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Field is a field on an object or interface type. Resolver is nil for
// fields resolved by reading the same-named property off the parent value.
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue
	Resolver    Resolver
}

// NewField creates a field definition.
func NewField(name, description string, t *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: t}
}

// SetResolver binds a resolver to the field.
func (f *Field) SetResolver(r Resolver) *Field { f.Resolver = r; return f }

// AddArgument appends a declared argument.
func (f *Field) AddArgument(a *InputValue) *Field { f.Arguments = append(f.Arguments, a); return f }

// InputValue is a declared argument or input-object field. DefaultValue is
// already converted to a plain Go value.
type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
}

// NewInputValue creates an input value definition.
func NewInputValue(name string, t *TypeRef, defaultValue any) *InputValue {
	return &InputValue{Name: name, Type: t, DefaultValue: defaultValue}
}

// TypeKind classifies a named type.
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)
