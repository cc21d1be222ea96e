package schema

// TypeRef is a reference to a type, possibly wrapped in list or non-null
// markers.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // for LIST and NON_NULL
	Named  string   // for NAMED
}

// TypeRefKind is the wrapping kind of a TypeRef node.
type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

// NamedType references a named type.
func NamedType(name string) *TypeRef { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// ListType wraps t in a list marker.
func ListType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindList, OfType: t} }

// NonNullType wraps t in a non-null marker.
func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }

// IsNonNull reports whether the outermost wrapper is non-null.
func (t *TypeRef) IsNonNull() bool { return t != nil && t.Kind == TypeRefKindNonNull }

// IsList reports whether the reference is a list, looking through one
// non-null wrapper.
func (t *TypeRef) IsList() bool {
	if t == nil {
		return false
	}
	if t.Kind == TypeRefKindList {
		return true
	}
	return t.Kind == TypeRefKindNonNull && t.OfType != nil && t.OfType.Kind == TypeRefKindList
}

// Unwrap removes one layer of list or non-null wrapping.
func (t *TypeRef) Unwrap() *TypeRef {
	if t != nil && (t.Kind == TypeRefKindList || t.Kind == TypeRefKindNonNull) {
		return t.OfType
	}
	return t
}

// NamedTypeName returns the innermost named type.
func (t *TypeRef) NamedTypeName() string {
	for cur := t; cur != nil; cur = cur.OfType {
		if cur.Named != "" {
			return cur.Named
		}
	}
	return ""
}

// String renders the reference in SDL notation.
func (t *TypeRef) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNonNull:
		return t.OfType.String() + "!"
	case TypeRefKindList:
		return "[" + t.OfType.String() + "]"
	default:
		return t.Named
	}
}
