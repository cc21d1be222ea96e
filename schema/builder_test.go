package schema

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const testSDL = `
"A small library."
type Query {
  book(id: ID!): Book
  books(limit: Int = 10): [Book!]!
}
type Mutation {
  addBook(title: String!): Book
}
type Book {
  id: ID!
  title: String
  tags: [String]
}
enum Genre {
  FICTION
  NONFICTION
}
`

func TestFromSDL(t *testing.T) {
	s, err := FromSDL(testSDL, nil)
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.Empty(t, s.SubscriptionType)
	require.NotNil(t, s.Compiled(), "SDL-built schemas carry the compiled document")

	book := s.Types["Book"]
	require.NotNil(t, book)
	require.Equal(t, TypeKindObject, book.Kind)
	require.Equal(t, "ID!", book.Field("id").Type.String())
	require.Equal(t, "[String]", book.Field("tags").Type.String())

	genre := s.Types["Genre"]
	require.NotNil(t, genre)
	require.Equal(t, TypeKindEnum, genre.Kind)
	require.Equal(t, []string{"FICTION", "NONFICTION"}, genre.EnumValues)

	books := s.GetQueryType().Field("books")
	require.NotNil(t, books)
	require.Equal(t, "[Book!]!", books.Type.String())
	require.Len(t, books.Arguments, 1)
	require.Equal(t, "limit", books.Arguments[0].Name)
	require.Equal(t, 10, books.Arguments[0].DefaultValue)
}

func TestFromSDL_ResolverBinding(t *testing.T) {
	nop := func(ctx context.Context, parent any, args map[string]any, gctx any) (any, error) {
		return nil, nil
	}

	t.Run("Bound resolver is attached", func(t *testing.T) {
		s, err := FromSDL(testSDL, ResolverMap{"Query": {"book": nop}})
		require.NoError(t, err)
		require.NotNil(t, s.GetQueryType().Field("book").Resolver)
		require.Nil(t, s.GetQueryType().Field("books").Resolver)
	})

	t.Run("Unknown type", func(t *testing.T) {
		_, err := FromSDL(testSDL, ResolverMap{"Nope": {"x": nop}})
		require.EqualError(t, err, `resolver bound to unknown type "Nope"`)
	})

	t.Run("Unknown field", func(t *testing.T) {
		_, err := FromSDL(testSDL, ResolverMap{"Book": {"nope": nop}})
		require.EqualError(t, err, `resolver bound to unknown field "nope" on type "Book"`)
	})

	t.Run("Invalid SDL", func(t *testing.T) {
		_, err := FromSDL("type {", nil)
		require.Error(t, err)
	})
}

func TestTypeRef(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("Shuttle"))))

	require.True(t, ref.IsNonNull())
	require.True(t, ref.IsList(), "list detection looks through one non-null")
	require.Equal(t, "Shuttle", ref.NamedTypeName())
	require.Equal(t, "[Shuttle!]!", ref.String())

	require.False(t, NamedType("Int").IsList())
	require.False(t, NamedType("Int").IsNonNull())
	require.Equal(t, "[Int]", ListType(NamedType("Int")).String())
}

func TestBuilders(t *testing.T) {
	s := NewSchema("demo").
		SetQueryType("Query").
		AddType(NewType("Query", TypeKindObject, "").
			AddField(NewField("hello", "", NamedType("String")))).
		AddType(NewType("String", TypeKindScalar, ""))

	want := &Schema{
		QueryType:   "Query",
		Description: "demo",
		Types: map[string]*Type{
			"Query": {
				Name:   "Query",
				Kind:   TypeKindObject,
				Fields: []*Field{{Name: "hello", Type: NamedType("String")}},
			},
			"String": {Name: "String", Kind: TypeKindScalar},
		},
	}
	if diff := cmp.Diff(want, s, cmp.AllowUnexported(Schema{})); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	require.Nil(t, s.Compiled(), "programmatic schemas have no compiled document")
}
