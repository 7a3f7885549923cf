// Package query turns list-endpoint query parameters into SQL.
//
// Every resource declares a Schema: the columns callers may filter, search,
// sort and project, plus fixed to-one joins rendered as nested objects.
// Parse resolves caller-supplied names against that allow-list before any
// SQL is built, Build renders the statements, and Find runs them.
package query

// Field is one column a resource exposes to callers.
type Field struct {
	// Name is the API name, e.g. "createdAt".
	Name string
	// Column is the SQL column on the resource table, e.g. "created_at".
	Column string
	// Searchable marks text columns usable in a substring search.
	Searchable bool
}

// Include is a to-one association joined into every listed row and
// rendered as a nested object under Name.
type Include struct {
	Name       string
	Table      string
	LocalKey   string
	ForeignKey string
	Fields     []Field
}

type Schema struct {
	Table  string
	Fields []Field
	// Filters are API names accepted as exact-match parameters.
	Filters []string
	// DefaultSearch are API names searched when _search_fields is absent.
	DefaultSearch []string
	DefaultSort   string
	DefaultLimit  int
	Includes      []Include
}

// Field looks up an API name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) fields(names []string) []Field {
	out := make([]Field, 0, len(names))
	for _, n := range names {
		if f, ok := s.Field(n); ok {
			out = append(out, f)
		}
	}
	return out
}
