package query

// testSchema mirrors the todos resource.
var testSchema = &Schema{
	Table: "todos",
	Fields: []Field{
		{Name: "id", Column: "id"},
		{Name: "title", Column: "title", Searchable: true},
		{Name: "description", Column: "description", Searchable: true},
		{Name: "completed", Column: "completed"},
		{Name: "userId", Column: "user_id"},
		{Name: "createdAt", Column: "created_at"},
	},
	Filters:       []string{"title", "description"},
	DefaultSearch: []string{"title", "description"},
	DefaultSort:   "createdAt",
	DefaultLimit:  5,
	Includes: []Include{{
		Name: "user", Table: "users", LocalKey: "user_id", ForeignKey: "id",
		Fields: []Field{{Name: "id", Column: "id"}, {Name: "name", Column: "name"}},
	}},
}
