package query

import (
	"strconv"
	"strings"
)

// Statement is SQL text plus its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Build renders the page query and the count query for spec. Both share the
// same WHERE clause, so the reported total always matches what the page
// query can return.
func Build(schema *Schema, spec *Spec) (list Statement, count Statement) {
	var args []any
	where := buildWhere(schema, spec, &args)

	var b strings.Builder
	b.WriteString("SELECT ")
	for i, f := range spec.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(column(schema.Table, f.Column))
	}
	for _, inc := range schema.Includes {
		for _, f := range inc.Fields {
			b.WriteString(", ")
			b.WriteString(column(inc.Name, f.Column))
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(quote(schema.Table))
	for _, inc := range schema.Includes {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(quote(inc.Table))
		b.WriteString(" AS ")
		b.WriteString(quote(inc.Name))
		b.WriteString(" ON ")
		b.WriteString(column(inc.Name, inc.ForeignKey))
		b.WriteString(" = ")
		b.WriteString(column(schema.Table, inc.LocalKey))
	}
	b.WriteString(where)

	b.WriteString(" ORDER BY ")
	b.WriteString(column(schema.Table, spec.SortBy.Column))
	b.WriteString(" ")
	b.WriteString(spec.SortOrder)
	// id keeps pages stable when the sort column has ties.
	if spec.SortBy.Column != "id" {
		b.WriteString(", ")
		b.WriteString(column(schema.Table, "id"))
		b.WriteString(" ")
		b.WriteString(spec.SortOrder)
	}

	listArgs := append(append([]any{}, args...), spec.Limit, spec.Offset())
	b.WriteString(" LIMIT ")
	b.WriteString(placeholder(len(args) + 1))
	b.WriteString(" OFFSET ")
	b.WriteString(placeholder(len(args) + 2))

	list = Statement{SQL: b.String(), Args: listArgs}
	count = Statement{SQL: "SELECT COUNT(*) FROM " + quote(schema.Table) + where, Args: args}
	return list, count
}

func buildWhere(schema *Schema, spec *Spec, args *[]any) string {
	var conds []string

	for _, c := range spec.Filters {
		*args = append(*args, c.Value)
		conds = append(conds, column(schema.Table, c.Field.Column)+" = "+placeholder(len(*args)))
	}

	if spec.Search != "" && len(spec.SearchFields) > 0 {
		*args = append(*args, "%"+escapeLike(spec.Search)+"%")
		p := placeholder(len(*args))
		ors := make([]string, 0, len(spec.SearchFields))
		for _, f := range spec.SearchFields {
			ors = append(ors, column(schema.Table, f.Column)+" ILIKE "+p)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// escapeLike makes the search term match literally inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func column(table, col string) string {
	return quote(table) + "." + quote(col)
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
