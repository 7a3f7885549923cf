package query

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/dbx"
)

// Find runs the page and count queries for spec. Store failures are wrapped
// in common.ErrorQuery.
func Find(ctx context.Context, db dbx.DBTX, schema *Schema, spec *Spec) (*Page, error) {
	list, count := Build(schema, spec)

	var total int64
	if err := db.QueryRowContext(ctx, count.SQL, count.Args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("%w: count %s: %w", common.ErrorQuery, schema.Table, err)
	}

	rows, err := db.QueryContext(ctx, list.SQL, list.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrorQuery, schema.Table, err)
	}
	defer rows.Close()

	width := len(spec.Fields)
	for _, inc := range schema.Includes {
		width += len(inc.Fields)
	}

	data := make([]*Record, 0, min(int64(spec.Limit), total))
	for rows.Next() {
		vals := make([]any, width)
		ptrs := make([]any, width)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %w", common.ErrorQuery, schema.Table, err)
		}
		data = append(data, toRecord(schema, spec, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", common.ErrorQuery, schema.Table, err)
	}

	return &Page{Data: data, Pagination: NewPagination(spec.Page, spec.Limit, total)}, nil
}

func toRecord(schema *Schema, spec *Spec, vals []any) *Record {
	rec := NewRecord()
	i := 0
	for _, f := range spec.Fields {
		rec.Set(f.Name, normalize(vals[i]))
		i++
	}
	for _, inc := range schema.Includes {
		nested := NewRecord()
		present := false
		for _, f := range inc.Fields {
			v := normalize(vals[i])
			if v != nil {
				present = true
			}
			nested.Set(f.Name, v)
			i++
		}
		if present {
			rec.Set(inc.Name, nested)
		} else {
			rec.Set(inc.Name, nil)
		}
	}
	return rec
}

// normalize turns driver byte slices into strings so text columns do not
// marshal as base64.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
