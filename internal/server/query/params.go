package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/todoapi/internal/common"
)

const (
	ParamSearch       = "_search"
	ParamSearchFields = "_search_fields"
	ParamShowFields   = "_show_fields"
	ParamSortBy       = "_sort_by"
	ParamSortOrder    = "_sort_order"
	ParamPage         = "_page"
	ParamLimit        = "_limit"
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// MaxLimit caps _limit for every list.
const MaxLimit = 100

// Condition is an exact-match filter.
type Condition struct {
	Field Field
	Value string
}

// Spec is a resolved list request. Every Field in it comes from the schema.
type Spec struct {
	Filters      []Condition
	Search       string
	SearchFields []Field
	Fields       []Field
	SortBy       Field
	SortOrder    string
	Page         int
	Limit        int
}

func (s *Spec) Offset() int {
	return (s.Page - 1) * s.Limit
}

// Parse resolves values against schema. Unknown names in _search_fields,
// _show_fields or _sort_by, and non-text fields in _search_fields, fail with
// common.ErrorValidation. Malformed _page and _limit fall back to defaults.
func Parse(values url.Values, schema *Schema) (*Spec, error) {
	spec := &Spec{SortOrder: OrderAsc}
	spec.Page, spec.Limit = ParsePage(values, schema.DefaultLimit)

	for _, name := range schema.Filters {
		if !values.Has(name) {
			continue
		}
		f, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("schema %s: filter %q is not a field", schema.Table, name)
		}
		spec.Filters = append(spec.Filters, Condition{Field: f, Value: values.Get(name)})
	}

	if term := values.Get(ParamSearch); term != "" {
		spec.Search = term
		names := splitList(values.Get(ParamSearchFields))
		if len(names) == 0 {
			names = schema.DefaultSearch
		}
		for _, name := range names {
			f, ok := schema.Field(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown search field %q", common.ErrorValidation, name)
			}
			if !f.Searchable {
				return nil, fmt.Errorf("%w: field %q is not searchable", common.ErrorValidation, name)
			}
			spec.SearchFields = appendUnique(spec.SearchFields, f)
		}
	}

	if names := splitList(values.Get(ParamShowFields)); len(names) > 0 {
		for _, name := range names {
			f, ok := schema.Field(name)
			if !ok {
				return nil, fmt.Errorf("%w: unknown field %q", common.ErrorValidation, name)
			}
			spec.Fields = appendUnique(spec.Fields, f)
		}
	} else {
		spec.Fields = schema.Fields
	}

	sortBy := values.Get(ParamSortBy)
	if sortBy == "" {
		sortBy = schema.DefaultSort
	}
	f, ok := schema.Field(sortBy)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort field %q", common.ErrorValidation, sortBy)
	}
	spec.SortBy = f

	if values.Get(ParamSortOrder) == OrderDesc {
		spec.SortOrder = OrderDesc
	}

	return spec, nil
}

// ParsePage reads _page and _limit with the same lenient rules as Parse.
// The limit never exceeds MaxLimit.
func ParsePage(values url.Values, defaultLimit int) (page, limit int) {
	page = parseCount(values.Get(ParamPage), 1)
	limit = min(parseCount(values.Get(ParamLimit), defaultLimit), MaxLimit)
	return page, limit
}

var leadingDigits = regexp.MustCompile(`^[0-9]+`)

// parseCount reads the leading decimal digits of s, ignoring anything after
// them ("3abc" is 3). Values that do not start with a digit, are not
// positive or overflow int32 yield def.
func parseCount(s string, def int) int {
	n, err := strconv.Atoi(leadingDigits.FindString(strings.TrimSpace(s)))
	if err != nil || n <= 0 || n > math.MaxInt32 {
		return def
	}
	return n
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendUnique(fields []Field, f Field) []Field {
	for _, existing := range fields {
		if existing.Name == f.Name {
			return fields
		}
	}
	return append(fields, f)
}
