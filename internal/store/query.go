package store

import (
	"fmt"
	"strings"
)

var itemFields = map[string]string{
	"artist":       "artist",
	"albumartist":  "albumartist",
	"album":        "album",
	"title":        "title",
	"genre":        "genre",
	"genre_source": "genre_source",
	"path":         "path",
}

var albumFields = map[string]string{
	"albumartist":  "albumartist",
	"album":        "name",
	"genre":        "genre",
	"genre_source": "genre_source",
}

// Query selects items or albums. Terms look like "field:value" and match
// when the field contains value; bare terms match any of the name fields.
// All terms must match.
type Query struct {
	Terms []string
}

func ParseQuery(args []string) Query {
	var terms []string
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			terms = append(terms, a)
		}
	}
	return Query{Terms: terms}
}

func (q Query) Empty() bool {
	return len(q.Terms) == 0
}

// where builds the SQL condition over the given field to column mapping.
func (q Query) where(fields map[string]string, bare []string) (string, []interface{}, error) {
	if q.Empty() {
		return "1", nil, nil
	}
	var conds []string
	var params []interface{}
	for _, term := range q.Terms {
		field, value, ok := strings.Cut(term, ":")
		if !ok {
			var ors []string
			for _, col := range bare {
				ors = append(ors, col+" LIKE ?")
				params = append(params, "%"+term+"%")
			}
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
			continue
		}
		col, ok := fields[strings.ToLower(field)]
		if !ok {
			return "", nil, fmt.Errorf("unknown query field %q", field)
		}
		conds = append(conds, col+" LIKE ?")
		params = append(params, "%"+value+"%")
	}
	return strings.Join(conds, " AND "), params, nil
}
