package repository

import (
	"strings"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/normalize"
	"tinbr-service/internal/store"
)

// Query describes a list call. A zero Limit means the repository default.
type Query struct {
	Filters map[string]any
	Sort    []store.Sort
	Limit   int64
}

// ParseSort reads "campo:asc,outro:desc" style expressions. Directions may be
// asc, desc, 1 or -1, and a leading "-" on the field means descending.
func ParseSort(expr string) ([]store.Sort, error) {
	var out []store.Sort
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		field, dir, hasDir := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		desc := false
		if strings.HasPrefix(field, "-") {
			field = strings.TrimPrefix(field, "-")
			desc = true
		}
		if hasDir {
			switch strings.ToLower(strings.TrimSpace(dir)) {
			case "asc", "1":
				desc = false
			case "desc", "-1":
				desc = true
			default:
				return nil, apperror.Validation("sort", "direção de ordenação inválida: %s", dir)
			}
		}
		if field == "" {
			return nil, apperror.Validation("sort", "campo de ordenação vazio")
		}
		out = append(out, store.Sort{Field: normalize.Key(field), Desc: desc})
	}
	return out, nil
}
