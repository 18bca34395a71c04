package store

import (
	"strings"
	"time"
)

// Lookup resolves a dotted path inside doc.
func Lookup(doc map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := doc[head]
	if !ok || !nested {
		return v, ok
	}
	sub, isMap := v.(map[string]any)
	if !isMap {
		if d, isDoc := v.(Document); isDoc {
			sub = d
		} else {
			return nil, false
		}
	}
	return Lookup(sub, rest)
}

// SetPath assigns v at a dotted path, creating intermediate maps.
func SetPath(doc map[string]any, path string, v any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		doc[head] = v
		return
	}
	sub, ok := doc[head].(map[string]any)
	if !ok {
		sub = map[string]any{}
		doc[head] = sub
	}
	SetPath(sub, rest, v)
}

func unsetPath(doc map[string]any, path string) bool {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		_, ok := doc[head]
		delete(doc, head)
		return ok
	}
	sub, ok := doc[head].(map[string]any)
	if !ok {
		return false
	}
	return unsetPath(sub, rest)
}

// clone deep-copies maps and slices so callers never share state with the store.
func clone(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(cloneMap(t))
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = clone(v)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// typeRank orders values of different kinds the way mongo sorts them.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int32, int64, float32, float64:
		return 1
	case string:
		return 2
	case map[string]any, Document:
		return 3
	case []any:
		return 4
	case bool:
		return 5
	case time.Time:
		return 6
	default:
		return 7
	}
}

// compare returns -1, 0 or 1.
func compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch x := a.(type) {
	case nil:
		return 0
	case string:
		return strings.Compare(x, b.(string))
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case time.Time:
		y := b.(time.Time)
		switch {
		case x.Before(y):
			return -1
		case x.After(y):
			return 1
		default:
			return 0
		}
	}

	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return 0
}

func equal(a, b any) bool {
	if typeRank(a) != typeRank(b) {
		return false
	}
	switch a.(type) {
	case map[string]any, Document, []any:
		return deepEqual(a, b)
	}
	return compare(a, b) == 0
}

func deepEqual(a, b any) bool {
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equal(x[i], y[i]) {
				return false
			}
		}
		return true
	default:
		mx, okx := asMap(a)
		my, oky := asMap(b)
		if !okx || !oky || len(mx) != len(my) {
			return false
		}
		for k, v := range mx {
			w, ok := my[k]
			if !ok || !equal(v, w) {
				return false
			}
		}
		return true
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	default:
		return nil, false
	}
}
