// Package normalize turns loosely named request payloads into canonical documents.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tinbr-service/internal/model"
)

// aliases maps known misspelled or accented keys, compared lowercased, to canonical names.
var aliases = map[string]string{
	"e-mail":      model.FieldEmail,
	"email":       model.FieldEmail,
	"função":      "funcao",
	"funçao":      "funcao",
	"responsável": "responsavel",
	"código":      model.FieldCode,
	"nível":       model.FieldLevel,
	"usuário":     "usuario",
	"clienteid":   model.FieldTenantID,
	"cliente-id":  model.FieldTenantID,
}

// Key returns the canonical form of a single field name.
func Key(key string) string {
	trimmed := strings.TrimSpace(key)
	if canonical, ok := aliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return StripDiacritics(trimmed)
}

// Document returns a new mapping with canonical keys and trimmed string values.
// Nested documents are normalized the same way. The input is never mutated.
func Document(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		key := Key(k)
		if key == model.FieldTenantID {
			out[key] = TenantID(v)
			continue
		}
		out[key] = value(v)
	}
	return out
}

func value(v any) any {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return Document(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = value(e)
		}
		return out
	default:
		return v
	}
}

// TenantID coerces any tenant identifier value into its trimmed string form.
func TenantID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case interface{ String() string }:
		return strings.TrimSpace(t.String())
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// StripDiacritics removes combining marks, "função" becomes "funcao".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Digits keeps only the decimal digits of s, "123.456.789-09" becomes "12345678909".
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
