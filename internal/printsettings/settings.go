package printsettings

import (
	"fmt"
	"strings"
)

// InvoiceKey is the root property holding the invoice tier overrides.
const InvoiceKey = "invoice"

// Tier names the level a setting was resolved from.
type Tier string

const (
	TierInvoice  Tier = "invoice"
	TierDocument Tier = "document"
	TierDefault  Tier = "default"
)

// Settings is a two-tier print settings document. The root object carries
// document-wide options and the nested "invoice" object carries overrides.
// Keys are stored lower-cased so lookups are case-insensitive.
type Settings struct {
	root map[string]any
}

// New normalises doc into a Settings value. doc is not retained.
func New(doc map[string]any) Settings {
	return Settings{root: normalizeMap(doc)}
}

// Document returns the document tier.
func (s Settings) Document() map[string]any {
	return s.root
}

// Invoice returns the invoice tier, or nil when the document has none.
func (s Settings) Invoice() map[string]any {
	if s.root == nil {
		return nil
	}
	m, _ := s.root[InvoiceKey].(map[string]any)
	return m
}

// IsEmpty reports whether the document carries no settings at all.
func (s Settings) IsEmpty() bool {
	return len(s.root) == 0
}

// Lookup returns the raw value for key using invoice-over-document precedence.
// A boolean counts as present whatever its value; nil and "" do not.
func (s Settings) Lookup(key string) (any, Tier, bool) {
	segments := splitKey(key)
	if len(segments) == 0 {
		return nil, TierDefault, false
	}
	if v, ok := walk(s.Invoice(), segments); ok {
		return v, TierInvoice, true
	}
	if v, ok := walk(s.root, segments); ok {
		return v, TierDocument, true
	}
	return nil, TierDefault, false
}

func splitKey(key string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	parts := strings.Split(key, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			return nil
		}
		out = append(out, p)
	}
	return out
}

func walk(tier map[string]any, segments []string) (any, bool) {
	if tier == nil {
		return nil, false
	}
	var current any = tier
	for _, segment := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := m[segment]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, present(current)
}

func present(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return true
	case string:
		return value != ""
	default:
		return true
	}
}

func normalizeMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return normalizeMap(value)
	case map[any]any:
		m := make(map[string]any, len(value))
		for k, inner := range value {
			m[strings.ToLower(fmt.Sprint(k))] = normalizeValue(inner)
		}
		return m
	case []any:
		out := make([]any, len(value))
		for i, inner := range value {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
