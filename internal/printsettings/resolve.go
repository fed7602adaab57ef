package printsettings

import (
	"github.com/spf13/cast"
)

// Resolve returns the effective value of key, converted to the type of def.
// A value that cannot be converted is treated as absent at its tier.
func Resolve[T any](s Settings, key string, def T) T {
	v, _ := ResolveWithSource(s, key, def)
	return v
}

// ResolveWithSource is Resolve that also reports which tier supplied the value.
func ResolveWithSource[T any](s Settings, key string, def T) (T, Tier) {
	segments := splitKey(key)
	if len(segments) == 0 {
		return def, TierDefault
	}
	if raw, ok := walk(s.Invoice(), segments); ok {
		if v, ok := convert(raw, def); ok {
			return v, TierInvoice
		}
	}
	if raw, ok := walk(s.root, segments); ok {
		if v, ok := convert(raw, def); ok {
			return v, TierDocument
		}
	}
	return def, TierDefault
}

func Bool(s Settings, key string, def bool) bool {
	return Resolve(s, key, def)
}

func String(s Settings, key string, def string) string {
	return Resolve(s, key, def)
}

func Float(s Settings, key string, def float64) float64 {
	return Resolve(s, key, def)
}

func Int(s Settings, key string, def int) int {
	return Resolve(s, key, def)
}

func convert[T any](raw any, def T) (T, bool) {
	var (
		out any
		err error
	)
	switch any(def).(type) {
	case bool:
		out, err = cast.ToBoolE(raw)
	case string:
		if isComposite(raw) {
			return def, false
		}
		out, err = cast.ToStringE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case int64:
		out, err = cast.ToInt64E(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	default:
		typed, ok := raw.(T)
		return typed, ok
	}
	if err != nil {
		return def, false
	}
	typed, ok := out.(T)
	if !ok {
		return def, false
	}
	return typed, true
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
