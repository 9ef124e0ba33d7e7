package opts

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-optstore/internal/hydrate"
)

// BindOption configures Bind.
type BindOption[T any] func(*bindConfig[T])

type bindConfig[T any] struct {
	scope   string
	flat    bool
	decoder []hydrate.DecoderOption[T]
}

// BindStrict rejects snapshot keys that have no matching field in T.
func BindStrict[T any]() BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.decoder = append(cfg.decoder, hydrate.WithDisallowUnknownFields[T]())
	}
}

// BindFlat disables dotted key expansion.
func BindFlat[T any]() BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.flat = true
	}
}

// BindScope names the source in bind errors.
func BindScope[T any](scope string) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		cfg.scope = scope
	}
}

// BindPreHook rewrites the payload before it is decoded. Hooks run after
// dotted key expansion and see values already coerced to their field types.
func BindPreHook[T any](hook func(map[string]any) (map[string]any, error)) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		if hook == nil {
			return
		}
		cfg.decoder = append(cfg.decoder, hydrate.WithPreHook[T](func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
			return hook(payload)
		}))
	}
}

// BindValidate runs fn on the decoded value.
func BindValidate[T any](fn func(*T) error) BindOption[T] {
	return func(cfg *bindConfig[T]) {
		if fn == nil {
			return
		}
		cfg.decoder = append(cfg.decoder, hydrate.WithPostHook[T](func(_ hydrate.Context, value *T) error {
			return fn(value)
		}))
	}
}

// Bind decodes the store into T. Dotted keys such as "db.host" are expanded
// into nested objects unless BindFlat is given. Each stored value is decoded
// for the type of the field it lands in, the same way Get would read it, so a
// string field holding "2" stays "2" and a duration field accepts "1h30m".
// Values with no typed destination are typed like Snapshot.
func Bind[T any](s *Store, opts ...BindOption[T]) (T, error) {
	var zero T
	cfg := bindConfig[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	decoderOpts := make([]hydrate.DecoderOption[T], 0, len(cfg.decoder)+2)
	if !cfg.flat {
		decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](hydrate.ExpandDottedKeys))
	}
	decoderOpts = append(decoderOpts, hydrate.WithPreHook[T](coerceFields(reflect.TypeFor[T](), s.location())))
	decoderOpts = append(decoderOpts, cfg.decoder...)

	value, err := hydrate.NewDecoder[T](decoderOpts...).Decode(hydrate.Context{Scope: cfg.scope}, s.rawSnapshot())
	if err != nil {
		return zero, fmt.Errorf("opts: bind %T: %w", zero, err)
	}
	return value, nil
}

func coerceFields(t reflect.Type, loc *time.Location) hydrate.PreHook {
	return func(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
		return coerceObject(payload, t, "", loc)
	}
}

func coerceObject(node map[string]any, t reflect.Type, path string, loc *time.Location) (map[string]any, error) {
	out := make(map[string]any, len(node))
	for key, child := range node {
		next, err := coerceNode(child, memberType(t, key), joinKeyPath(path, key), loc)
		if err != nil {
			return nil, err
		}
		out[key] = next
	}
	return out, nil
}

func coerceNode(node any, t reflect.Type, path string, loc *time.Location) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		return coerceObject(v, t, path, loc)
	case string:
		return coerceLeaf(v, t, path, loc)
	default:
		return node, nil
	}
}

// coerceLeaf decodes a stored value for its destination type t. Unknown
// destinations and non-scalar types keep the loose Snapshot typing.
func coerceLeaf(raw string, t reflect.Type, path string, loc *time.Location) (any, error) {
	if t == nil || t.Kind() == reflect.Interface {
		return literalValue(&raw), nil
	}
	tg := describe(t)
	if !isScalar(tg.base) {
		return literalValue(&raw), nil
	}
	if raw == "" {
		return nil, nil
	}
	value, strategy, err := decodeRaw(newDecodeInput(raw, false, loc), tg)
	if err != nil {
		return nil, wrapCoercionError(OpBind, path, t.String(), strategy, err)
	}
	return value.Interface(), nil
}

// memberType returns the type stored under key in t, or nil when t has no
// matching field.
func memberType(t reflect.Type, key string) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return t.Elem()
		}
	case reflect.Struct:
		if field, ok := lookupField(t, key); ok {
			return field.Type
		}
	}
	return nil
}

// lookupField matches key against the JSON names of t's fields, preferring an
// exact match over a case-insensitive one like encoding/json does.
func lookupField(t reflect.Type, key string) (reflect.StructField, bool) {
	var (
		folded reflect.StructField
		found  bool
	)
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			} else if field.Anonymous {
				continue
			}
		} else if field.Anonymous {
			continue
		}
		if name == key {
			return field, true
		}
		if !found && strings.EqualFold(name, key) {
			folded, found = field, true
		}
	}
	return folded, found
}

func joinKeyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
