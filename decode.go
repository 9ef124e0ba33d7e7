package opts

import (
	"reflect"
	"time"
)

// GetOption tunes a single typed read.
type GetOption func(*getConfig)

type getConfig struct {
	preserveQuotes bool
}

// WithPreservedQuotes returns string values exactly as stored, without
// unescaping quoted JSON strings.
func WithPreservedQuotes() GetOption {
	return func(cfg *getConfig) {
		cfg.preserveQuotes = true
	}
}

// Get decodes the value stored under key (or an alias of it) as T. It returns
// def when the key is absent, null or empty, and whenever decoding fails.
// Failures are reported to the store logger and never returned.
func Get[T any](s *Store, key string, def T, opts ...GetOption) T {
	value, ok := lookup[T](s, key, opts...)
	if !ok {
		return def
	}
	return value
}

// Set encodes value and stores it under key. Strings are stored verbatim,
// primitives in their invariant textual form and everything else as JSON. A
// nil value stores an explicit null. Encoding failures are returned.
func Set[T any](s *Store, key string, value T) error {
	if s == nil || key == "" {
		return nil
	}
	start := time.Now()
	payload, strategy, err := encodeValue(reflect.ValueOf(&value).Elem())
	if err != nil {
		err = wrapCoercionError(OpEncode, key, reflect.TypeFor[T]().String(), strategy, err)
		s.logger().Log(LogEvent{
			Op:       OpEncode,
			Key:      key,
			Type:     reflect.TypeFor[T]().String(),
			Strategy: strategy,
			Duration: time.Since(start),
			Err:      err,
		})
		return err
	}
	s.SetRaw(key, payload)
	return nil
}

// Put stores value under key using the encoding of its dynamic type.
func (s *Store) Put(key string, value any) error {
	return Set[any](s, key, value)
}

func lookup[T any](s *Store, key string, opts ...GetOption) (T, bool) {
	var zero T
	raw, ok := s.Raw(key)
	if !ok || raw == nil || *raw == "" {
		return zero, false
	}

	cfg := getConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	tg := describe(reflect.TypeFor[T]())
	start := time.Now()
	value, strategy, err := decodeRaw(newDecodeInput(*raw, cfg.preserveQuotes, s.location()), tg)
	if err == nil {
		if value.Kind() == reflect.Interface && value.IsNil() {
			return zero, false
		}
		if typed, ok := value.Interface().(T); ok {
			return typed, true
		}
		err = ErrUnsupportedType
	}
	s.logger().Log(LogEvent{
		Op:       OpDecode,
		Key:      key,
		Type:     tg.typ.String(),
		Strategy: strategy,
		Duration: time.Since(start),
		Err:      wrapCoercionError(OpDecode, key, tg.typ.String(), strategy, err),
	})
	return zero, false
}
