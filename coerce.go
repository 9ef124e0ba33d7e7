package opts

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	uuidType     = reflect.TypeFor[uuid.UUID]()
)

// Strategy names reported in CoercionError and LogEvent.
const (
	StrategyNull        = "null"
	StrategyString      = "string"
	StrategyDateTime    = "datetime"
	StrategyEnum        = "enum"
	StrategyConvertible = "convertible"
	StrategyIdentifier  = "identifier"
	StrategyDuration    = "duration"
	StrategyJSON        = "json"
)

// target describes a requested type. Pointers to scalar types are decoded
// through their element type and re-wrapped.
type target struct {
	typ      reflect.Type
	base     reflect.Type
	nullable bool
}

func describe(t reflect.Type) target {
	if t.Kind() == reflect.Pointer && isScalar(t.Elem()) {
		return target{typ: t, base: t.Elem(), nullable: true}
	}
	return target{typ: t, base: t}
}

func (tg target) wrap(v reflect.Value) reflect.Value {
	if !tg.nullable {
		return v
	}
	ptr := reflect.New(tg.base)
	ptr.Elem().Set(v)
	return ptr
}

func isScalar(t reflect.Type) bool {
	return t.Kind() == reflect.String ||
		t == timeType ||
		t == durationType ||
		t == uuidType ||
		isEnum(t) ||
		isConvertible(t)
}

// isConvertible reports the primitive kinds handled by invariant textual
// conversion. Durations and enums have dedicated strategies.
func isConvertible(t reflect.Type) bool {
	if t == durationType || isEnum(t) {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// decodeInput is the raw payload handed to each decode strategy.
type decodeInput struct {
	raw            string
	missingQuotes  bool
	preserveQuotes bool
	loc            *time.Location
}

func newDecodeInput(raw string, preserveQuotes bool, loc *time.Location) decodeInput {
	quoted := len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"'
	return decodeInput{
		raw:            raw,
		missingQuotes:  !quoted,
		preserveQuotes: preserveQuotes,
		loc:            loc,
	}
}

func (in decodeInput) unquoted() string {
	if in.missingQuotes {
		return in.raw
	}
	return in.raw[1 : len(in.raw)-1]
}

type decodeStrategy struct {
	name   string
	match  func(reflect.Type) bool
	decode func(decodeInput, reflect.Type) (reflect.Value, error)
	// fallThrough hands a failed decode to the JSON fallback instead of
	// failing outright.
	fallThrough bool
}

// decodeStrategies are checked in order against the target base type; the
// first match wins. Dates precede the convertible strategy because several
// date layouts are also valid numbers.
var decodeStrategies = []decodeStrategy{
	{name: StrategyString, match: isStringKind, decode: decodeString},
	{name: StrategyDateTime, match: isTime, decode: decodeTime, fallThrough: true},
	{name: StrategyEnum, match: isEnum, decode: decodeEnum},
	{name: StrategyConvertible, match: isConvertible, decode: decodeConvertible},
	{name: StrategyIdentifier, match: isIdentifier, decode: decodeIdentifier, fallThrough: true},
	{name: StrategyDuration, match: isDuration, decode: decodeDuration, fallThrough: true},
}

func isStringKind(t reflect.Type) bool { return t.Kind() == reflect.String }
func isTime(t reflect.Type) bool       { return t == timeType }
func isIdentifier(t reflect.Type) bool { return t == uuidType }
func isDuration(t reflect.Type) bool   { return t == durationType }

// decodeRaw runs the strategy table for tg, returning the strategy that
// produced the result or the error.
func decodeRaw(in decodeInput, tg target) (out reflect.Value, strategy string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = reflect.Value{}
			err = fmt.Errorf("decode panic: %v", r)
		}
	}()

	for _, st := range decodeStrategies {
		if !st.match(tg.base) {
			continue
		}
		strategy = st.name
		value, decodeErr := st.decode(in, tg.base)
		if decodeErr == nil {
			return tg.wrap(value), st.name, nil
		}
		if !st.fallThrough {
			return reflect.Value{}, st.name, decodeErr
		}
		break
	}

	strategy = StrategyJSON
	ptr := reflect.New(tg.typ)
	if err := json.Unmarshal([]byte(in.raw), ptr.Interface()); err != nil {
		return reflect.Value{}, strategy, err
	}
	return ptr.Elem(), strategy, nil
}

func decodeString(in decodeInput, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	if in.missingQuotes || in.preserveQuotes {
		out.SetString(in.raw)
		return out, nil
	}
	var unescaped string
	if err := json.Unmarshal([]byte(in.raw), &unescaped); err != nil {
		return reflect.Value{}, err
	}
	out.SetString(unescaped)
	return out, nil
}

// decodeTime parses free-form dates. Digit-only text is a compact yyyymmdd
// date when it has eight digits and is rejected otherwise, so numbers are
// never read as Unix timestamps.
func decodeTime(in decodeInput, _ reflect.Type) (reflect.Value, error) {
	text := strings.TrimSpace(in.unquoted())
	var (
		parsed time.Time
		err    error
	)
	switch {
	case !isDigits(text):
		parsed, err = dateparse.ParseIn(text, in.loc)
	case len(text) == 8:
		parsed, err = time.ParseInLocation("20060102", text, in.loc)
	default:
		err = fmt.Errorf("%q is not a date", text)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(parsed), nil
}

func isDigits(text string) bool {
	if text == "" {
		return false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

func decodeEnum(in decodeInput, t reflect.Type) (reflect.Value, error) {
	def, ok := lookupEnum(t)
	if !ok {
		return reflect.Value{}, fmt.Errorf("%s is not a registered enum", t)
	}
	return def.parse(in.raw, t)
}

func decodeConvertible(in decodeInput, t reflect.Type) (reflect.Value, error) {
	text := strings.TrimSpace(in.unquoted())
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		v, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(text, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(text, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(v)
	default:
		return reflect.Value{}, fmt.Errorf("%s is not convertible", t)
	}
	return out, nil
}

func decodeIdentifier(in decodeInput, _ reflect.Type) (reflect.Value, error) {
	id, err := uuid.Parse(in.raw)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(id), nil
}

func decodeDuration(in decodeInput, _ reflect.Type) (reflect.Value, error) {
	d, err := parseDuration(in.raw)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(d), nil
}

// encodeValue converts v into its stored form. A nil result is an explicit
// null.
func encodeValue(v reflect.Value) (*string, string, error) {
	if !v.IsValid() || isNilValue(v) {
		return nil, StrategyNull, nil
	}
	if v.Kind() == reflect.Interface {
		return encodeValue(v.Elem())
	}
	if v.Kind() == reflect.Pointer && isScalar(v.Type().Elem()) {
		v = v.Elem()
	}

	t := v.Type()
	var text string
	var strategy string
	switch {
	case t.Kind() == reflect.String:
		text, strategy = v.String(), StrategyString
	case t == timeType:
		text, strategy = v.Interface().(time.Time).Format(time.RFC3339Nano), StrategyDateTime
	case t == durationType:
		text, strategy = time.Duration(v.Int()).String(), StrategyDuration
	case isEnum(t):
		def, _ := lookupEnum(t)
		text, strategy = def.format(v), StrategyEnum
	case isConvertible(t):
		text, strategy = formatConvertible(v), StrategyConvertible
	default:
		payload, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, StrategyJSON, err
		}
		text, strategy = string(payload), StrategyJSON
	}
	return &text, strategy, nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}

func formatConvertible(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return formatFloat(v.Float(), v.Type().Bits())
	}
}

// formatFloat uses plain notation for magnitudes a reader expects to see
// written out and exponent notation elsewhere.
func formatFloat(f float64, bits int) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}
