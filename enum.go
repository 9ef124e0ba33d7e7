package opts

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/constraints"
)

type enumDef struct {
	byName  map[string]reflect.Value
	byValue map[any]string
}

var enumRegistry sync.Map

// RegisterEnum declares T as an enumeration with the given member names.
// Registered types encode to their member name and decode from a member name
// (case-insensitive) or a base-10 integer. T must be a named type; registering
// a predeclared integer type is rejected.
func RegisterEnum[T constraints.Integer](members map[string]T) error {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return fmt.Errorf("opts: enum type %s must be a named type", t)
	}
	if len(members) == 0 {
		return fmt.Errorf("opts: enum type %s has no members", t)
	}
	def := &enumDef{
		byName:  make(map[string]reflect.Value, len(members)),
		byValue: make(map[any]string, len(members)),
	}
	for name, value := range members {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("opts: enum type %s has an empty member name", t)
		}
		folded := foldKey(name)
		if _, exists := def.byName[folded]; exists {
			return fmt.Errorf("opts: enum type %s member %q registered twice", t, name)
		}
		def.byName[folded] = reflect.ValueOf(value)
		if existing, ok := def.byValue[value]; !ok || name < existing {
			def.byValue[value] = name
		}
	}
	enumRegistry.Store(t, def)
	return nil
}

func lookupEnum(t reflect.Type) (*enumDef, bool) {
	cached, ok := enumRegistry.Load(t)
	if !ok {
		return nil, false
	}
	return cached.(*enumDef), true
}

func isEnum(t reflect.Type) bool {
	_, ok := lookupEnum(t)
	return ok
}

func (e *enumDef) format(v reflect.Value) string {
	if name, ok := e.byValue[v.Interface()]; ok {
		return name
	}
	if isUnsigned(v.Kind()) {
		return strconv.FormatUint(v.Uint(), 10)
	}
	return strconv.FormatInt(v.Int(), 10)
}

func (e *enumDef) parse(raw string, t reflect.Type) (reflect.Value, error) {
	name := strings.TrimSpace(raw)
	if member, ok := e.byName[foldKey(name)]; ok {
		out := reflect.New(t).Elem()
		out.Set(member)
		return out, nil
	}
	out := reflect.New(t).Elem()
	if isUnsigned(t.Kind()) {
		n, err := strconv.ParseUint(name, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%q is not a member of %s", raw, t)
		}
		out.SetUint(n)
		return out, nil
	}
	n, err := strconv.ParseInt(name, 10, t.Bits())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%q is not a member of %s", raw, t)
	}
	out.SetInt(n)
	return out, nil
}

func isUnsigned(kind reflect.Kind) bool {
	switch kind {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}
