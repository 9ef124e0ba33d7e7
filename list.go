package opts

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// GetAsList reads key as a list. A value framed as a JSON array ("[...]") is
// decoded element-wise: strings are unescaped, numbers and booleans keep their
// JSON text ("true", "1.5") and null elements become "". An array holding
// objects or nested arrays is not a list of scalars and is split like plain
// text. Anything else is split on delimiters (',' when none are given) with
// each element trimmed. ok is false when the key is absent,
// null or empty, which distinguishes "no list" from an empty one.
func (s *Store) GetAsList(key string, delimiters ...rune) ([]string, bool) {
	value, ok := lookup[string](s, key)
	if !ok {
		return nil, false
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		if items, ok := parseJSONList(trimmed); ok {
			return items, true
		}
	}

	if len(delimiters) == 0 {
		delimiters = []rune{','}
	}
	return splitList(trimmed, delimiters), true
}

func parseJSONList(text string) ([]string, bool) {
	if !gjson.Valid(text) {
		return nil, false
	}
	result := gjson.Parse(text)
	if !result.IsArray() {
		return nil, false
	}
	elements := result.Array()
	items := make([]string, 0, len(elements))
	for _, element := range elements {
		switch element.Type {
		case gjson.Null:
			items = append(items, "")
		case gjson.JSON:
			return nil, false
		default:
			items = append(items, element.String())
		}
	}
	return items, true
}

func splitList(text string, delimiters []rune) []string {
	isDelimiter := func(r rune) bool {
		for _, d := range delimiters {
			if r == d {
				return true
			}
		}
		return false
	}

	var items []string
	start := 0
	for i, r := range text {
		if isDelimiter(r) {
			items = append(items, strings.TrimSpace(text[start:i]))
			start = i + utf8.RuneLen(r)
		}
	}
	return append(items, strings.TrimSpace(text[start:]))
}
