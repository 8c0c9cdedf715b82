package normalize

import (
	"strconv"
	"strings"
)

// Nested key sets probed when a candidate field holds an object instead of a
// scalar. The generic set covers WordPress-style rendered wrappers; the
// field-specific sets reflect the shapes each logical field shows in the wild.
var (
	genericNestedKeys  = []string{"rendered", "raw", "value", "name", "title", "plain"}
	titleNestedKeys    = []string{"rendered", "raw", "plain", "value"}
	authorNestedKeys   = []string{"name", "display_name", "nickname", "login"}
	categoryNestedKeys = []string{"name", "title", "label", "slug"}
	imageNestedKeys    = []string{"url", "src", "source_url", "link", "href"}

	// listItemKeys are probed on object elements inside candidate arrays.
	listItemKeys = []string{"name", "title", "value", "label"}
)

// maxNestingDepth bounds how far the extractor follows objects inside
// objects. Two levels covers every wrapper shape seen upstream.
const maxNestingDepth = 2

// ExtractField returns the first non-empty trimmed string produced by probing
// the candidate keys on a raw item, in order. Object values are searched with
// nestedKeys, array values element by element, scalars stringified directly.
// No candidates matching yields "" — absence of a field is not an error.
func ExtractField(item map[string]any, candidates, nestedKeys []string) string {
	for _, key := range candidates {
		value, ok := item[key]
		if !ok {
			continue
		}
		if s := stringifyValue(value, nestedKeys, 0); s != "" {
			return s
		}
	}
	return ""
}

// stringifyValue reduces one raw value to a trimmed string, probing nested
// keys on objects and walking arrays until a non-empty element turns up.
func stringifyValue(value any, nestedKeys []string, depth int) string {
	switch v := value.(type) {
	case map[string]any:
		if depth >= maxNestingDepth {
			return ""
		}
		for _, nk := range nestedKeys {
			inner, ok := v[nk]
			if !ok {
				continue
			}
			if s := stringifyValue(inner, nestedKeys, depth+1); s != "" {
				return s
			}
		}
		return ""

	case []any:
		for _, elem := range v {
			if obj, ok := elem.(map[string]any); ok {
				for _, k := range listItemKeys {
					if s := scalarString(obj[k]); s != "" {
						return s
					}
				}
				continue
			}
			if s := scalarString(elem); s != "" {
				return s
			}
		}
		return ""

	default:
		return scalarString(value)
	}
}

// scalarString stringifies a JSON scalar. Numbers format without exponent
// notation so numeric ids survive round-tripping; objects and arrays yield ""
// at this level.
func scalarString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
