package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mrlokans/storyhub/internal/entities"
)

// Result is the outcome of projecting one raw record.
type Result struct {
	Fields  map[string]any `json:"fields"`
	Missing []string       `json:"missing,omitempty"`
}

// Valid reports whether every required field was satisfied.
func (r Result) Valid() bool {
	return len(r.Missing) == 0
}

// Apply projects raw onto the internal schema described by mappings.
//
// Each active mapping reads its source field as a key path. An absent or
// null value falls back to the default; a required field with neither is
// listed in Missing by target name. Apply never fails.
func Apply(raw map[string]any, mappings []entities.FieldMapping) Result {
	result := Result{Fields: make(map[string]any, len(mappings))}

	for _, m := range mappings {
		if !m.IsActive() {
			continue
		}

		if v, ok := Lookup(raw, m.SourceField); ok && v != nil {
			result.Fields[m.TargetField] = v
			continue
		}

		if m.DefaultValue != nil {
			result.Fields[m.TargetField] = *m.DefaultValue
			continue
		}

		if m.IsRequired {
			result.Missing = append(result.Missing, m.TargetField)
		}
	}

	return result
}

// Lookup resolves a key path such as "data.list[0].name" or "data.list.0.name"
// against a decoded JSON value. An empty path returns the root.
func Lookup(raw any, path string) (any, bool) {
	segments, err := splitPath(path)
	if err != nil {
		return nil, false
	}

	cur := raw
	for _, seg := range segments {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ExtractList returns the array found at path inside an envelope.
// Non-object elements are skipped.
func ExtractList(raw any, path string) ([]map[string]any, error) {
	v, ok := Lookup(raw, path)
	if !ok {
		return nil, fmt.Errorf("path %q not found in response", path)
	}

	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("path %q is not a list", path)
	}

	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func splitPath(path string) ([]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}

	var segments []string
	for _, part := range strings.Split(path, ".") {
		for part != "" {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segments = append(segments, part)
				break
			}
			if open > 0 {
				segments = append(segments, part[:open])
			}
			closing := strings.IndexByte(part[open:], ']')
			if closing < 0 {
				return nil, fmt.Errorf("unterminated index in %q", path)
			}
			segments = append(segments, part[open+1:open+closing])
			part = part[open+closing+1:]
		}
	}
	return segments, nil
}
