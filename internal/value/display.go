package value

import (
	"fmt"
	"strings"
)

// Display renders a localized, human-facing form matching the
// assembler's own literal words for booleans ("true"/"false" rather
// than Go's bare %v).
func (v Value) Display() string {
	switch v.typ {
	case TypeNil:
		return "nil"
	case TypeBool:
		if v.data.(bool) {
			return "true"
		}
		return "false"
	case TypeInt:
		return fmt.Sprintf("%d", v.data.(int64))
	case TypeFloat:
		return fmt.Sprintf("%.6f", v.data.(float64))
	case TypeTrit:
		return v.RawTrit().String()
	case TypeAddr:
		return fmt.Sprintf("@%d", v.data.(uint64))
	case TypeStr:
		return fmt.Sprintf("%q", v.data.(string))
	case TypeArray:
		elems := v.data.([]Value)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = e.Display()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case TypeObject:
		fields := v.data.(map[string]Value)
		parts := make([]string, 0, len(fields))
		for k, val := range fields {
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.Display()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<%s>", v.typ)
	}
}

// String implements fmt.Stringer via Display, so a bare Value prints
// sensibly in error messages and logs.
func (v Value) String() string {
	return v.Display()
}
