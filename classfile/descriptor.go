package classfile

import (
	"strings"

	"github.com/pkg/errors"
)

// ParamKind is the base-type classification of one parsed descriptor
// parameter, used by the interpreter to decide slot width (§4.6.3).
type ParamKind int

const (
	KindInt ParamKind = iota
	KindLong
	KindFloat
	KindDouble
	KindRef
)

// Slots reports how many local-variable slots this kind occupies.
func (k ParamKind) Slots() int {
	if k == KindLong || k == KindDouble {
		return 2
	}
	return 1
}

// ParseParams parses the parameter list between ( and ) of a method
// descriptor, returning one ParamKind per parameter in order.
func ParseParams(descriptor string) ([]ParamKind, error) {
	start := strings.IndexByte(descriptor, '(')
	end := strings.IndexByte(descriptor, ')')
	if start == -1 || end == -1 || end < start {
		return nil, errors.Errorf("invalid method descriptor: %s", descriptor)
	}
	params := descriptor[start+1 : end]

	var kinds []ParamKind
	i := 0
	for i < len(params) {
		kind, width, err := parseOneType(params, i)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
		i += width
	}
	return kinds, nil
}

// parseOneType parses a single field descriptor starting at i,
// returning its kind and the number of bytes it consumed.
func parseOneType(s string, i int) (ParamKind, int, error) {
	start := i
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return 0, 0, errors.Errorf("truncated type descriptor: %s", s)
	}
	switch s[i] {
	case 'B', 'C', 'I', 'S', 'Z':
		return arrayAdjust(start, i, KindInt, KindRef), i - start + 1, nil
	case 'J':
		return arrayAdjust(start, i, KindLong, KindRef), i - start + 1, nil
	case 'F':
		return arrayAdjust(start, i, KindFloat, KindRef), i - start + 1, nil
	case 'D':
		return arrayAdjust(start, i, KindDouble, KindRef), i - start + 1, nil
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end == -1 {
			return 0, 0, errors.Errorf("unterminated reference type in descriptor: %s", s)
		}
		return KindRef, (i + end + 1) - start, nil
	default:
		return 0, 0, errors.Errorf("invalid type descriptor char %q in %s", s[i], s)
	}
}

// arrayAdjust reports KindRef whenever the type was array-prefixed
// (arrays are always a single reference slot, regardless of element
// type), and the scalar kind otherwise.
func arrayAdjust(start, i int, scalar, arrayKind ParamKind) ParamKind {
	if i != start {
		return arrayKind
	}
	return scalar
}

// ReturnKind classifies a method descriptor's return type, with an
// extra ok=false for void ("...)V").
func ReturnKind(descriptor string) (kind ParamKind, ok bool) {
	end := strings.IndexByte(descriptor, ')')
	if end == -1 || end+1 >= len(descriptor) {
		return 0, false
	}
	ret := descriptor[end+1:]
	if ret == "V" {
		return 0, false
	}
	k, _, err := parseOneType(ret, 0)
	if err != nil {
		return 0, false
	}
	return k, true
}

// IsVoidReturn reports whether a method descriptor returns void.
func IsVoidReturn(descriptor string) bool {
	return strings.HasSuffix(descriptor, ")V")
}
