package version

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrInvalidFormat reports a version identifier that cannot be parsed and so
// cannot take part in ordering.
var ErrInvalidFormat = errors.New("version: invalid format")

// FormatError carries the offending input alongside ErrInvalidFormat.
type FormatError struct {
	Input string
	Err   error
}

func (e *FormatError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("version: invalid format %q", e.Input)
	}
	return fmt.Sprintf("version: invalid format %q: %v", e.Input, e.Err)
}

// Is lets errors.Is match ErrInvalidFormat without a wrapping chain.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Version is a parsed, comparable product version. The zero value is invalid
// and compares lower than every parsed version.
type Version struct {
	raw    string
	parsed *goversion.Version
}

// Parse converts a dotted version identifier ("1.42", "1.42.0-next") into a
// Version.
func Parse(input string) (Version, error) {
	value := strings.TrimSpace(input)
	if value == "" {
		return Version{}, &FormatError{Input: input}
	}
	parsed, err := goversion.NewVersion(value)
	if err != nil {
		return Version{}, &FormatError{Input: input, Err: err}
	}
	return Version{raw: value, parsed: parsed}, nil
}

// MustParse is Parse for static identifiers; it panics on malformed input.
func MustParse(input string) Version {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the identifier as it was supplied (trimmed).
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.parsed == nil
}

// Key returns a normalized form where equal versions share the same key
// ("1.2" and "1.2.0" both yield "1.2.0").
func (v Version) Key() string {
	if v.parsed == nil {
		return ""
	}
	segments := v.parsed.Segments()
	for len(segments) > 3 && segments[len(segments)-1] == 0 {
		segments = segments[:len(segments)-1]
	}
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = strconv.Itoa(segment)
	}
	key := strings.Join(parts, ".")
	if pre := v.parsed.Prerelease(); pre != "" {
		key += "-" + pre
	}
	return key
}

// Equal reports whether v and other occupy the same position in the order.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}

// LessThan reports v < other.
func (v Version) LessThan(other Version) bool {
	return Compare(v, other) < 0
}

// GreaterThan reports v > other.
func (v Version) GreaterThan(other Version) bool {
	return Compare(v, other) > 0
}

// Compare returns -1, 0 or 1 using component-wise numeric ordering, so
// "1.10" sorts after "1.9" and "1.0" equals "1.0.0".
func Compare(a, b Version) int {
	switch {
	case a.parsed == nil && b.parsed == nil:
		return 0
	case a.parsed == nil:
		return -1
	case b.parsed == nil:
		return 1
	}
	return a.parsed.Compare(b.parsed)
}

// CompareStrings parses both identifiers and compares them.
func CompareStrings(a, b string) (int, error) {
	va, err := Parse(a)
	if err != nil {
		return 0, err
	}
	vb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return Compare(va, vb), nil
}

// ParseAll parses every identifier, failing on the first malformed one.
func ParseAll(inputs ...string) ([]Version, error) {
	out := make([]Version, 0, len(inputs))
	for _, input := range inputs {
		v, err := Parse(input)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Order selects the sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

func (o Order) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "unknown"
	}
}

// Sort returns a sorted copy of versions. Equal versions keep their relative
// order.
func Sort(versions []Version, order Order) []Version {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, func(a, b Version) int {
		if order == Descending {
			return Compare(b, a)
		}
		return Compare(a, b)
	})
	return out
}

// Bounds controls whether the edges of a Between range are included.
type Bounds struct {
	LowerInclusive bool
	UpperInclusive bool
}

// Between returns the versions lying between lower and upper, in input order.
// The bounds may be supplied in either order.
func Between(versions []Version, lower, upper Version, bounds Bounds) []Version {
	if Compare(lower, upper) > 0 {
		lower, upper = upper, lower
		bounds.LowerInclusive, bounds.UpperInclusive = bounds.UpperInclusive, bounds.LowerInclusive
	}
	out := make([]Version, 0, len(versions))
	for _, v := range versions {
		lo := Compare(v, lower)
		if lo < 0 || (lo == 0 && !bounds.LowerInclusive) {
			continue
		}
		hi := Compare(v, upper)
		if hi > 0 || (hi == 0 && !bounds.UpperInclusive) {
			continue
		}
		out = append(out, v)
	}
	return out
}
