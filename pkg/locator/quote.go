package locator

import (
	"fmt"
	"strings"
)

// FormatQuoted substitutes values into a parameterized selector as string
// literals of the selector's language, so templates use a bare %s where the
// quoted value goes: `.item[title=%s]` or `//li[text()=%s]`. Text selectors
// take values verbatim.
func (s Selector) FormatQuoted(values ...string) Selector {
	if len(values) == 0 {
		return s
	}
	args := make([]any, len(values))
	for i, value := range values {
		switch s.Strategy {
		case StrategyXPath:
			args[i] = XPathLiteral(value)
		case StrategyText:
			args[i] = value
		default:
			args[i] = CSSString(value)
		}
	}
	return Selector{Value: fmt.Sprintf(s.Value, args...), Strategy: s.Strategy}
}

// CSSString serializes value as a double-quoted CSS string.
func CSSString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// XPathLiteral quotes value as an XPath 1.0 string literal. Values holding
// both quote kinds are built with concat().
func XPathLiteral(value string) string {
	if !strings.Contains(value, "'") {
		return "'" + value + "'"
	}
	if !strings.Contains(value, `"`) {
		return `"` + value + `"`
	}
	parts := strings.Split(value, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
