// Package driver holds what the browser-backed page object drivers share:
// translating locator selectors into the CSS and XPath queries a browser
// understands.
package driver

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-locators/pkg/locator"
)

// Query is a selector normalized for a browser. Exactly one field is set.
type Query struct {
	CSS   string
	XPath string
}

// Normalize converts selector into a browser query. Id selectors become
// attribute CSS selectors and text selectors become XPath. Scoped text
// queries search below the context node.
func Normalize(selector locator.Selector, scoped bool) (Query, error) {
	if strings.TrimSpace(selector.Value) == "" {
		return Query{}, fmt.Errorf("driver: empty selector")
	}
	switch selector.Strategy {
	case "", locator.StrategyCSS:
		return Query{CSS: selector.Value}, nil
	case locator.StrategyID:
		return Query{CSS: "[id=" + locator.CSSString(selector.Value) + "]"}, nil
	case locator.StrategyXPath:
		return Query{XPath: selector.Value}, nil
	case locator.StrategyText:
		prefix := "//"
		if scoped {
			prefix = ".//"
		}
		return Query{XPath: fmt.Sprintf("%s*[normalize-space(text())=%s]", prefix, locator.XPathLiteral(strings.TrimSpace(selector.Value)))}, nil
	default:
		return Query{}, fmt.Errorf("driver: unsupported selector strategy %q", selector.Strategy)
	}
}

// Classes splits a class attribute.
func Classes(attrs map[string]string) []string {
	return strings.Fields(attrs["class"])
}
