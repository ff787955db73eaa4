package pageobjects

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/goliatone/go-locators/pkg/locator"
)

// node is an in-memory DOM element.
type node struct {
	tag      string
	text     string
	attrs    map[string]string
	classes  []string
	children []*node
	parent   *node
	clicks   int
	onClick  func(*node)
}

func el(tag, classes string, children ...*node) *node {
	n := &node{tag: tag, attrs: map[string]string{}, classes: strings.Fields(classes)}
	for _, child := range children {
		n.append(child)
	}
	return n
}

func (n *node) withText(text string) *node {
	n.text = text
	return n
}

func (n *node) withAttr(key, value string) *node {
	n.attrs[key] = value
	return n
}

func (n *node) withClick(fn func(*node)) *node {
	n.onClick = fn
	return n
}

func (n *node) append(child *node) {
	child.parent = n
	n.children = append(n.children, child)
}

func (n *node) remove() {
	if n.parent == nil {
		return
	}
	n.parent.children = slices.DeleteFunc(n.parent.children, func(c *node) bool { return c == n })
	n.parent = nil
}

func (n *node) toggleClass(class string) {
	if i := slices.Index(n.classes, class); i >= 0 {
		n.classes = slices.Delete(n.classes, i, i+1)
		return
	}
	n.classes = append(n.classes, class)
}

var simpleSelector = regexp.MustCompile(`^([a-z]*)((?:[.#][\w-]+)*)((?:\[[\w-]+="[^"]*"\])*)$`)
var selectorPart = regexp.MustCompile(`[.#][\w-]+`)
var selectorAttr = regexp.MustCompile(`\[([\w-]+)="([^"]*)"\]`)

// matches supports tag, .class, #id and [attr="value"] compounds.
func (n *node) matches(selector locator.Selector) (bool, error) {
	if selector.Strategy != locator.StrategyCSS && selector.Strategy != "" {
		return false, fmt.Errorf("fake driver: unsupported strategy %s", selector.Strategy)
	}
	parts := simpleSelector.FindStringSubmatch(selector.Value)
	if parts == nil {
		return false, fmt.Errorf("fake driver: unsupported selector %q", selector.Value)
	}
	if parts[1] != "" && parts[1] != n.tag {
		return false, nil
	}
	for _, part := range selectorPart.FindAllString(parts[2], -1) {
		switch part[0] {
		case '.':
			if !slices.Contains(n.classes, part[1:]) {
				return false, nil
			}
		case '#':
			if n.attrs["id"] != part[1:] {
				return false, nil
			}
		}
	}
	for _, attr := range selectorAttr.FindAllStringSubmatch(parts[3], -1) {
		if n.attrs[attr[1]] != attr[2] {
			return false, nil
		}
	}
	return true, nil
}

func (n *node) descendants(selector locator.Selector) ([]Element, error) {
	var out []Element
	var walk func(*node) error
	walk = func(current *node) error {
		for _, child := range current.children {
			ok, err := child.matches(selector)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, &fakeElement{node: child})
			}
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return out, walk(n)
}

type fakeDriver struct {
	body  *node
	finds []string
}

func (d *fakeDriver) Find(_ context.Context, selector locator.Selector) ([]Element, error) {
	d.finds = append(d.finds, selector.String())
	return d.body.descendants(selector)
}

type fakeElement struct {
	node *node
}

func (e *fakeElement) Find(_ context.Context, selector locator.Selector) ([]Element, error) {
	return e.node.descendants(selector)
}

func (e *fakeElement) Click(context.Context) error {
	e.node.clicks++
	if e.node.onClick != nil {
		e.node.onClick(e.node)
	}
	return nil
}

func (e *fakeElement) Snapshot(context.Context) (locator.Element, error) {
	attrs := make(map[string]string, len(e.node.attrs))
	for k, v := range e.node.attrs {
		attrs[k] = v
	}
	return locator.Element{
		Tag:        e.node.tag,
		Text:       e.node.text,
		Attributes: attrs,
		Classes:    slices.Clone(e.node.classes),
	}, nil
}
