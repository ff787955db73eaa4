package hydrate

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-locators/layering"
	"github.com/goliatone/go-locators/pkg/locator"
)

// Context carries identifiers tied to a locator payload.
type Context struct {
	Source  string
	Version string
}

func (c Context) label() string {
	if c.Source != "" {
		return c.Source
	}
	if c.Version != "" {
		return c.Version
	}
	return "<inline>"
}

// PreHook lets callers mutate or normalise the raw payload before typed
// entries are built.
type PreHook func(Context, map[string]any) (map[string]any, error)

// PostHook lets callers validate the decoded tree.
type PostHook func(Context, map[string]any) error

// DecoderOption configures a Decoder instance.
type DecoderOption func(*Decoder)

// Decoder converts raw locator payloads (YAML or JSON documents, or already
// unmarshalled maps) into locator trees whose leaves are locator entries.
//
// Leaf rules:
//   - a string becomes a CSS selector;
//   - a mapping whose keys all start with "$" is a typed entry:
//     {$css|$xpath|$id|$text: value}, {$selector: value, $strategy: name},
//     {$constructor: name, $args: {...}}, {$extract: expr, $engine: name},
//     {$func: name} (a function registered with WithFunction);
//   - any other mapping is a nested section;
//   - other scalars and lists are kept as-is.
type Decoder struct {
	preHooks  []PreHook
	postHooks []PostHook
	functions map[string]locator.ExtractFunc
	engine    string
}

// WithPreHook applies hook prior to building entries.
func WithPreHook(hook PreHook) DecoderOption {
	return func(d *Decoder) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook(hook PostHook) DecoderOption {
	return func(d *Decoder) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithFunction makes fn addressable from payloads as {$func: name}.
func WithFunction(name string, fn locator.ExtractFunc) DecoderOption {
	return func(d *Decoder) {
		if name == "" || fn == nil {
			return
		}
		if d.functions == nil {
			d.functions = map[string]locator.ExtractFunc{}
		}
		d.functions[name] = fn
	}
}

// WithDefaultEngine sets the engine recorded on $extract entries that do not
// name one.
func WithDefaultEngine(engine string) DecoderOption {
	return func(d *Decoder) {
		d.engine = engine
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// DecodeBytes parses a YAML or JSON document and decodes it.
func (d *Decoder) DecodeBytes(ctx Context, data []byte) (map[string]any, error) {
	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("hydrate: parse %s: %w", ctx.label(), err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return d.Decode(ctx, payload)
}

// Decode converts payload into a locator tree applying configured hooks. The
// input is never mutated.
func (d *Decoder) Decode(ctx Context, payload map[string]any) (map[string]any, error) {
	if payload == nil {
		return nil, fmt.Errorf("hydrate: payload is nil for %s", ctx.label())
	}

	current := layering.Clone(payload)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("hydrate: pre-hook for %s failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	tree, err := d.section(current, "")
	if err != nil {
		return nil, fmt.Errorf("hydrate: decode %s: %w", ctx.label(), err)
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, tree); err != nil {
			return nil, fmt.Errorf("hydrate: post-hook for %s failed: %w", ctx.label(), err)
		}
	}
	return tree, nil
}

func (d *Decoder) section(node map[string]any, prefix string) (map[string]any, error) {
	out := make(map[string]any, len(node))
	for key, value := range node {
		if layering.IsReservedKey(key) {
			continue
		}
		decoded, err := d.value(value, joinPath(prefix, key))
		if err != nil {
			return nil, err
		}
		out[key] = decoded
	}
	return out, nil
}

func (d *Decoder) value(value any, path string) (any, error) {
	switch typed := value.(type) {
	case string:
		return locator.CSS(typed), nil
	case locator.Entry:
		return typed, nil
	}
	node, ok := layering.AsNode(value)
	if !ok {
		return value, nil
	}
	markers, plain := splitMarkers(node)
	switch {
	case markers == 0:
		return d.section(node, path)
	case plain > 0:
		return nil, fmt.Errorf("%s: cannot mix $-prefixed keys with locator names", path)
	}
	return d.entry(node, path)
}

func (d *Decoder) entry(node map[string]any, path string) (locator.Entry, error) {
	for _, strategy := range []locator.Strategy{locator.StrategyCSS, locator.StrategyXPath, locator.StrategyID, locator.StrategyText} {
		if raw, ok := node["$"+string(strategy)]; ok {
			value, err := stringField(raw, path, "$"+string(strategy))
			if err != nil {
				return nil, err
			}
			if err := allowOnly(node, path, "$"+string(strategy)); err != nil {
				return nil, err
			}
			return locator.Selector{Value: value, Strategy: strategy}, nil
		}
	}

	if raw, ok := node["$selector"]; ok {
		if err := allowOnly(node, path, "$selector", "$strategy"); err != nil {
			return nil, err
		}
		value, err := stringField(raw, path, "$selector")
		if err != nil {
			return nil, err
		}
		name, _ := node["$strategy"].(string)
		strategy, err := locator.ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return locator.Selector{Value: value, Strategy: strategy}, nil
	}

	if raw, ok := node["$constructor"]; ok {
		if err := allowOnly(node, path, "$constructor", "$args"); err != nil {
			return nil, err
		}
		name, err := stringField(raw, path, "$constructor")
		if err != nil {
			return nil, err
		}
		ctor := locator.Constructor{Name: name}
		if rawArgs, ok := node["$args"]; ok {
			args, isNode := layering.AsNode(rawArgs)
			if !isNode {
				return nil, fmt.Errorf("%s: $args must be a mapping", path)
			}
			ctor.Args = layering.Clone(args)
		}
		return ctor, nil
	}

	if raw, ok := node["$extract"]; ok {
		if err := allowOnly(node, path, "$extract", "$engine", "$name"); err != nil {
			return nil, err
		}
		expr, err := stringField(raw, path, "$extract")
		if err != nil {
			return nil, err
		}
		engine, _ := node["$engine"].(string)
		if engine == "" {
			engine = d.engine
		}
		name, _ := node["$name"].(string)
		return locator.Extraction{Name: name, Engine: engine, Expr: expr}, nil
	}

	if raw, ok := node["$func"]; ok {
		if err := allowOnly(node, path, "$func"); err != nil {
			return nil, err
		}
		name, err := stringField(raw, path, "$func")
		if err != nil {
			return nil, err
		}
		fn := d.functions[name]
		if fn == nil {
			return nil, fmt.Errorf("%s: extraction function %q not registered", path, name)
		}
		return locator.Fn(name, fn), nil
	}

	return nil, fmt.Errorf("%s: unknown entry markers %v", path, markerNames(node))
}

func splitMarkers(node map[string]any) (markers, plain int) {
	for key := range node {
		if strings.HasPrefix(key, "$") {
			markers++
			continue
		}
		plain++
	}
	return markers, plain
}

func allowOnly(node map[string]any, path string, allowed ...string) error {
	for key := range node {
		found := false
		for _, candidate := range allowed {
			if key == candidate {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%s: unexpected key %q next to %s", path, key, allowed[0])
		}
	}
	return nil
}

func stringField(raw any, path, field string) (string, error) {
	value, ok := raw.(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%s: %s must be a non-empty string", path, field)
	}
	return value, nil
}

func markerNames(node map[string]any) []string {
	names := make([]string, 0, len(node))
	for key := range node {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
