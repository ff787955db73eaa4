package diffs

import (
	"fmt"

	"github.com/goliatone/go-locators/internal/hydrate"
	"github.com/goliatone/go-locators/pkg/locator"
)

// Option configures how repositories decode diff documents.
type Option func(*options)

type options struct {
	decoderOpts []hydrate.DecoderOption
}

// WithFunction makes fn addressable from documents as {$func: name}.
func WithFunction(name string, fn locator.ExtractFunc) Option {
	return func(o *options) {
		o.decoderOpts = append(o.decoderOpts, hydrate.WithFunction(name, fn))
	}
}

// WithDefaultEngine records engine on $extract entries that do not name one.
func WithDefaultEngine(engine string) Option {
	return func(o *options) {
		o.decoderOpts = append(o.decoderOpts, hydrate.WithDefaultEngine(engine))
	}
}

// WithValidator runs check on every decoded document; a non-nil error fails
// the load.
func WithValidator(check func(source string, tree map[string]any) error) Option {
	return func(o *options) {
		if check == nil {
			return
		}
		o.decoderOpts = append(o.decoderOpts, hydrate.WithPostHook(func(ctx hydrate.Context, tree map[string]any) error {
			source := ctx.Source
			if source == "" {
				source = ctx.Version
			}
			return check(source, tree)
		}))
	}
}

func applyOptions(opts []Option) options {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (o options) decoder() *hydrate.Decoder {
	return hydrate.NewDecoder(o.decoderOpts...)
}

// Decode parses a YAML or JSON locator document into a locator tree.
func Decode(document []byte, opts ...Option) (map[string]any, error) {
	tree, err := applyOptions(opts).decoder().DecodeBytes(hydrate.Context{}, document)
	if err != nil {
		return nil, fmt.Errorf("diffs: %w", err)
	}
	return tree, nil
}
