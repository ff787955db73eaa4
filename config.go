package locators

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-locators/pkg/activity"
	"github.com/goliatone/go-locators/pkg/diffs"
	"github.com/goliatone/go-locators/version"
)

// EnvTargetVersion overrides Config.TargetVersion when set.
const EnvTargetVersion = "THEIA_VERSION"

// Config is the file form of a resolver setup.
type Config struct {
	BaselineVersion  string          `yaml:"baseline_version"`
	BaselineFile     string          `yaml:"baseline_file"`
	DiffsDir         string          `yaml:"diffs_dir"`
	TargetVersion    string          `yaml:"target_version"`
	ExtractionEngine string          `yaml:"extraction_engine"`
	Activity         activity.Config `yaml:"activity"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("locators: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML configuration document, applies defaults and
// the THEIA_VERSION override, and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("locators: parse config: %w", err)
	}
	cfg.applyDefaults()
	if target := strings.TrimSpace(os.Getenv(EnvTargetVersion)); target != "" {
		cfg.TargetVersion = target
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BaselineFile == "" {
		c.BaselineFile = "baseline.yaml"
	}
	if c.DiffsDir == "" {
		c.DiffsDir = "diffs"
	}
	if c.ExtractionEngine == "" {
		c.ExtractionEngine = EngineExpr
	}
	if c.Activity.Channel == "" {
		c.Activity.Channel = activity.DefaultChannel
	}
	if c.TargetVersion == "" {
		c.TargetVersion = c.BaselineVersion
	}
}

// Validate checks that every configured version parses.
func (c *Config) Validate() error {
	var errs []error
	if _, err := version.Parse(c.BaselineVersion); err != nil {
		errs = append(errs, fmt.Errorf("baseline_version: %w", err))
	}
	if _, err := version.Parse(c.TargetVersion); err != nil {
		errs = append(errs, fmt.Errorf("target_version: %w", err))
	}
	switch normalizeEngine(c.ExtractionEngine) {
	case EngineExpr, EngineCEL, EngineJS:
	default:
		errs = append(errs, fmt.Errorf("extraction_engine: unknown engine %q", c.ExtractionEngine))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("locators: invalid config: %w", err)
	}
	return nil
}

// Repository returns a diff repository reading DiffsDir inside fsys.
func (c *Config) Repository(fsys fs.FS, opts ...diffs.Option) *diffs.FSRepository {
	opts = append([]diffs.Option{diffs.WithDefaultEngine(c.ExtractionEngine)}, opts...)
	return diffs.NewFSRepository(fsys, c.DiffsDir, opts...)
}

// LoadBaseline reads and decodes BaselineFile inside fsys.
func (c *Config) LoadBaseline(fsys fs.FS, opts ...diffs.Option) (Baseline, error) {
	name := path.Clean(c.BaselineFile)
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Baseline{}, &ResolveError{Baseline: c.BaselineVersion, Stage: StageParse, Err: err}
	}
	opts = append([]diffs.Option{diffs.WithDefaultEngine(c.ExtractionEngine)}, opts...)
	baseline, err := ParseBaseline(c.BaselineVersion, data, opts...)
	if err != nil {
		return Baseline{}, err
	}
	baseline.Source = name
	return baseline, nil
}

// Options returns the resolver options the configuration implies.
func (c *Config) Options() []Option {
	return []Option{
		WithDefaultEngine(c.ExtractionEngine),
		WithActivityConfig(c.Activity),
	}
}

// NewResolver wires a resolver from the baseline file and diff directory
// inside fsys.
func (c *Config) NewResolver(fsys fs.FS, diffOpts []diffs.Option, opts ...Option) (*Resolver, error) {
	baseline, err := c.LoadBaseline(fsys, diffOpts...)
	if err != nil {
		return nil, err
	}
	return NewResolver(baseline, c.Repository(fsys, diffOpts...), append(c.Options(), opts...)...)
}
