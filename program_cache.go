package locators

import "sync"

// ProgramCache stores compiled expression programs keyed by engine and
// expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type programCache struct {
	entries sync.Map
}

// NewProgramCache returns an unbounded ProgramCache safe for concurrent use.
func NewProgramCache() ProgramCache {
	return &programCache{}
}

func (c *programCache) Get(key string) (any, bool) {
	return c.entries.Load(key)
}

func (c *programCache) Set(key string, value any) {
	c.entries.Store(key, value)
}

func cacheKey(engine, expression string) string {
	return engine + "\x00" + expression
}
