package template

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// templateCache holds compiled templates process-wide, keyed by the
// fingerprint of (template text, table context, dialect name). Compilation
// is pure, so a
// populate race just recomputes the identical artifact; the LRU bound is a
// memory safety valve, not an invalidation mechanism.
var templateCache = newTemplateCache(4096)

func newTemplateCache(size int) *lru.Cache[uint64, *CompiledTemplate] {
	cache, err := lru.New[uint64, *CompiledTemplate](size)
	if err != nil {
		panic(err)
	}
	return cache
}
