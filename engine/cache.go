package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/coregx/likematch/kernel"
	"github.com/coregx/likematch/like"
)

// PatternCache memoizes compiled patterns so repeated queries skip
// tokenization and kernel state construction. Keys combine the kernel
// name, the option bits and the pattern text; two option sets never share
// an entry.
//
// The cache is safe for concurrent use (the underlying LRU locks), but
// note that cached FFT-kernel patterns inherit that kernel's
// single-goroutine restriction.
type PatternCache struct {
	searcher kernel.Searcher
	cache    *lru.Cache[string, *like.Pattern]
}

// NewPatternCache returns a cache of up to size compiled patterns bound
// to one kernel.
func NewPatternCache(searcher kernel.Searcher, size int) (*PatternCache, error) {
	cache, err := lru.New[string, *like.Pattern](size)
	if err != nil {
		return nil, err
	}
	return &PatternCache{searcher: searcher, cache: cache}, nil
}

// Get returns the compiled pattern for (pattern, opts), compiling and
// caching it on a miss.
func (c *PatternCache) Get(pattern []byte, opts like.Options) (*like.Pattern, error) {
	key := cacheKey(c.searcher.Name(), pattern, opts)
	if p, ok := c.cache.Get(key); ok {
		return p, nil
	}

	p, err := like.Compile(pattern, c.searcher, opts)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, p)
	return p, nil
}

// Len returns the number of cached patterns.
func (c *PatternCache) Len() int { return c.cache.Len() }

func cacheKey(kernelName string, pattern []byte, opts like.Options) string {
	bits := byte('0')
	if opts.TreatUnderscoreAsLiteral {
		bits |= 1
	}
	if opts.LiteralUnderscoreIsWildcard {
		bits |= 2
	}
	return kernelName + "\x00" + string(bits) + "\x00" + string(pattern)
}
