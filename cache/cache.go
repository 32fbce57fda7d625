// Package cache keeps large objects that are expensive to load, such as
// parsed rulesets, for the lifetime of the process.
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/schafkopf/config"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

type LoadFunc[T any] func(cfg *config.Config, key string) (T, error)

// GlobalObjectCache is shared by everything in the process.
var GlobalObjectCache = newCache()

func newCache() *cache {
	return &cache{objects: make(map[string]any)}
}

// Load returns the object stored under key, calling load on a miss. Loads
// are serialized; an error is returned as is and nothing gets stored.
func Load[T any](cfg *config.Config, key string, load LoadFunc[T]) (T, error) {
	return get(GlobalObjectCache, cfg, key, load)
}

func get[T any](c *cache, cfg *config.Config, key string, load LoadFunc[T]) (T, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		t, ok := obj.(T)
		if !ok {
			var zero T
			return zero, fmt.Errorf("cached object %q has type %T", key, obj)
		}
		return t, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	t, err := load(cfg, key)
	if err != nil {
		return t, err
	}
	c.objects[key] = t
	return t, nil
}

// Forget drops key so that the next Load reads it again.
func Forget(key string) {
	GlobalObjectCache.Lock()
	defer GlobalObjectCache.Unlock()
	delete(GlobalObjectCache.objects, key)
}
