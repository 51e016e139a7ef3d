// Package gencache implements generational cache-key invalidation on top of a
// memcache-style key/value store.
//
// Instead of deleting cached entries, callers invalidate generations: named
// invalidation domains whose current counter is embedded in every key that
// depends on them. Bumping a counter makes all of those keys unreachable at
// once; the orphaned entries expire by TTL.
//
// Components:
//   - store.Store: byte store with TTLs, add-if-absent and atomic increment
//     (memcache, Redis, in-process).
//   - genstore.GenStore: generation counters. KV keeps them in the store as
//     "_gen_<suffix>" decimals, created from the clock on first use.
//   - codec.Codec[V]: (de)serializes V <-> []byte.
//
// Generations are either static ("articles") or dynamic ("profile:user_id").
// A dynamic generation is resolved per call from the named argument, so
// invalidating "profile:user_id" with user_id=42 only affects user 42.
//
// Wrapping:
//
//	c, _ := gencache.New[Article](gencache.Options[Article]{
//	    Store: memcacheStore,
//	    Codec: codec.JSON[Article]{},
//	})
//	load, _ := c.Wrap(loadArticle, gencache.WrapOptions{
//	    Generations: []string{"articles", "author:author_id"},
//	    Signature:   gencache.Signature{Params: []string{"author_id", "slug"}},
//	    TTL:         time.Hour,
//	})
//	a, err := load.Call(ctx, gencache.Pos(7, "hello-world"))
//	_, err = c.Invalidate(ctx, "author:author_id", gencache.Params{"author_id": 7})
//
// Keys:
//
//	[cached]<func>:<line>(<extra positionals>{<name>=<value>,...}[<generation>=<counter>,...])
//	<generation>=<counter>,...,<addToKey>                     (direct facade)
//
// Concurrent callers missing the same key each compute the value; there is
// no single-flight. Counter initialization uses the store's add-if-absent, so
// racing initializers agree on one value.
package gencache
