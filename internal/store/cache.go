package store

import (
	"fmt"
	"slices"
)

// rootParent is the bucket key for kinds without a parent.
const rootParent int64 = 0

// bucketCache holds records of one kind in a flat id index plus an ordered
// per-parent id list. Every cached record appears in exactly one bucket and
// in the flat index; a parent with a bucket (even empty) counts as loaded.
type bucketCache[T any] struct {
	idOf     func(T) int64
	parentOf func(T) int64
	records  map[int64]T
	owner    map[int64]int64
	buckets  map[int64][]int64
}

func newBucketCache[T any](idOf, parentOf func(T) int64) *bucketCache[T] {
	return &bucketCache[T]{
		idOf:     idOf,
		parentOf: parentOf,
		records:  make(map[int64]T),
		owner:    make(map[int64]int64),
		buckets:  make(map[int64][]int64),
	}
}

// replace swaps the whole bucket for parent with items.
func (c *bucketCache[T]) replace(parent int64, items []T) {
	for _, id := range c.buckets[parent] {
		delete(c.records, id)
		delete(c.owner, id)
	}
	c.buckets[parent] = make([]int64, 0, len(items))
	for _, item := range items {
		c.put(parent, item)
	}
}

// add appends item to the bucket of its parent.
func (c *bucketCache[T]) add(item T) {
	c.put(c.parentOf(item), item)
}

// update replaces a cached record by id. Unknown ids are ignored.
func (c *bucketCache[T]) update(item T) bool {
	id := c.idOf(item)
	if _, ok := c.records[id]; !ok {
		return false
	}
	if parent := c.parentOf(item); parent != c.owner[id] {
		c.put(parent, item)
		return true
	}
	c.records[id] = item
	return true
}

// remove drops id from the cache. Unknown ids are ignored.
func (c *bucketCache[T]) remove(id int64) bool {
	parent, ok := c.owner[id]
	if !ok {
		return false
	}
	c.detach(id, parent)
	delete(c.records, id)
	delete(c.owner, id)
	return true
}

func (c *bucketCache[T]) put(parent int64, item T) {
	id := c.idOf(item)
	if prev, ok := c.owner[id]; ok {
		c.detach(id, prev)
	}
	c.records[id] = item
	c.owner[id] = parent
	c.buckets[parent] = append(c.buckets[parent], id)
}

func (c *bucketCache[T]) detach(id, parent int64) {
	c.buckets[parent] = slices.DeleteFunc(c.buckets[parent], func(v int64) bool { return v == id })
}

func (c *bucketCache[T]) get(id int64) (T, bool) {
	v, ok := c.records[id]
	return v, ok
}

func (c *bucketCache[T]) loaded(parent int64) bool {
	_, ok := c.buckets[parent]
	return ok
}

// bucket returns a copy of the records under parent, in insertion order.
func (c *bucketCache[T]) bucket(parent int64) []T {
	ids := c.buckets[parent]
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.records[id])
	}
	return out
}

func (c *bucketCache[T]) len() int {
	return len(c.records)
}

func (c *bucketCache[T]) checkInvariant() error {
	seen := make(map[int64]int64, len(c.records))
	for parent, ids := range c.buckets {
		for _, id := range ids {
			if other, dup := seen[id]; dup {
				return fmt.Errorf("id %d in buckets %d and %d", id, other, parent)
			}
			seen[id] = parent
			rec, ok := c.records[id]
			if !ok {
				return fmt.Errorf("id %d in bucket %d but not in index", id, parent)
			}
			if got := c.idOf(rec); got != id {
				return fmt.Errorf("index key %d holds record %d", id, got)
			}
			if c.owner[id] != parent {
				return fmt.Errorf("id %d owner is %d, bucket is %d", id, c.owner[id], parent)
			}
		}
	}
	if len(seen) != len(c.records) || len(c.owner) != len(c.records) {
		return fmt.Errorf("index has %d records, buckets hold %d", len(c.records), len(seen))
	}
	return nil
}
