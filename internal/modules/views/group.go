package views

import "slices"

// Bucket is the run of records sharing one value of the group field
type Bucket[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// Groups is the result of GroupBy. Buckets keep the input's relative order.
type Groups[T any] struct {
	keys    []string
	buckets map[string][]T
}

// GroupBy buckets list by the value of field. Absent values land in Unknown.
func GroupBy[T Record](list []T, field string) *Groups[T] {
	g := &Groups[T]{buckets: make(map[string][]T)}
	for _, rec := range list {
		key := groupKey(rec.Lookup(field))
		if _, seen := g.buckets[key]; !seen {
			g.keys = append(g.keys, key)
		}
		g.buckets[key] = append(g.buckets[key], rec)
	}
	return g
}

// Keys returns the bucket keys in first-seen order
func (g *Groups[T]) Keys() []string {
	return slices.Clone(g.keys)
}

// Len returns the number of non-empty buckets
func (g *Groups[T]) Len() int {
	return len(g.keys)
}

// Get returns the records of one bucket
func (g *Groups[T]) Get(key string) []T {
	return slices.Clone(g.buckets[key])
}

// Map returns every bucket keyed by value
func (g *Groups[T]) Map() map[string][]T {
	out := make(map[string][]T, len(g.buckets))
	for k, v := range g.buckets {
		out[k] = slices.Clone(v)
	}
	return out
}

// Ordered returns the buckets named in order, in that order, skipping empty ones.
func (g *Groups[T]) Ordered(order []string) []Bucket[T] {
	out := make([]Bucket[T], 0, len(order))
	for _, key := range order {
		items, ok := g.buckets[key]
		if !ok || len(items) == 0 {
			continue
		}
		out = append(out, Bucket[T]{Key: key, Items: slices.Clone(items)})
	}
	return out
}

// Rest returns the buckets not named in order, in first-seen order.
func (g *Groups[T]) Rest(order []string) []Bucket[T] {
	out := make([]Bucket[T], 0)
	for _, key := range g.keys {
		if slices.Contains(order, key) {
			continue
		}
		out = append(out, Bucket[T]{Key: key, Items: slices.Clone(g.buckets[key])})
	}
	return out
}

// Flatten concatenates bucket items in bucket order
func Flatten[T any](buckets []Bucket[T]) []T {
	var n int
	for _, b := range buckets {
		n += len(b.Items)
	}
	out := make([]T, 0, n)
	for _, b := range buckets {
		out = append(out, b.Items...)
	}
	return out
}
