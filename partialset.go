package ats

import "math/bits"

// PartialSet is a set of partial indices.
type PartialSet struct {
	words []uint64
}

// NewPartialSet returns a set holding the given indices. Negative indices
// are ignored.
func NewPartialSet(indices ...int) PartialSet {
	var s PartialSet
	for _, i := range indices {
		s.Add(i)
	}
	return s
}

// AllPartials returns the set {0, ..., n-1}.
func AllPartials(n int) PartialSet {
	var s PartialSet
	for i := 0; i < n; i++ {
		s.Add(i)
	}
	return s
}

// Add inserts i.
func (s *PartialSet) Add(i int) {
	if i < 0 {
		return
	}
	w := i / 64
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(i) % 64)
}

// Remove deletes i.
func (s *PartialSet) Remove(i int) {
	if i < 0 || i/64 >= len(s.words) {
		return
	}
	s.words[i/64] &^= 1 << (uint(i) % 64)
}

// Contains reports whether i is in the set.
func (s *PartialSet) Contains(i int) bool {
	if i < 0 || i/64 >= len(s.words) {
		return false
	}
	return s.words[i/64]&(1<<(uint(i)%64)) != 0
}

// Len returns the number of members.
func (s *PartialSet) Len() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Indices returns the members in ascending order.
func (s *PartialSet) Indices() []int {
	out := make([]int, 0, s.Len())
	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &= w - 1
		}
	}
	return out
}

// Clone returns an independent copy.
func (s *PartialSet) Clone() PartialSet {
	return PartialSet{words: append([]uint64(nil), s.words...)}
}

// Intersect returns the members present in both sets.
func (s *PartialSet) Intersect(o *PartialSet) PartialSet {
	n := min(len(s.words), len(o.words))
	out := PartialSet{words: make([]uint64, n)}
	for i := 0; i < n; i++ {
		out.words[i] = s.words[i] & o.words[i]
	}
	return out
}
