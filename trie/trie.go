// Package trie implements the double-array (BASE/CHECK) trie used as the
// dictionary index of an mmjp model.
//
// Keys are UTF-8 byte sequences; each transition consumes one byte. Byte 0 is
// reserved as the key terminator: a key is accepted when a 0-code transition
// exists, and the terminal node carries the word id encoded as a negative
// BASE value (BASE[term] = -(id+1)).
//
// A Trie is read-only and safe for concurrent use without locking.
package trie

import "errors"

// root is the index of the root node. Index 0 is unused, which lets
// CHECK[i] == 0 mark a free slot.
const root = 1

// IDNone marks a span with no dictionary entry.
const IDNone uint16 = 0xFFFF

// ErrInvalidArrays indicates BASE/CHECK arrays that cannot form a trie.
var ErrInvalidArrays = errors.New("trie: invalid BASE/CHECK arrays")

// Match is one common-prefix hit: the key covers input bytes up to End
// (exclusive) and maps to word id ID.
type Match struct {
	End int
	ID  uint16
}

// Trie is a read-only double-array trie over byte codes.
type Trie struct {
	base  []int32
	check []int32
}

// New wraps BASE/CHECK arrays loaded from a model file. The arrays are not
// re-validated here; malformed transitions surface as lookup misses.
func New(base, check []int32) (*Trie, error) {
	if len(base) != len(check) || len(base) <= root {
		return nil, ErrInvalidArrays
	}
	return &Trie{base: base, check: check}, nil
}

// Arrays returns the underlying BASE and CHECK arrays.
func (t *Trie) Arrays() (base, check []int32) { return t.base, t.check }

// Size returns the number of trie slots.
func (t *Trie) Size() int { return len(t.base) }

// next performs one bounds-checked transition, returning 0 on failure.
func (t *Trie) next(cur int32, code byte) int32 {
	if cur <= 0 || int(cur) >= len(t.base) {
		return 0
	}
	b := t.base[cur]
	if b <= 0 {
		return 0
	}
	idx := int(b) + int(code)
	if idx >= len(t.check) {
		return 0
	}
	// The root is initialized with check[root] == root; a slot landing on the
	// current node would be a self-loop, not a transition.
	if idx == int(cur) {
		return 0
	}
	if t.check[idx] != cur {
		return 0
	}
	return int32(idx)
}

// terminalID returns the word id stored at node's terminator child, or
// (IDNone, false) when node is not an accepting state.
func (t *Trie) terminalID(node int32) (uint16, bool) {
	term := t.next(node, 0)
	if term == 0 {
		return IDNone, false
	}
	v := t.base[term]
	if v >= 0 {
		return IDNone, false
	}
	id := -int64(v) - 1
	if id > int64(IDNone)-1 {
		return IDNone, false
	}
	return uint16(id), true
}

// LookupExact returns the word id for key when the full key ends at an
// accepting state.
func (t *Trie) LookupExact(key string) (uint16, bool) {
	cur := int32(root)
	for i := 0; i < len(key); i++ {
		cur = t.next(cur, key[i])
		if cur == 0 {
			return IDNone, false
		}
	}
	return t.terminalID(cur)
}

// CommonPrefixSearch walks transitions over text starting at byte offset
// from, returning every dictionary entry that is a prefix of text[from:],
// shortest match first. It returns all matches, not just the longest: shorter
// dictionary words are independent segmentation candidates.
func (t *Trie) CommonPrefixSearch(text string, from int) []Match {
	var matches []Match
	cur := int32(root)
	for i := from; i < len(text); i++ {
		cur = t.next(cur, text[i])
		if cur == 0 {
			break
		}
		if id, ok := t.terminalID(cur); ok {
			matches = append(matches, Match{End: i + 1, ID: id})
		}
	}
	return matches
}
