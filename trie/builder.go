package trie

import "errors"

// Builder constructs the BASE/CHECK arrays offline. It is not safe for
// concurrent use; the resulting Trie is.
type Builder struct {
	base  []int32
	check []int32
}

// Builder errors.
var (
	ErrEmptyKey   = errors.New("trie: empty key")
	ErrIDReserved = errors.New("trie: word id reserved")
)

// NewBuilder returns an empty builder with the root node allocated.
func NewBuilder() *Builder {
	b := &Builder{
		base:  make([]int32, 256),
		check: make([]int32, 256),
	}
	b.base[root] = 1
	b.check[root] = root
	return b
}

// grow ensures capacity for slot index need-1, doubling like the dynamic
// C allocator so repeated inserts stay amortized.
func (b *Builder) grow(need int) {
	if need <= len(b.base) {
		return
	}
	newCap := len(b.base)
	for newCap < need {
		newCap *= 2
	}
	nb := make([]int32, newCap)
	nc := make([]int32, newCap)
	copy(nb, b.base)
	copy(nc, b.check)
	b.base = nb
	b.check = nc
}

func (b *Builder) next(cur int32, code byte) int32 {
	if cur <= 0 || int(cur) >= len(b.base) {
		return 0
	}
	bs := b.base[cur]
	if bs <= 0 {
		return 0
	}
	idx := int(bs) + int(code)
	if idx >= len(b.check) || idx == int(cur) {
		return 0
	}
	if b.check[idx] != cur {
		return 0
	}
	return int32(idx)
}

// childCodes collects the transition codes already present under parent.
func (b *Builder) childCodes(parent int32) []byte {
	bs := b.base[parent]
	if bs <= 0 {
		return nil
	}
	var codes []byte
	for c := 0; c < 256; c++ {
		idx := int(bs) + c
		if idx == int(parent) {
			continue
		}
		if idx < len(b.check) && b.check[idx] == parent {
			codes = append(codes, byte(c))
		}
	}
	return codes
}

// findBase scans for the lowest base value whose slots for all codes are free
// (or already owned by parent). Low bases keep the arrays dense.
func (b *Builder) findBase(parent int32, codes []byte) int32 {
	maxc := 0
	for _, c := range codes {
		if int(c) > maxc {
			maxc = int(c)
		}
	}
	for bs := int32(1); ; bs++ {
		b.grow(int(bs) + maxc + 1)
		ok := true
		for _, c := range codes {
			idx := int(bs) + int(c)
			if idx == int(parent) {
				ok = false
				break
			}
			if chk := b.check[idx]; chk != 0 && chk != parent {
				ok = false
				break
			}
		}
		if ok {
			return bs
		}
	}
}

// relocate moves all existing children of parent to newBase, fixing up
// grandchild CHECK pointers. Because several children move at once, a new
// child index can collide with another old child index; the fixup marks new
// indices negative first and flips the sign in a second pass.
func (b *Builder) relocate(parent, newBase int32) {
	codes := b.childCodes(parent)
	oldBase := b.base[parent]

	oldIdx := make([]int32, len(codes))
	newIdx := make([]int32, len(codes))
	childBase := make([]int32, len(codes))
	for i, c := range codes {
		o := oldBase + int32(c)
		n := newBase + int32(c)
		b.grow(int(n) + 1)
		oldIdx[i] = o
		newIdx[i] = n
		childBase[i] = b.base[o]
	}

	for _, o := range oldIdx {
		b.base[o] = 0
		b.check[o] = 0
	}
	for i, n := range newIdx {
		b.check[n] = parent
		b.base[n] = childBase[i]
	}

	for i, cb := range childBase {
		if cb <= 0 {
			continue
		}
		for c := 0; c < 256; c++ {
			g := int(cb) + c
			if g < len(b.check) && b.check[g] == oldIdx[i] {
				b.check[g] = -newIdx[i]
			}
		}
	}
	for i, cb := range childBase {
		if cb <= 0 {
			continue
		}
		neg := -newIdx[i]
		for c := 0; c < 256; c++ {
			g := int(cb) + c
			if g < len(b.check) && b.check[g] == neg {
				b.check[g] = newIdx[i]
			}
		}
	}

	b.base[parent] = newBase
}

// ensure guarantees the parent --code--> transition exists and returns the
// child index, relocating siblings on collision.
func (b *Builder) ensure(parent int32, code byte) int32 {
	bs := b.base[parent]
	if bs <= 0 {
		bs = b.findBase(parent, []byte{code})
		b.base[parent] = bs
	}

	idx := int(bs) + int(code)
	b.grow(idx + 1)
	switch b.check[idx] {
	case parent:
		return int32(idx)
	case 0:
		b.check[idx] = parent
		b.base[idx] = 0
		return int32(idx)
	}

	codes := b.childCodes(parent)
	have := false
	for _, c := range codes {
		if c == code {
			have = true
			break
		}
	}
	if !have {
		codes = append(codes, code)
	}
	newBase := b.findBase(parent, codes)
	b.relocate(parent, newBase)

	idx = int(newBase) + int(code)
	b.grow(idx + 1)
	b.check[idx] = parent
	b.base[idx] = 0
	return int32(idx)
}

// Add inserts key with the given word id. Re-adding a key overwrites its id.
func (b *Builder) Add(key string, id uint16) error {
	if key == "" {
		return ErrEmptyKey
	}
	if id >= IDNone-1 {
		// 0xFFFE and 0xFFFF are reserved sentinel ids.
		return ErrIDReserved
	}
	cur := int32(root)
	for i := 0; i < len(key); i++ {
		cur = b.ensure(cur, key[i])
	}
	term := b.ensure(cur, 0)
	b.base[term] = -(int32(id) + 1)
	return nil
}

// Build freezes the arrays into a read-only Trie. The builder must not be
// used afterwards.
func (b *Builder) Build() *Trie {
	return &Trie{base: b.base, check: b.check}
}
