package lic

import (
	"sort"

	"golang.org/x/crypto/sha3"
)

// MergeKey fingerprints everything about a block except its event count.
// Two blocks merge iff their keys are equal.
type MergeKey [32]byte

// KeyOf returns the merge key of b.
//
// Floating-point fields are compared by bit pattern, so 0 and -0 differ and
// a NaN equals itself. Enum entries are compared as a set.
func KeyOf(b Block) MergeKey {
	var w writer
	w.u8(uint8(b.BlockKind()))
	w.u8(b.BlockVersion())
	switch v := b.(type) {
	case *EnumDef:
		w.str(v.Name)
		entries := append([]EnumEntry(nil), v.Entries...)
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Name != entries[j].Name {
				return entries[i].Name < entries[j].Name
			}
			return entries[i].Value < entries[j].Value
		})
		w.u32(uint32(len(entries)))
		for _, e := range entries {
			w.str(e.Name)
			w.i64(e.Value)
		}
	case *VolumeConfig:
		keyInjection(&w, v.InjectionConfig)
		w.f64(v.Height)
	case *RangedConfig:
		keyInjection(&w, v.InjectionConfig)
		w.f64(v.Length)
	}
	return sha3.Sum256(w.buf)
}

func keyInjection(w *writer, c InjectionConfig) {
	for _, f := range []float64{
		c.EnergyMin, c.EnergyMax, c.PowerlawIndex,
		c.AzimuthMin, c.AzimuthMax, c.ZenithMin, c.ZenithMax, c.Radius,
	} {
		w.f64(f)
	}
	w.i32(int32(c.FinalType0))
	w.i32(int32(c.FinalType1))
	w.str(c.DifferentialCrossSection.Hex())
	w.str(c.TotalCrossSection.Hex())
}

// SameConfiguration reports whether a and b describe the same generation
// settings and would be combined by Merge.
func SameConfiguration(a, b Block) bool {
	if a == nil || b == nil {
		return false
	}
	return KeyOf(a) == KeyOf(b)
}

// combine returns a copy of left whose event count includes right's.
// Enum definitions only merge when identical, so left is returned as is.
func combine(left, right Block) Block {
	out := Clone(left)
	switch v := out.(type) {
	case *VolumeConfig:
		r := right.(*VolumeConfig)
		v.Events += r.Events
	case *RangedConfig:
		r := right.(*RangedConfig)
		v.Events += r.Events
	case *EnumDef:
	}
	return out
}

// mergePair matches every left block against the first remaining right block
// with the same key. The result lists merged blocks, then unmatched left
// blocks, then unmatched right blocks.
func mergePair(left, right []Block) []Block {
	var merged, leftover []Block
	remaining := right
	for _, l := range left {
		k := KeyOf(l)
		match := -1
		for i, r := range remaining {
			if KeyOf(r) == k {
				match = i
				break
			}
		}
		if match < 0 {
			leftover = append(leftover, l)
			continue
		}
		merged = append(merged, combine(l, remaining[match]))
		next := make([]Block, 0, len(remaining)-1)
		next = append(next, remaining[:match]...)
		remaining = append(next, remaining[match+1:]...)
	}
	out := make([]Block, 0, len(merged)+len(leftover)+len(remaining))
	out = append(out, merged...)
	out = append(out, leftover...)
	return append(out, remaining...)
}

// Merge combines blocks with equal MergeKeys, summing their event counts.
//
// Blocks are reduced as a balanced tree: singleton lists are merged in
// adjacent pairs until one list remains. The input is not modified. Output
// order places merged blocks before unmatched ones at every level.
func Merge(blocks []Block) []Block {
	if len(blocks) == 0 {
		return nil
	}
	lists := make([][]Block, len(blocks))
	for i, b := range blocks {
		lists[i] = []Block{Clone(b)}
	}
	for len(lists) > 1 {
		next := make([][]Block, 0, (len(lists)+1)/2)
		for i := 0; i < len(lists); i += 2 {
			if i+1 == len(lists) {
				next = append(next, lists[i])
				continue
			}
			next = append(next, mergePair(lists[i], lists[i+1]))
		}
		lists = next
	}
	return lists[0]
}

// TotalEvents sums the event counts of the injection blocks.
func TotalEvents(blocks []Block) uint64 {
	var n uint64
	for _, b := range blocks {
		if c, ok := Injection(b); ok {
			n += uint64(c.Events)
		}
	}
	return n
}
