// Package lic reads and writes LeptonInjector configuration streams.
//
// A stream is a sequence of framed blocks:
//
//	[u64 payload length][u64 name length][name][u8 version][payload]
//
// All integers are little-endian. Injection blocks embed two serialized
// spline tables; on decode those blobs are moved to a storage.TableStore and
// the block keeps only their content-addressed tableid.Ref. Encode reverses
// the process by fetching the blobs back from the store.
package lic

import (
	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/tableid"
)

// Wire names of the known block kinds.
const (
	NameEnumDef = "EnumDef"
	NameVolume  = "VolumeInjectionConfiguration"
	NameRanged  = "RangedInjectionConfiguration"
)

// BlockKind enumerates the block variants.
type BlockKind uint8

const (
	KindEnumDef BlockKind = iota + 1
	KindVolume
	KindRanged
)

func (k BlockKind) String() string {
	switch k {
	case KindEnumDef:
		return NameEnumDef
	case KindVolume:
		return NameVolume
	case KindRanged:
		return NameRanged
	}
	return "unknown"
}

// Block is one configuration block. The set of implementations is closed:
// *EnumDef, *VolumeConfig and *RangedConfig.
type Block interface {
	BlockKind() BlockKind
	BlockVersion() uint8
	sealed()
}

// EnumEntry is one symbolic name of an enumeration.
type EnumEntry struct {
	Name  string
	Value int64
}

// EnumDef records an enumeration used by the writer, such as the particle
// type codes. Entries keep their stream order.
type EnumDef struct {
	Version uint8
	Name    string
	Entries []EnumEntry
}

func (*EnumDef) BlockKind() BlockKind  { return KindEnumDef }
func (b *EnumDef) BlockVersion() uint8 { return b.Version }
func (*EnumDef) sealed()               {}

// Lookup returns the value of the named entry.
func (b *EnumDef) Lookup(name string) (int64, bool) {
	for _, e := range b.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return 0, false
}

// InjectionConfig holds the generation settings shared by volume and ranged
// injection. Angles are in radians, energies in GeV, lengths in meters.
type InjectionConfig struct {
	Events        uint32
	EnergyMin     float64
	EnergyMax     float64
	PowerlawIndex float64
	AzimuthMin    float64
	AzimuthMax    float64
	ZenithMin     float64
	ZenithMax     float64
	FinalType0    particle.Type
	FinalType1    particle.Type

	DifferentialCrossSection tableid.Ref
	TotalCrossSection        tableid.Ref

	Radius float64
}

// FinalState returns the configured final-state pair.
func (c InjectionConfig) FinalState() [2]particle.Type {
	return [2]particle.Type{c.FinalType0, c.FinalType1}
}

// VolumeConfig injects vertices uniformly inside a cylinder.
type VolumeConfig struct {
	Version uint8
	InjectionConfig
	Height float64
}

func (*VolumeConfig) BlockKind() BlockKind  { return KindVolume }
func (b *VolumeConfig) BlockVersion() uint8 { return b.Version }
func (*VolumeConfig) sealed()               {}

// RangedConfig injects along lines through a disk, extending upstream by the
// charged-lepton range.
type RangedConfig struct {
	Version uint8
	InjectionConfig
	Length float64
}

func (*RangedConfig) BlockKind() BlockKind  { return KindRanged }
func (b *RangedConfig) BlockVersion() uint8 { return b.Version }
func (*RangedConfig) sealed()               {}

// Injection returns the injection settings of b, or false for enum blocks.
func Injection(b Block) (InjectionConfig, bool) {
	switch v := b.(type) {
	case *VolumeConfig:
		return v.InjectionConfig, true
	case *RangedConfig:
		return v.InjectionConfig, true
	case *EnumDef:
		return InjectionConfig{}, false
	}
	return InjectionConfig{}, false
}

// Clone returns a deep copy of b.
func Clone(b Block) Block {
	switch v := b.(type) {
	case *EnumDef:
		c := *v
		c.Entries = append([]EnumEntry(nil), v.Entries...)
		return &c
	case *VolumeConfig:
		c := *v
		return &c
	case *RangedConfig:
		c := *v
		return &c
	}
	return nil
}

// TableRefs lists the distinct tables referenced by blocks, in first-seen order.
func TableRefs(blocks []Block) []tableid.Ref {
	seen := make(map[tableid.Ref]struct{})
	var out []tableid.Ref
	add := func(r tableid.Ref) {
		if !r.Defined() {
			return
		}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, b := range blocks {
		if c, ok := Injection(b); ok {
			add(c.DifferentialCrossSection)
			add(c.TotalCrossSection)
		}
	}
	return out
}
