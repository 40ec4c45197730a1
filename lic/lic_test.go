package lic

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/storage/localfs"
	"leptonweight.io/lw/tableid"
)

// stream assembles configuration bytes field by field, independently of writer.
type stream struct{ bytes.Buffer }

func (s *stream) u8(v uint8)    { s.WriteByte(v) }
func (s *stream) u32(v uint32)  { _ = binary.Write(&s.Buffer, binary.LittleEndian, v) }
func (s *stream) u64(v uint64)  { _ = binary.Write(&s.Buffer, binary.LittleEndian, v) }
func (s *stream) i32(v int32)   { _ = binary.Write(&s.Buffer, binary.LittleEndian, v) }
func (s *stream) i64(v int64)   { _ = binary.Write(&s.Buffer, binary.LittleEndian, v) }
func (s *stream) f64(v float64) { s.u64(math.Float64bits(v)) }
func (s *stream) str(v string)  { s.u64(uint64(len(v))); s.WriteString(v) }

func (s *stream) block(name string, version uint8, payload []byte) {
	s.u64(uint64(len(payload)))
	s.str(name)
	s.u8(version)
	s.Write(payload)
}

var (
	diffTable  = []byte("SIMPLE  =                    T / differential cross section")
	totalTable = []byte("SIMPLE  =                    T / total cross section")
)

func enumPayload() []byte {
	var p stream
	p.str("ParticleType")
	p.u32(3)
	for _, e := range []EnumEntry{{"NuMu", 14}, {"MuMinus", 13}, {"Hadrons", -2000001006}} {
		p.i64(e.Value)
		p.str(e.Name)
	}
	return p.Bytes()
}

func injectionPayload(events uint32, geometry float64) []byte {
	var p stream
	p.u32(events)
	for _, f := range []float64{10, 1000, 2, 0, 2 * math.Pi, 0, math.Pi} {
		p.f64(f)
	}
	p.i32(int32(particle.MuMinus))
	p.i32(int32(particle.Hadrons))
	p.u64(uint64(len(diffTable)))
	p.Write(diffTable)
	p.u64(uint64(len(totalTable)))
	p.Write(totalTable)
	p.f64(800)
	p.f64(geometry)
	return p.Bytes()
}

// scenarioFile is an EnumDef followed by a RangedInjectionConfiguration.
func scenarioFile() []byte {
	var s stream
	s.block(NameEnumDef, 1, enumPayload())
	s.block(NameRanged, 1, injectionPayload(1000, 1200))
	return s.Bytes()
}

func newStore(t *testing.T) *localfs.Store {
	t.Helper()
	st, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New: %v", err)
	}
	return st
}

func TestDecode_Scenario(t *testing.T) {
	store := newStore(t)
	blocks, err := Decode(scenarioFile(), store, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	enum, ok := blocks[0].(*EnumDef)
	if !ok {
		t.Fatalf("block 0: expected *EnumDef, got %T", blocks[0])
	}
	if enum.Name != "ParticleType" || len(enum.Entries) != 3 {
		t.Fatalf("unexpected enum: %+v", enum)
	}
	if v, ok := enum.Lookup("Hadrons"); !ok || v != -2000001006 {
		t.Fatalf("Lookup(Hadrons) = %d, %v", v, ok)
	}

	r, ok := blocks[1].(*RangedConfig)
	if !ok {
		t.Fatalf("block 1: expected *RangedConfig, got %T", blocks[1])
	}
	if r.Events != 1000 || r.EnergyMin != 10 || r.EnergyMax != 1000 || r.PowerlawIndex != 2 {
		t.Fatalf("unexpected injection fields: %+v", r.InjectionConfig)
	}
	if r.Radius != 800 || r.Length != 1200 {
		t.Fatalf("unexpected geometry: radius=%v length=%v", r.Radius, r.Length)
	}
	if r.FinalState() != [2]particle.Type{particle.MuMinus, particle.Hadrons} {
		t.Fatalf("unexpected final state: %v", r.FinalState())
	}
	if r.DifferentialCrossSection != tableid.Sum(diffTable) || r.TotalCrossSection != tableid.Sum(totalTable) {
		t.Fatalf("table refs do not address the embedded blobs")
	}

	got, err := os.ReadFile(filepath.Join(store.Root(), r.TotalCrossSection.Name()))
	if err != nil {
		t.Fatalf("read persisted table: %v", err)
	}
	if !bytes.Equal(got, totalTable) {
		t.Fatalf("persisted table bytes differ")
	}
}

func TestEncode_ByteIdenticalRoundTrip(t *testing.T) {
	store := newStore(t)
	in := scenarioFile()
	blocks, err := Decode(in, store, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(blocks, store)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(in, out) {
		t.Fatalf("re-encoded stream differs: %d bytes in, %d bytes out", len(in), len(out))
	}

	again, err := Decode(out, store, Options{})
	if err != nil {
		t.Fatalf("Decode(Encode): %v", err)
	}
	if !reflect.DeepEqual(blocks, again) {
		t.Fatalf("decode(encode(decode(x))) != decode(x)")
	}
}

func TestEncode_VolumeRoundTrip(t *testing.T) {
	store := newStore(t)
	var s stream
	s.block(NameVolume, 2, injectionPayload(500, 1000))
	blocks, err := Decode(s.Bytes(), store, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	v, ok := blocks[0].(*VolumeConfig)
	if !ok {
		t.Fatalf("expected *VolumeConfig, got %T", blocks[0])
	}
	if v.Version != 2 || v.Height != 1000 || v.Events != 500 {
		t.Fatalf("unexpected volume block: %+v", v)
	}
	out, err := Encode(blocks, store)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(out, s.Bytes()) {
		t.Fatalf("volume block did not round-trip")
	}
}

func TestDecode_IdenticalTablesStoredOnce(t *testing.T) {
	store := newStore(t)
	var s stream
	for i := 0; i < 4; i++ {
		s.block(NameRanged, 1, injectionPayload(uint32(100*(i+1)), 1200))
	}
	blocks, err := Decode(s.Bytes(), store, Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	refs := TableRefs(blocks)
	if len(refs) != 2 {
		t.Fatalf("expected 2 distinct tables, got %d", len(refs))
	}
	entries, err := os.ReadDir(store.Root())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var files int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == tableid.Ext {
			files++
		}
	}
	if files != 2 {
		t.Fatalf("expected 2 table files, got %d", files)
	}
}

func TestDecode_UnknownBlock(t *testing.T) {
	var s stream
	s.block(NameEnumDef, 1, enumPayload())
	s.block("SphericalInjectionConfiguration", 1, []byte{1, 2, 3})
	_, err := Decode(s.Bytes(), newStore(t), Options{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsFormatError(err) {
		t.Fatalf("expected format error, got %v", err)
	}
	if RuleID(err) != RuleUnknownBlock {
		t.Fatalf("expected %s, got %q", RuleUnknownBlock, RuleID(err))
	}
}

func TestDecode_Truncated(t *testing.T) {
	full := scenarioFile()
	for _, n := range []int{3, 12, 30, len(full) / 2, len(full) - 1} {
		_, err := Decode(full[:n], newStore(t), Options{})
		if err == nil {
			t.Fatalf("truncated at %d: expected error", n)
		}
		if RuleID(err) != RuleTruncated {
			t.Fatalf("truncated at %d: expected %s, got %v", n, RuleTruncated, err)
		}
	}
}

func TestDecode_NonASCIIName(t *testing.T) {
	var s stream
	s.block("Enum\xffDef", 1, nil)
	_, err := Decode(s.Bytes(), newStore(t), Options{})
	if RuleID(err) != RuleInvalidString {
		t.Fatalf("expected %s, got %v", RuleInvalidString, err)
	}
}

func TestDecode_Empty(t *testing.T) {
	blocks, err := Decode(nil, newStore(t), Options{})
	if err != nil {
		t.Fatalf("Decode(nil): %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
}

func TestEncode_MissingTable(t *testing.T) {
	blocks, err := Decode(scenarioFile(), newStore(t), Options{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	_, err = Encode(blocks, newStore(t))
	if !IsKind(err, KindTable) || RuleID(err) != RuleTableFetch {
		t.Fatalf("expected %s, got %v", RuleTableFetch, err)
	}
}

func TestDecodeFile_EncodeFile(t *testing.T) {
	store := newStore(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "config.lic")
	if err := os.WriteFile(in, scenarioFile(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	blocks, err := DecodeFile(in, store, Options{})
	if err != nil {
		t.Fatalf("DecodeFile: %v", err)
	}
	out := filepath.Join(dir, "copy.lic")
	if err := EncodeFile(out, blocks, store); err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, scenarioFile()) {
		t.Fatalf("file round trip differs")
	}
}
