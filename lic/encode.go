package lic

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

type writer struct {
	buf []byte
}

func (w *writer) u8(v uint8)    { w.buf = append(w.buf, v) }
func (w *writer) u32(v uint32)  { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }
func (w *writer) u64(v uint64)  { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }
func (w *writer) i32(v int32)   { w.u32(uint32(v)) }
func (w *writer) i64(v int64)   { w.u64(uint64(v)) }
func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

func (w *writer) blob(b []byte) {
	w.u64(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) str(s string) { w.blob([]byte(s)) }

// Encode serializes blocks in order. Referenced tables are read back from
// store and embedded.
func Encode(blocks []Block, store storage.TableStore) ([]byte, error) {
	var out writer
	for i, b := range blocks {
		payload, err := encodePayload(b, store)
		if err != nil {
			return nil, fmt.Errorf("lic: block %d: %w", i, err)
		}
		out.u64(uint64(len(payload)))
		out.str(b.BlockKind().String())
		out.u8(b.BlockVersion())
		out.buf = append(out.buf, payload...)
	}
	return out.buf, nil
}

// EncodeFile encodes blocks and writes them to path.
func EncodeFile(path string, blocks []Block, store storage.TableStore) error {
	data, err := Encode(blocks, store)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func encodePayload(b Block, store storage.TableStore) ([]byte, error) {
	var w writer
	switch v := b.(type) {
	case *EnumDef:
		w.str(v.Name)
		w.u32(uint32(len(v.Entries)))
		for _, e := range v.Entries {
			w.i64(e.Value)
			w.str(e.Name)
		}
	case *VolumeConfig:
		if err := writeInjection(&w, v.InjectionConfig, store); err != nil {
			return nil, err
		}
		w.f64(v.Height)
	case *RangedConfig:
		if err := writeInjection(&w, v.InjectionConfig, store); err != nil {
			return nil, err
		}
		w.f64(v.Length)
	default:
		return nil, fail(RuleUnknownKind, "cannot encode block of type %T", b)
	}
	return w.buf, nil
}

func writeInjection(w *writer, c InjectionConfig, store storage.TableStore) error {
	diff, err := fetch(store, c.DifferentialCrossSection)
	if err != nil {
		return err
	}
	total, err := fetch(store, c.TotalCrossSection)
	if err != nil {
		return err
	}
	w.u32(c.Events)
	for _, f := range []float64{
		c.EnergyMin, c.EnergyMax, c.PowerlawIndex,
		c.AzimuthMin, c.AzimuthMax, c.ZenithMin, c.ZenithMax,
	} {
		w.f64(f)
	}
	w.i32(int32(c.FinalType0))
	w.i32(int32(c.FinalType1))
	w.blob(diff)
	w.blob(total)
	w.f64(c.Radius)
	return nil
}

func fetch(store storage.TableStore, ref tableid.Ref) ([]byte, error) {
	if store == nil {
		return nil, fail(RuleStoreIdentity, "nil table store")
	}
	data, err := store.Get(ref)
	if err != nil {
		return nil, wrap(RuleTableFetch, err, "fetch table %s", ref.Name())
	}
	return data, nil
}
