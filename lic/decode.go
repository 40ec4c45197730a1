package lic

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// Options configures Decode.
type Options struct {
	// Logger receives debug records for persisted tables. Nil discards.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// reader walks a configuration stream. Every read checks the remaining
// length; a short read is a truncated stream.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) done() bool { return r.pos >= len(r.data) }

func (r *reader) take(n uint64, what string) ([]byte, error) {
	if n > uint64(len(r.data)-r.pos) {
		return nil, failAt(RuleTruncated, r.pos,
			"truncated stream reading %s (need %d bytes, have %d)", what, n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *reader) u8(what string) (uint8, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u32(what string) (uint32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64(what string) (uint64, error) {
	b, err := r.take(8, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *reader) i32(what string) (int32, error) {
	v, err := r.u32(what)
	return int32(v), err
}

func (r *reader) i64(what string) (int64, error) {
	v, err := r.u64(what)
	return int64(v), err
}

func (r *reader) f64(what string) (float64, error) {
	v, err := r.u64(what)
	return math.Float64frombits(v), err
}

func (r *reader) blob(what string) ([]byte, error) {
	n, err := r.u64(what + " length")
	if err != nil {
		return nil, err
	}
	return r.take(n, what)
}

func (r *reader) str(what string) (string, error) {
	b, err := r.blob(what)
	if err != nil {
		return "", err
	}
	for _, c := range b {
		if c > 0x7f {
			return "", failAt(RuleInvalidString, r.pos-len(b), "%s is not ASCII", what)
		}
	}
	return string(b), nil
}

// Decode parses a configuration stream. Embedded tables are written to store
// and replaced by their tableid.Ref. Any unrecognized block name aborts the
// whole decode.
func Decode(data []byte, store storage.TableStore, opts Options) ([]Block, error) {
	if store == nil {
		return nil, fail(RuleStoreIdentity, "nil table store")
	}
	d := &decoder{r: reader{data: data}, store: store, log: opts.logger()}
	var blocks []Block
	for !d.r.done() {
		b, err := d.block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeFile reads and decodes the configuration file at path.
func DecodeFile(path string, store storage.TableStore, opts Options) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	blocks, err := Decode(data, store, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return blocks, nil
}

type decoder struct {
	r     reader
	store storage.TableStore
	log   *slog.Logger
}

func (d *decoder) block() (Block, error) {
	start := d.r.pos
	// The frame length is informational; payloads are self-delimiting.
	if _, err := d.r.u64("block size"); err != nil {
		return nil, err
	}
	name, err := d.r.str("block name")
	if err != nil {
		return nil, err
	}
	version, err := d.r.u8("block version")
	if err != nil {
		return nil, err
	}
	switch name {
	case NameEnumDef:
		return d.enumDef(version)
	case NameVolume:
		c, err := d.injection(name)
		if err != nil {
			return nil, err
		}
		h, err := d.r.f64("height")
		if err != nil {
			return nil, err
		}
		return &VolumeConfig{Version: version, InjectionConfig: c, Height: h}, nil
	case NameRanged:
		c, err := d.injection(name)
		if err != nil {
			return nil, err
		}
		l, err := d.r.f64("length")
		if err != nil {
			return nil, err
		}
		return &RangedConfig{Version: version, InjectionConfig: c, Length: l}, nil
	default:
		return nil, failAt(RuleUnknownBlock, start, "unrecognized block %q", name)
	}
}

func (d *decoder) enumDef(version uint8) (*EnumDef, error) {
	name, err := d.r.str("enum name")
	if err != nil {
		return nil, err
	}
	n, err := d.r.u32("enum size")
	if err != nil {
		return nil, err
	}
	b := &EnumDef{Version: version, Name: name}
	for i := uint32(0); i < n; i++ {
		v, err := d.r.i64("enum value")
		if err != nil {
			return nil, err
		}
		s, err := d.r.str("enum entry name")
		if err != nil {
			return nil, err
		}
		b.Entries = append(b.Entries, EnumEntry{Name: s, Value: v})
	}
	return b, nil
}

// injection reads the payload shared by volume and ranged blocks, up to but
// excluding the trailing geometry field.
func (d *decoder) injection(block string) (InjectionConfig, error) {
	var c InjectionConfig
	var err error
	if c.Events, err = d.r.u32("events"); err != nil {
		return c, err
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"energy_min", &c.EnergyMin},
		{"energy_max", &c.EnergyMax},
		{"powerlaw_index", &c.PowerlawIndex},
		{"azimuth_min", &c.AzimuthMin},
		{"azimuth_max", &c.AzimuthMax},
		{"zenith_min", &c.ZenithMin},
		{"zenith_max", &c.ZenithMax},
	} {
		if *f.dst, err = d.r.f64(f.name); err != nil {
			return c, err
		}
	}
	t0, err := d.r.i32("final_type_0")
	if err != nil {
		return c, err
	}
	t1, err := d.r.i32("final_type_1")
	if err != nil {
		return c, err
	}
	c.FinalType0, c.FinalType1 = particle.Type(t0), particle.Type(t1)

	diff, err := d.r.blob("differential cross section")
	if err != nil {
		return c, err
	}
	total, err := d.r.blob("total cross section")
	if err != nil {
		return c, err
	}
	if c.Radius, err = d.r.f64("radius"); err != nil {
		return c, err
	}
	if c.DifferentialCrossSection, err = d.persist(block, diff); err != nil {
		return c, err
	}
	if c.TotalCrossSection, err = d.persist(block, total); err != nil {
		return c, err
	}
	return c, nil
}

func (d *decoder) persist(block string, data []byte) (tableid.Ref, error) {
	want := tableid.Sum(data)
	existed := d.store.Has(want)
	got, err := d.store.Put(data)
	if err != nil {
		return tableid.Ref{}, wrap(RuleTablePersist, err, "persist table %s", want.Name())
	}
	if got != want {
		return tableid.Ref{}, fail(RuleStoreIdentity, "store returned %s for table %s", got.Name(), want.Name())
	}
	d.log.Debug("cross-section table", "block", block, "table", want.Name(), "bytes", len(data), "reused", existed)
	return want, nil
}
