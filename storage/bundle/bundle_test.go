package bundle_test

import (
	"archive/tar"
	"bytes"
	"errors"
	"testing"

	"leptonweight.io/lw/lic"
	"leptonweight.io/lw/particle"
	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/bundle"
	"leptonweight.io/lw/storage/localfs"
	"leptonweight.io/lw/tableid"
)

func newStore(t *testing.T) storage.TableStore {
	t.Helper()
	s, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func put(t *testing.T, s storage.TableStore, data string) tableid.Ref {
	t.Helper()
	ref, err := s.Put([]byte(data))
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func rawTar(t *testing.T, name string, typ byte, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: name, Typeflag: typ, Mode: 0o644, Size: int64(len(content))}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExportDeterministic(t *testing.T) {
	s := newStore(t)
	diff := put(t, s, "dsdxdy_nu_CC_iso")
	total := put(t, s, "sigma_nu_CC_iso")
	opts := bundle.ExportOptions{IncludeIndex: true, Labels: map[string]tableid.Ref{"nu_CC.total": total, "nu_CC.diff": diff}}

	var a, b bytes.Buffer
	if err := bundle.Export(&a, s, []tableid.Ref{total, diff, total}, opts); err != nil {
		t.Fatal(err)
	}
	if err := bundle.Export(&b, s, []tableid.Ref{diff, total}, opts); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatal("bundle bytes depend on ref order")
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer
	if err := bundle.Export(&buf, s, []tableid.Ref{{}}, bundle.ExportOptions{}); !errors.Is(err, storage.ErrInvalidRef) {
		t.Fatalf("undefined ref: %v", err)
	}
	opts := bundle.ExportOptions{Labels: map[string]tableid.Ref{"": put(t, s, "x")}}
	if err := bundle.Export(&buf, s, nil, opts); err == nil {
		t.Fatal("empty label: expected error")
	}
	err := bundle.Export(&buf, s, []tableid.Ref{tableid.Sum([]byte("absent"))}, bundle.ExportOptions{})
	if !storage.IsNotFound(err) {
		t.Fatalf("missing table: %v", err)
	}
}

// A configuration decoded on one machine can be re-encoded on another that
// received only the bundle of its tables.
func TestConfigTablesTravelInBundle(t *testing.T) {
	src := newStore(t)
	cfg := lic.InjectionConfig{
		Events:                   1000,
		EnergyMin:                1e2,
		EnergyMax:                1e6,
		PowerlawIndex:            2,
		AzimuthMax:               6.283185307179586,
		ZenithMax:                3.141592653589793,
		FinalType0:               particle.MuMinus,
		FinalType1:               particle.Hadrons,
		DifferentialCrossSection: put(t, src, "differential"),
		TotalCrossSection:        put(t, src, "total"),
		Radius:                   800,
	}
	blocks := []lic.Block{&lic.RangedConfig{Version: 1, InjectionConfig: cfg, Length: 1200}}
	file, err := lic.Encode(blocks, src)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := bundle.Export(&buf, src, lic.TableRefs(blocks), bundle.ExportOptions{IncludeIndex: true}); err != nil {
		t.Fatal(err)
	}
	dst := newStore(t)
	refs, err := bundle.Import(&buf, dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Fatalf("imported %d tables, want 2", len(refs))
	}
	again, err := lic.Encode(blocks, dst)
	if err != nil {
		t.Fatalf("Encode against imported tables: %v", err)
	}
	if !bytes.Equal(again, file) {
		t.Fatal("re-encoded file differs")
	}
}

func TestImportRejectsDigestMismatch(t *testing.T) {
	data := rawTar(t, "tables/"+tableid.Sum([]byte("other")).Name(), tar.TypeReg, []byte("good"))
	if _, err := bundle.Import(bytes.NewReader(data), newStore(t)); !errors.Is(err, storage.ErrDigestMismatch) {
		t.Fatalf("got %v want ErrDigestMismatch", err)
	}
}

func TestImportRejectsEscapingPaths(t *testing.T) {
	for _, name := range []string{"../tables/x", "tables/../../x", "tables//x"} {
		data := rawTar(t, name, tar.TypeReg, []byte("x"))
		if _, err := bundle.Import(bytes.NewReader(data), newStore(t)); err == nil {
			t.Errorf("%q: expected error", name)
		}
	}
}

func TestImportUnknownEntries(t *testing.T) {
	for _, data := range [][]byte{
		rawTar(t, "notes.txt", tar.TypeReg, []byte("hi")),
		rawTar(t, "tables", tar.TypeDir, nil),
	} {
		if _, err := bundle.Import(bytes.NewReader(data), newStore(t)); err == nil {
			t.Fatal("unknown entry: expected error")
		}
		refs, err := bundle.ImportWithOptions(bytes.NewReader(data), newStore(t), bundle.ImportOptions{IgnoreUnknown: true})
		if err != nil || len(refs) != 0 {
			t.Fatalf("IgnoreUnknown: refs=%v err=%v", refs, err)
		}
	}
}
