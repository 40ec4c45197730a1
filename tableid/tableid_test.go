package tableid

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"
)

func TestSumMatchesSHA512Hex(t *testing.T) {
	data := []byte("dsdxdy_nu_CC_iso")
	sum := sha512.Sum512(data)
	want := hex.EncodeToString(sum[:]) + ".fits"

	got := Sum(data)
	if got.Name() != want {
		t.Fatalf("Name: got %s want %s", got.Name(), want)
	}
	if !got.Verify(data) {
		t.Fatalf("Verify: expected true")
	}
	if got.Verify([]byte("other")) {
		t.Fatalf("Verify: expected false for other bytes")
	}
}

func TestParse(t *testing.T) {
	ref := Sum([]byte("sigma_nu_CC_iso"))

	for _, in := range []string{ref.Name(), ref.Hex(), strings.ToUpper(ref.Hex())} {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != ref {
			t.Fatalf("Parse(%q): got %s want %s", in, got, ref)
		}
	}

	for _, bad := range []string{"", "abc.fits", strings.Repeat("z", 128) + ".fits"} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q): expected error", bad)
		}
	}
}

func TestCIDRoundTrip(t *testing.T) {
	ref := Sum([]byte("table bytes"))
	id, err := ref.CID()
	if err != nil {
		t.Fatalf("CID: %v", err)
	}
	back, err := FromCID(id)
	if err != nil {
		t.Fatalf("FromCID: %v", err)
	}
	if back != ref {
		t.Fatalf("FromCID: got %s want %s", back, ref)
	}

	var undef Ref
	if undef.Defined() {
		t.Fatalf("zero Ref should be undefined")
	}
	if _, err := undef.CID(); err == nil {
		t.Fatalf("CID of undefined ref should fail")
	}
}
