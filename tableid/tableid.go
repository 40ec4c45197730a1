// Package tableid content-addresses serialized spline tables.
//
// A table is identified by the SHA2-512 digest of its bytes. The canonical
// textual form is the lowercase hex digest followed by Ext, which is also the
// file name under which table stores persist the blob.
package tableid

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Ext is the file extension appended to every table name.
const Ext = ".fits"

const digestHexLen = 128

// Ref names a table by the hex SHA2-512 digest of its bytes.
//
// The zero value is undefined. Ref is comparable and safe to use as a map key.
type Ref struct {
	hex string
}

// Sum returns the Ref of data.
func Sum(data []byte) Ref {
	mh, err := multihash.Sum(data, multihash.SHA2_512, -1)
	if err != nil {
		// multihash.Sum only fails for unknown codes or bad lengths.
		panic(fmt.Sprintf("tableid: sha2-512 multihash: %v", err))
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		panic(fmt.Sprintf("tableid: decode multihash: %v", err))
	}
	return Ref{hex: hex.EncodeToString(dec.Digest)}
}

// Parse accepts either a bare hex digest or a table name ("<hex>.fits").
func Parse(s string) (Ref, error) {
	h := strings.TrimSuffix(strings.TrimSpace(s), Ext)
	if len(h) != digestHexLen {
		return Ref{}, fmt.Errorf("tableid: invalid table name %q", s)
	}
	h = strings.ToLower(h)
	if _, err := hex.DecodeString(h); err != nil {
		return Ref{}, fmt.Errorf("tableid: invalid table name %q: %w", s, err)
	}
	return Ref{hex: h}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Ref {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// Defined reports whether r names a table.
func (r Ref) Defined() bool { return r.hex != "" }

// Hex returns the lowercase hex digest.
func (r Ref) Hex() string { return r.hex }

// Name returns the file name of the table: the hex digest followed by Ext.
func (r Ref) Name() string {
	if r.hex == "" {
		return ""
	}
	return r.hex + Ext
}

func (r Ref) String() string { return r.Name() }

// Digest returns the raw SHA2-512 digest.
func (r Ref) Digest() []byte {
	b, _ := hex.DecodeString(r.hex)
	return b
}

// Multihash returns the sha2-512 multihash encoding of the digest.
func (r Ref) Multihash() (multihash.Multihash, error) {
	if !r.Defined() {
		return nil, fmt.Errorf("tableid: undefined ref")
	}
	return multihash.Encode(r.Digest(), multihash.SHA2_512)
}

// CID returns a CIDv1 using the "raw" multicodec and the sha2-512 multihash.
func (r Ref) CID() (cid.Cid, error) {
	mh, err := r.Multihash()
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, mh), nil
}

// FromCID recovers the Ref from a raw sha2-512 CID.
func FromCID(id cid.Cid) (Ref, error) {
	if !id.Defined() {
		return Ref{}, fmt.Errorf("tableid: undefined cid")
	}
	if id.Prefix().Codec != cid.Raw {
		return Ref{}, fmt.Errorf("tableid: cid %s is not raw", id)
	}
	dec, err := multihash.Decode(id.Hash())
	if err != nil {
		return Ref{}, err
	}
	if dec.Code != multihash.SHA2_512 {
		return Ref{}, fmt.Errorf("tableid: cid %s is not sha2-512", id)
	}
	return Ref{hex: hex.EncodeToString(dec.Digest)}, nil
}

// Verify reports whether data hashes to r.
func (r Ref) Verify(data []byte) bool {
	return r.Defined() && Sum(data) == r
}
