// Package bundle moves spline tables between table stores as one TAR stream.
//
// A bundle holds each table as "tables/<hex>.fits" and optionally an
// index.json naming them. It lets cross-section tables extracted on one
// machine be weighted against on another without the configuration files.
package bundle

import (
	"archive/tar"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/tableid"
)

// FormatVersion is written into index.json.
const FormatVersion = 1

const (
	indexName = "index.json"
	tablesDir = "tables/"
)

// ExportOptions controls Export.
type ExportOptions struct {
	// Labels names tables for humans, such as "nu_CC.total". Informational only.
	Labels map[string]tableid.Ref
	// IncludeIndex appends index.json after the tables.
	IncludeIndex bool
}

type index struct {
	Version   int          `json:"version"`
	Multihash string       `json:"multihash"`
	Tables    []indexTable `json:"tables"`
	Labels    []indexLabel `json:"labels,omitempty"`
}

type indexTable struct {
	Name string `json:"name"`
	CID  string `json:"cid"`
	Size int    `json:"size"`
}

type indexLabel struct {
	Name  string `json:"name"`
	Table string `json:"table"`
}

// Export writes the distinct tables of refs to w. Entries are sorted and
// headers carry fixed metadata, so equal table sets give equal bytes.
func Export(w io.Writer, store storage.TableStore, refs []tableid.Ref, opts ExportOptions) error {
	if store == nil {
		return errors.New("bundle: nil store")
	}
	for _, ref := range refs {
		if !ref.Defined() {
			return storage.ErrInvalidRef
		}
	}
	idx := index{Version: FormatVersion, Multihash: "sha2-512"}
	labels, err := sortedLabels(opts.Labels)
	if err != nil {
		return err
	}
	idx.Labels = labels

	sorted := slices.Clone(refs)
	slices.SortFunc(sorted, func(a, b tableid.Ref) int { return strings.Compare(a.Name(), b.Name()) })
	sorted = slices.Compact(sorted)

	tw := tar.NewWriter(w)
	err = writeTables(tw, store, sorted, &idx)
	if err == nil && opts.IncludeIndex {
		err = writeIndex(tw, idx)
	}
	if cerr := tw.Close(); err == nil {
		err = cerr
	}
	return err
}

func sortedLabels(labels map[string]tableid.Ref) ([]indexLabel, error) {
	var out []indexLabel
	for name, ref := range labels {
		if name == "" {
			return nil, errors.New("bundle: empty label")
		}
		if !ref.Defined() {
			return nil, storage.ErrInvalidRef
		}
		out = append(out, indexLabel{Name: name, Table: ref.Name()})
	}
	slices.SortFunc(out, func(a, b indexLabel) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func writeTables(tw *tar.Writer, store storage.TableStore, refs []tableid.Ref, idx *index) error {
	for _, ref := range refs {
		data, err := store.Get(ref)
		if err != nil {
			return fmt.Errorf("bundle: %s: %w", ref.Name(), err)
		}
		if !ref.Verify(data) {
			return storage.ErrDigestMismatch
		}
		id, err := ref.CID()
		if err != nil {
			return err
		}
		if err := writeEntry(tw, tablesDir+ref.Name(), data); err != nil {
			return err
		}
		idx.Tables = append(idx.Tables, indexTable{Name: ref.Name(), CID: id.String(), Size: len(data)})
	}
	return nil
}

func writeIndex(tw *tar.Writer, idx index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return writeEntry(tw, indexName, append(data, '\n'))
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	err := tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(data)),
		ModTime:  time.Unix(0, 0).UTC(),
		Format:   tar.FormatPAX,
	})
	if err != nil {
		return err
	}
	_, err = tw.Write(data)
	return err
}

// ImportOptions controls ImportWithOptions.
type ImportOptions struct {
	// IgnoreUnknown skips entries that are neither tables nor the index
	// instead of failing.
	IgnoreUnknown bool
}

// Import is ImportWithOptions with default options.
func Import(r io.Reader, store storage.TableStore) ([]tableid.Ref, error) {
	return ImportWithOptions(r, store, ImportOptions{})
}

// ImportWithOptions stores every table of the bundle read from r and returns
// their refs in bundle order. A table whose bytes do not hash to its entry
// name aborts the import.
func ImportWithOptions(r io.Reader, store storage.TableStore, opts ImportOptions) ([]tableid.Ref, error) {
	if store == nil {
		return nil, errors.New("bundle: nil store")
	}
	tr := tar.NewReader(r)
	var refs []tableid.Ref
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return refs, nil
		}
		if err != nil {
			return refs, err
		}
		name, ok := entryPath(hdr.Name)
		if !ok {
			return refs, fmt.Errorf("bundle: bad entry path %q", hdr.Name)
		}
		switch {
		case hdr.Typeflag == tar.TypeReg && name == indexName:
			continue
		case hdr.Typeflag == tar.TypeReg && strings.HasPrefix(name, tablesDir):
			ref, err := importTable(tr, store, strings.TrimPrefix(name, tablesDir))
			if err != nil {
				return refs, err
			}
			if slices.Contains(refs, ref) {
				return refs, fmt.Errorf("bundle: table %s appears twice", ref)
			}
			refs = append(refs, ref)
		case opts.IgnoreUnknown:
			continue
		default:
			return refs, fmt.Errorf("bundle: unexpected entry %s", name)
		}
	}
}

func importTable(r io.Reader, store storage.TableStore, file string) (tableid.Ref, error) {
	ref, err := tableid.Parse(file)
	if err != nil {
		return tableid.Ref{}, storage.ErrInvalidRef
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return tableid.Ref{}, err
	}
	if !ref.Verify(data) {
		return tableid.Ref{}, storage.ErrDigestMismatch
	}
	got, err := store.Put(data)
	if err != nil {
		return tableid.Ref{}, err
	}
	if got != ref {
		return tableid.Ref{}, storage.ErrDigestMismatch
	}
	return ref, nil
}

// entryPath normalizes a TAR entry name and rejects anything that could
// escape the bundle root.
func entryPath(name string) (string, bool) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	name = strings.TrimPrefix(strings.TrimPrefix(name, "./"), "/")
	return name, name != "." && fs.ValidPath(name)
}
