package storeregistry

import (
	"flag"
	"slices"
	"testing"

	"leptonweight.io/lw/storage"
)

type recorded struct {
	storage.MultiStore
	dir string
}

func recordingBackend(name string, usage Usage) Backend {
	return Backend{
		Name:    name,
		Usage:   usage,
		Options: []Option{{Key: name + "-dir", Default: "/default", Help: "Directory"}},
		Open: func(s Settings) (storage.TableStore, func() error, error) {
			return &recorded{dir: s.Get(name + "-dir")}, nil, nil
		},
	}
}

func TestRegisterRejectsIncomplete(t *testing.T) {
	var r Registry
	if err := r.Register(Backend{}); err == nil {
		t.Fatal("empty backend: expected error")
	}
	b := recordingBackend("x", UsageLibrary)
	b.Open = nil
	if err := r.Register(b); err == nil {
		t.Fatal("missing Open: expected error")
	}
	b = recordingBackend("x", 0)
	if err := r.Register(b); err == nil {
		t.Fatal("missing Usage: expected error")
	}
	if err := r.Register(recordingBackend("x", UsageLibrary)); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(recordingBackend("x", UsageLibrary)); err == nil {
		t.Fatal("duplicate: expected error")
	}
}

func TestUsageFiltering(t *testing.T) {
	var r Registry
	r.Register(recordingBackend("lib", UsageLibrary))
	r.Register(recordingBackend("both", UsageLibrary|UsageDaemon))
	r.Register(recordingBackend("daemon", UsageDaemon))

	var names []string
	for _, b := range r.Backends(UsageLibrary) {
		names = append(names, b.Name)
	}
	if !slices.Equal(names, []string{"both", "lib"}) {
		t.Fatalf("library backends: %v", names)
	}
	if _, _, err := r.OpenConfig("daemon", UsageLibrary, nil); err == nil {
		t.Fatal("daemon backend opened for library usage")
	}
	if _, _, err := r.OpenConfig("nope", UsageLibrary, nil); err == nil {
		t.Fatal("unknown backend opened")
	}
}

func TestSettingsDefaults(t *testing.T) {
	var r Registry
	r.Register(recordingBackend("fs", UsageLibrary))

	st, _, err := r.OpenConfig("fs", UsageLibrary, nil)
	if err != nil {
		t.Fatalf("OpenConfig: %v", err)
	}
	if got := st.(*recorded).dir; got != "/default" {
		t.Fatalf("default dir: %q", got)
	}
	st, _, _ = r.OpenConfig("fs", UsageLibrary, map[string]string{"fs-dir": "/tables"})
	if got := st.(*recorded).dir; got != "/tables" {
		t.Fatalf("configured dir: %q", got)
	}
}

func TestFlags(t *testing.T) {
	var r Registry
	r.Register(recordingBackend("fs", UsageLibrary))
	r.Register(recordingBackend("srv", UsageDaemon))

	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	r.BindFlags(fs, UsageLibrary)
	if fs.Lookup("srv-dir") != nil {
		t.Fatal("daemon option bound for library usage")
	}
	if err := fs.Parse([]string{"-fs-dir", "/flag"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	st, _, err := r.OpenFlags("fs", UsageLibrary)
	if err != nil {
		t.Fatalf("OpenFlags: %v", err)
	}
	if got := st.(*recorded).dir; got != "/flag" {
		t.Fatalf("flag dir: %q", got)
	}
}

func TestRequire(t *testing.T) {
	s := Settings{values: map[string]string{"a": " x "}}
	if v, err := s.Require("a"); err != nil || v != "x" {
		t.Fatalf("Require(a) = %q, %v", v, err)
	}
	if _, err := s.Require("b"); err == nil {
		t.Fatal("Require(b): expected error")
	}
}
