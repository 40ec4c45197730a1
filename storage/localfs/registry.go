package localfs

import (
	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/storeregistry"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "localfs",
		Description: "Table directory of <hex>.fits files",
		Usage:       storeregistry.UsageLibrary | storeregistry.UsageDaemon,
		Options:     []storeregistry.Option{{Key: "localfs-dir", Help: "Table directory"}},
		Open: func(s storeregistry.Settings) (storage.TableStore, func() error, error) {
			dir, err := s.Require("localfs-dir")
			if err != nil {
				return nil, nil, err
			}
			st, err := New(dir)
			return st, nil, err
		},
	})
}
