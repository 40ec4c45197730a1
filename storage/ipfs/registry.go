package ipfs

import (
	"os"

	"leptonweight.io/lw/storage"
	"leptonweight.io/lw/storage/storeregistry"
)

func init() {
	storeregistry.MustRegister(storeregistry.Backend{
		Name:        "ipfs",
		Description: "Local IPFS repository through the Kubo CLI",
		Usage:       storeregistry.UsageLibrary | storeregistry.UsageDaemon,
		Options: []storeregistry.Option{
			{Key: "ipfs-bin", Default: "ipfs", Help: "Path to the ipfs binary"},
			{Key: "ipfs-path", Help: "IPFS_PATH override"},
		},
		Open: func(s storeregistry.Settings) (storage.TableStore, func() error, error) {
			return New(options(s.Get("ipfs-bin"), s.Get("ipfs-path"))), nil, nil
		},
	})
}

func options(bin, repo string) Options {
	opts := Options{Bin: bin}
	if repo != "" {
		opts.Env = append(os.Environ(), "IPFS_PATH="+repo)
	}
	return opts
}
