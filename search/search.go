// Package search discovers capture files under a root URI for bulk
// offline conversion, walking local filesystems or object stores
// transparently via TileDB's VFS abstraction.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// An internal general purpose trawling function. The basename is only
// matched with the pattern, eg ("*.pcap", "capture_20260730_153000.pcap").
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) []string {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		panic(err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			panic(err)
		}

		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items = trawl(vfs, pattern, dir, items)
	}

	return items
}

// FindCaptures recursively searches for packet-capture files under a given
// URI, matching either of the ".pcap"/".pcapng" extensions. Uses the
// TileDB Go bindings purely as a URI-abstracted directory walker, so the
// same call works against a local path or an object-store URI; configUri
// names a TileDB config file for stores requiring credentials, empty for
// a generic local config.
func FindCaptures(uri string, configUri string) []string {
	var (
		config *tiledb.Config
		err    error
	)

	if configUri == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			panic(err)
		}
	} else {
		config, err = tiledb.LoadConfig(configUri)
		if err != nil {
			panic(err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		panic(err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		panic(err)
	}
	defer vfs.Free()

	items := make([]string, 0)
	for _, pattern := range []string{"*.pcap", "*.pcapng"} {
		items = trawl(vfs, pattern, uri, items)
	}

	return items
}
