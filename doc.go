// File: confmux/doc.go

// Package confmux multiplexes an ordered set of key/value configuration
// backends behind a single read/write API.
//
// A Store holds any number of backends, each registered at an integer
// priority. Reads and writes always route to the single highest-priority
// backend; lower-priority backends stay latent until iterated. This is the
// "most-preferred backend is authoritative" model: there is no fallthrough
// to lower layers when the top backend does not hold a key.
//
// Features:
//   - Backend registration with priority ordering (higher wins, ties broken
//     by registration order)
//   - Typed accessors with unit-suffix scaling (10k, 1m, 2g) and lenient
//     boolean parsing (true/yes/on, false/no/off, integer fallback)
//   - Whole-store iteration in priority order, fail-fast, no deduplication
//   - A file backend for TOML, JSON and YAML sources with atomic writes
//   - Structured errors that keep their failure category while accumulating
//     context as they propagate
//
// Quick Start:
//
//	store, err := confmux.OpenFile("app.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	host, err := store.String("server.host")
//	size, err := store.Int64("pack.window")       // "64k" -> 65536
//	debug, err := store.Bool("debug")             // "on" -> true
//
// Layered stores are assembled with Register or the Builder:
//
//	store, err := confmux.NewBuilder().
//	    WithFile("/etc/app/config.toml", 1).
//	    WithFile(localPath, 10).
//	    Build()
//
// Thread Safety:
// All Store and FileBackend operations are guarded by read-write mutexes.
// Concurrent reads proceed in parallel; writes are serialized. Close must
// be called exactly once, after all other calls have completed.
package confmux
