// Package toy stores and edits figurine memory images.
//
// A [Toy] is the in-memory copy of one figurine's data: a byte image whose
// length is a whole number of 16-byte blocks. Images are read and written one
// block at a time; writes only mark the image dirty, and [Toy.Flush] pushes a
// dirty image back to its [Store] in one atomic replace.
//
// # Stores
//
//   - [FileStore]: one raw file per image, replaced via temp file + rename
//   - [SQLiteStore]: one row per image in a SQLite database
//   - [MemoryStore]: map-backed, for tests and dry runs
//
// Which image backs which slot is decided by a [KeyPattern]:
//
//	store, _ := toy.NewFileStore("/var/lib/softportal")
//	t, err := toy.Load(store, toy.KeyPattern("slot-%02d.bin").Key(0))
//	if errors.Is(err, pkg.ErrToyNotFound) {
//	    // Nothing on this slot
//	}
package toy
