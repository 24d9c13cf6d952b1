package toy

import (
	"fmt"

	"github.com/ardnew/softportal/pkg"
)

// BlockSize is the addressable unit of a toy image.
const BlockSize = 16

// DefaultSize is the image size of a standard figurine (64 blocks).
const DefaultSize = 1024

// Toy is the in-memory image of one figurine, loaded from a Store.
// A Toy is owned by exactly one slot and is not safe for concurrent use.
type Toy struct {
	key   string
	data  []byte
	dirty bool
	store Store
}

// Load reads the image stored under key.
func Load(store Store, key string) (*Toy, error) {
	data, err := store.Load(key)
	if err != nil {
		return nil, fmt.Errorf("load toy %q: %w", key, err)
	}
	if len(data) == 0 || len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("load toy %q: %d bytes: %w", key, len(data), pkg.ErrToyCorrupt)
	}
	return &Toy{key: key, data: data, store: store}, nil
}

// Blank returns a zeroed image of size bytes, rounded up to whole blocks.
func Blank(size int) []byte {
	if size <= 0 {
		size = DefaultSize
	}
	blocks := (size + BlockSize - 1) / BlockSize
	return make([]byte, blocks*BlockSize)
}

// Key returns the backing-storage key.
func (t *Toy) Key() string {
	return t.key
}

// Len returns the image length in bytes.
func (t *Toy) Len() int {
	return len(t.data)
}

// Blocks returns the number of addressable blocks.
func (t *Toy) Blocks() int {
	return len(t.data) / BlockSize
}

// Dirty reports whether the image has unflushed writes.
func (t *Toy) Dirty() bool {
	return t.dirty
}

// ReadBlock copies block index into buf.
// Returns the number of bytes copied (BlockSize).
func (t *Toy) ReadBlock(index int, buf []byte) (int, error) {
	offset, err := t.offset(index)
	if err != nil {
		return 0, err
	}
	if len(buf) < BlockSize {
		return 0, pkg.ErrBufferTooSmall
	}
	return copy(buf, t.data[offset:offset+BlockSize]), nil
}

// WriteBlock replaces block index with block and marks the image dirty.
// The write is applied completely or not at all.
func (t *Toy) WriteBlock(index int, block []byte) error {
	offset, err := t.offset(index)
	if err != nil {
		return err
	}
	if len(block) != BlockSize {
		return fmt.Errorf("write block %d: %d bytes: %w", index, len(block), pkg.ErrInvalidParameter)
	}
	copy(t.data[offset:offset+BlockSize], block)
	t.dirty = true
	return nil
}

// Flush writes the image back to its store if it is dirty.
// The image stays dirty when the store rejects the write.
func (t *Toy) Flush() error {
	if !t.dirty {
		return nil
	}
	if err := t.store.Save(t.key, t.data); err != nil {
		return fmt.Errorf("flush toy %q: %w", t.key, err)
	}
	t.dirty = false
	pkg.LogDebug(pkg.ComponentToy, "toy flushed", "key", t.key, "bytes", len(t.data))
	return nil
}

// offset returns the byte offset of block index after bounds checking.
func (t *Toy) offset(index int) (int, error) {
	if index < 0 || index*BlockSize+BlockSize > len(t.data) {
		return 0, fmt.Errorf("block %d of %d: %w", index, t.Blocks(), pkg.ErrBlockOutOfRange)
	}
	return index * BlockSize, nil
}
