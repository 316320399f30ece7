// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"bytes"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
)

type entry struct {
	name       string
	size       int64
	compressed []byte
}

// Builder collects compressed entries and writes them out as an
// archive. Archives cannot be appended to once written.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []entry
}

// NewBuilder creates a Builder. The Index of header is filled by WriteTo.
func NewBuilder(header Header) *Builder {
	header.Index = nil
	if header.Version == 0 {
		header.Version = Version
	}
	return &Builder{header: header}
}

// Add compresses data and stores it under name. It is safe to use
// concurrently.
func (b *Builder) Add(name string, data []byte) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compress %s", name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.name == name {
			return errors.Newf("duplicate entry %s", name)
		}
	}
	b.entries = append(b.entries, entry{
		name:       name,
		size:       int64(len(data)),
		compressed: compressed.Bytes(),
	})
	return nil
}

// Len returns the number of entries added
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.entries)
}

// WriteTo writes the archive: magic, header size, gob encoded header
// and the compressed entries in the order they were added.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	var offset int64
	for _, e := range b.entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.compressed)),
		})
		offset += int64(len(e.compressed))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "encode header")
	}

	var written int64
	for _, part := range [][]byte{Magic[:], int64ToBinary(int64(len(rawHeader))), rawHeader} {
		n, err := w.Write(part)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	for _, e := range b.entries {
		n, err := w.Write(e.compressed)
		written += int64(n)
		if err != nil {
			return written, errors.Wrapf(err, "write %s", e.name)
		}
	}
	return written, nil
}
