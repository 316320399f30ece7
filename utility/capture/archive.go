// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// maxHeaderSize bounds the header read from untrusted input
const maxHeaderSize = 16 << 20

// Archive reads entries of an archive. It can be read from concurrently.
type Archive struct {
	reader io.ReaderAt
	header Header
	base   int64
}

// Open reads the header of the archive in r
func Open(r io.ReaderAt) (*Archive, error) {
	magic := make([]byte, MagicLength)
	if _, err := r.ReadAt(magic, 0); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read magic"), ErrFileFormat)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return nil, errors.Mark(errors.Newf("bad magic %q", magic), ErrFileFormat)
	}

	sizeBytes := make([]byte, HeaderSizeLength)
	if _, err := r.ReadAt(sizeBytes, MagicLength); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read header size"), ErrFileFormat)
	}
	headerSize, err := binaryToInt64(sizeBytes)
	if err != nil {
		return nil, err
	}
	if headerSize <= 0 || headerSize > maxHeaderSize {
		return nil, errors.Mark(errors.Newf("header size %d", headerSize), ErrFileFormat)
	}

	headerBytes := make([]byte, headerSize)
	if _, err := r.ReadAt(headerBytes, MagicLength+HeaderSizeLength); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read header"), ErrFileFormat)
	}

	a := &Archive{
		reader: r,
		base:   MagicLength + HeaderSizeLength + headerSize,
	}
	if err := gobDecode(&a.header, headerBytes); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode header"), ErrFileFormat)
	}
	return a, nil
}

// OpenFile memory maps the archive at path. Close the returned
// closer once the archive is no longer used.
func OpenFile(path string) (*Archive, io.Closer, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "mmap %s", path)
	}
	a, err := Open(r)
	if err != nil {
		r.Close()
		return nil, nil, errors.Wrap(err, path)
	}
	return a, r, nil
}

// Header returns the archive header
func (a *Archive) Header() Header {
	return a.header
}

// Names lists the entries in archive order
func (a *Archive) Names() []string {
	names := make([]string, len(a.header.Index))
	for i, e := range a.header.Index {
		names[i] = e.Name
	}
	return names
}

// Open returns a reader decompressing the entry name
func (a *Archive) Open(name string) (io.Reader, error) {
	e, ok := a.find(name)
	if !ok {
		return nil, errors.Newf("no entry %s", name)
	}
	return lz4.NewReader(io.NewSectionReader(a.reader, a.base+e.Offset, e.CompressedSize)), nil
}

// ReadAll decompresses the entry name
func (a *Archive) ReadAll(name string) ([]byte, error) {
	r, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	e, _ := a.find(name)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decompress %s", name), ErrFileFormat)
	}
	if int64(len(data)) != e.Size {
		return nil, errors.Mark(errors.Newf("entry %s is %d bytes, index says %d", name, len(data), e.Size), ErrFileFormat)
	}
	return data, nil
}

func (a *Archive) find(name string) (IndexEntry, bool) {
	for _, e := range a.header.Index {
		if e.Name == name {
			return e, true
		}
	}
	return IndexEntry{}, false
}
