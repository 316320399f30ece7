// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package capture records what a driver reports about its adapters and
// surface into an lz4 backed archive, and replays it as a driver that
// selection and negotiation run against without a GPU. Every entry in
// the archive is compressed on its own and the index is known before
// any entry is read, so entries can be read concurrently.
package capture

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"

	"github.com/cockroachdb/errors"
)

// ErrFileFormat is returned for anything that is not a capture archive
var ErrFileFormat = errors.New("corrupted or not a capture archive")

// Magic starts every archive
var Magic = [MagicLength]byte{'V', 'K', 'C', '\x00'}

// Sizes of the fixed part of an archive
const (
	MagicLength      = 4
	HeaderSizeLength = 8
)

// Version is the archive version written by Builder
const Version = 1

// IndexEntry describes one entry. Offset is relative to the end
// of the header.
type IndexEntry struct {
	Name           string
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is the archive header
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

func int64ToBinary(num int64) []byte {
	buf := make([]byte, HeaderSizeLength)
	binary.LittleEndian.PutUint64(buf, uint64(num))
	return buf
}

func binaryToInt64(bts []byte) (int64, error) {
	if len(bts) != HeaderSizeLength {
		return 0, errors.Mark(errors.Newf("size field is %d bytes", len(bts)), ErrFileFormat)
	}
	return int64(binary.LittleEndian.Uint64(bts)), nil
}

func gobEncode(data interface{}) ([]byte, error) {
	var encoded bytes.Buffer
	if err := gob.NewEncoder(&encoded).Encode(data); err != nil {
		return nil, err
	}
	return encoded.Bytes(), nil
}

func gobDecode(obj interface{}, bts []byte) error {
	return gob.NewDecoder(bytes.NewReader(bts)).Decode(obj)
}
