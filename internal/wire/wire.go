// Package wire frames cached documents so that foreign, truncated or stale
// entries are detected before their payload is decoded.
package wire

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	version  byte = 2
	kindTree byte = 1

	// SumLen is the size of a source digest.
	SumLen = sha256.Size

	hdrLen = 4 + 1 + 1 + 1 + 4 + SumLen + 8 + 4
)

var (
	ErrCorrupt = errors.New("typejson: corrupt cache entry")
	magic4     = [...]byte{'T', 'J', 'S', 'N'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Document is a decoded frame. Payload aliases the input buffer.
type Document struct {
	Entry     byte         // parser entry the tree was produced with
	SourceLen uint32       // length of the JSON text the tree was parsed from
	SourceSum [SumLen]byte // SourceSum of that text
	Payload   []byte       // codec-encoded tree
}

// SourceSum digests the JSON text a tree is parsed from. Cache keys only
// carry a 64-bit hash; the digest tells colliding texts apart.
func SourceSum(text []byte) [SumLen]byte {
	return sha256.Sum256(text)
}

// EncodeDocument frames an encoded tree:
//
//	magic(4) | ver(1) | kind(1=tree) | entry(1) | srclen(u32 be) | srcsum(32) | sum(u64 be) | plen(u32 be) | payload(plen)
//
// sum is the xxhash64 of payload.
func EncodeDocument(entry byte, srcLen int, srcSum [SumLen]byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindTree)
	buf.WriteByte(entry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint32(u4[:], uint32(srcLen))
	buf.Write(u4[:])
	buf.Write(srcSum[:])

	binary.BigEndian.PutUint64(u8[:], xxhash.Sum64(payload))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeDocument validates a frame and returns its fields. Trailing bytes, a
// bad checksum or any header mismatch yield ErrCorrupt.
func DecodeDocument(b []byte) (Document, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version || b[5] != kindTree {
		return Document{}, ErrCorrupt
	}

	d := Document{Entry: b[6]}
	off := 7

	d.SourceLen = binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	copy(d.SourceSum[:], b[off:off+SumLen])
	off += SumLen

	sum := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen != len(b)-off {
		return Document{}, ErrCorrupt
	}

	d.Payload = b[off:]
	if xxhash.Sum64(d.Payload) != sum {
		return Document{}, ErrCorrupt
	}
	return d, nil
}
