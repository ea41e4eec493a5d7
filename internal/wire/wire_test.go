package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func mustDecodeDocument(t *testing.T, b []byte) Document {
	t.Helper()
	d, err := DecodeDocument(b)
	if err != nil {
		t.Fatalf("DecodeDocument error: %v", err)
	}
	return d
}

func TestDocumentRTEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		entry   byte
		srcLen  int
		payload []byte
	}{
		{0, 0, nil},
		{1, 42, []byte("hello")},
		{2, 1 << 20, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		sum := SourceSum(tc.payload)
		enc := EncodeDocument(tc.entry, tc.srcLen, sum, tc.payload)
		d := mustDecodeDocument(t, enc)
		if d.SourceSum != sum {
			t.Fatalf("source sum mismatch: got %x want %x", d.SourceSum, sum)
		}
		if d.Entry != tc.entry {
			t.Fatalf("entry mismatch: got %d want %d", d.Entry, tc.entry)
		}
		if int(d.SourceLen) != tc.srcLen {
			t.Fatalf("source length mismatch: got %d want %d", d.SourceLen, tc.srcLen)
		}
		if !bytes.Equal(d.Payload, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", d.Payload, tc.payload)
		}
	}
}

func TestDocumentRejectsTrailingBytes(t *testing.T) {
	enc := EncodeDocument(1, 3, SourceSum(nil), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := DecodeDocument(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestDocumentCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeDocument(1, 10, SourceSum([]byte("0123456789")), []byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := DecodeDocument(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := DecodeDocument(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// wrong kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = kindTree + 1
	if _, err := DecodeDocument(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// plen too large (announce more than available)
	// plen is at offset 51..54 (4 magic +1 ver +1 kind +1 entry +4 srclen +32 srcsum +8 sum)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[51:55], uint32(len("abc")+1))
	if _, err := DecodeDocument(tooLong); err == nil {
		t.Fatalf("expected error on plen beyond buffer")
	}

	// truncated buffer
	if _, err := DecodeDocument(enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}

	// header only
	if _, err := DecodeDocument(enc[:hdrLen-1]); err == nil {
		t.Fatalf("expected error on short header")
	}
}

func TestDocumentChecksum(t *testing.T) {
	enc := EncodeDocument(1, 10, SourceSum([]byte("0123456789")), []byte("abc"))
	flipped := append([]byte(nil), enc...)
	flipped[len(flipped)-1] ^= 0x01
	if _, err := DecodeDocument(flipped); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt on payload bit flip, got %v", err)
	}
}

func TestDocumentZeroCopyPayload(t *testing.T) {
	enc := EncodeDocument(0, 1, SourceSum([]byte("Z")), []byte("Z"))
	d := mustDecodeDocument(t, enc)
	if len(d.Payload) != 1 {
		t.Fatalf("unexpected payload len")
	}
	// mutate payload slice. should mutate underlying enc bytes (zero-copy)
	d.Payload[0] = 'Q'
	if enc[len(enc)-1] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}

func TestDocumentSourceSum(t *testing.T) {
	a := SourceSum([]byte(`{"a":1}`))
	b := SourceSum([]byte(`{"a":2}`))
	if a == b {
		t.Fatalf("expected distinct digests")
	}
	enc := EncodeDocument(1, 7, a, []byte("p"))
	// srcsum starts at offset 11
	if !bytes.Equal(enc[11:11+SumLen], a[:]) {
		t.Fatalf("source sum not at expected offset")
	}
	flipped := append([]byte(nil), enc...)
	flipped[11] ^= 0x01
	d := mustDecodeDocument(t, flipped)
	if d.SourceSum == a {
		t.Fatalf("expected flipped source sum to be reported as is")
	}
}
