package util

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// DocKey returns the cache key of a JSON document: prefix + ":" + the
// xxhash64 of data as 16 hex chars.
func DocKey(prefix string, data []byte) string {
	h := strconv.FormatUint(xxhash.Sum64(data), 16)
	b := make([]byte, 0, len(prefix)+1+16)
	b = append(b, prefix...)
	b = append(b, ':')
	for i := len(h); i < 16; i++ {
		b = append(b, '0')
	}
	b = append(b, h...)
	return string(b)
}
