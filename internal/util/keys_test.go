package util

import (
	"strings"
	"testing"
)

func TestDocKey(t *testing.T) {
	a := DocKey("doc:ns", []byte(`{"a":1}`))
	if !strings.HasPrefix(a, "doc:ns:") || len(a) != len("doc:ns:")+16 {
		t.Fatalf("unexpected key shape %q", a)
	}
	if b := DocKey("doc:ns", []byte(`{"a":1}`)); b != a {
		t.Fatalf("key not deterministic: %q vs %q", a, b)
	}
	if c := DocKey("doc:ns", []byte(`{"a":2}`)); c == a {
		t.Fatalf("distinct documents share key %q", a)
	}
	if e := DocKey("doc:ns", nil); e != "doc:ns:ef46db3751d8e999" {
		t.Fatalf("unexpected key for empty input %q", e)
	}
}
