package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/unkn0wn-root/typejson"
	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// CBOR is a Codec that writes the JSON tree of V with fxamacker/cbor.
// The zero value is NOT ready to use. Construct with NewCBOR or MustCBOR.
//
// Use deterministic=true for canonical encoding (RFC 8949 Core Deterministic)
// when you need byte-for-byte stable outputs (e.g., hashing/content addressing).
// Otherwise PreferredUnsortedEncOptions are used (sensible defaults).
// Objects come back with their keys sorted.
type CBOR[V any] struct {
	Engine *typejson.Engine

	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR constructs a CBOR codec.
//   - Deterministic is true, uses CoreDetEncOptions (RFC 8949).
//   - Otherwise uses PreferredUnsortedEncOptions (smaller/faster defaults).
//
// Maps decode as map[string]any so they convert back into objects.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	var eo cbor.EncOptions
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	} else {
		eo = cbor.PreferredUnsortedEncOptions()
	}

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := (cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}).DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR is like NewCBOR but panics on error.
// Should not use for prod just handy for package-level variables in tests/examples.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

// Encode converts v to a tree and encodes its native form.
func (c CBOR[V]) Encode(v V) ([]byte, error) {
	tree, err := toTree(c.Engine, v)
	if err != nil {
		return nil, err
	}
	return c.enc.Marshal(tree.Interface())
}

// Decode decodes b and converts the result into a V.
func (c CBOR[V]) Decode(b []byte) (V, error) {
	var x any
	if err := c.dec.Unmarshal(b, &x); err != nil {
		var zero V
		return zero, err
	}
	tree, err := jsonvalue.FromInterface(x)
	if err != nil {
		var zero V
		return zero, err
	}
	return fromTree[V](c.Engine, tree)
}
