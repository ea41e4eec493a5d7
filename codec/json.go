package codec

import "github.com/unkn0wn-root/typejson"

// JSON is a Codec producing JSON text through a typejson Engine.
// The zero value is ready to use and runs on typejson.Default().
type JSON[V any] struct {
	Engine  *typejson.Engine
	Options typejson.StringifyOptions
}

var _ Codec[struct{}] = JSON[struct{}]{}

func (c JSON[V]) Encode(v V) ([]byte, error) {
	return engineOrDefault(c.Engine).Append(nil, v, c.Options)
}

func (c JSON[V]) Decode(b []byte) (V, error) {
	return typejson.ParseWith[V](engineOrDefault(c.Engine), b)
}
