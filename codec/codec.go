package codec

import (
	"github.com/unkn0wn-root/typejson"
	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

func engineOrDefault(en *typejson.Engine) *typejson.Engine {
	if en == nil {
		return typejson.Default()
	}
	return en
}

// toTree and fromTree are the typed side of the binary codecs. A V that is
// already a jsonvalue.Value passes through both unchanged.
func toTree[V any](en *typejson.Engine, v V) (jsonvalue.Value, error) {
	return engineOrDefault(en).ToValue(v)
}

func fromTree[V any](en *typejson.Engine, tree jsonvalue.Value) (V, error) {
	return typejson.DeserializeWith[V](engineOrDefault(en), tree)
}
