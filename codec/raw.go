package codec

import (
	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/stdjson"
)

// Tree stores a parsed tree as compact JSON text. Parser defaults to the
// encoding/json backed one.
type Tree struct {
	Parser parser.Parser
}

var _ Codec[jsonvalue.Value] = Tree{}

func (Tree) Encode(v jsonvalue.Value) ([]byte, error) { return v.AppendJSON(nil), nil }

func (c Tree) Decode(b []byte) (jsonvalue.Value, error) {
	p := c.Parser
	if p == nil {
		p = stdjson.New()
	}
	return p.Parse(b, parser.EntryFor(b))
}
