//go:build !amd64 || (amd64 && !(linux || windows || darwin))

package fast

import (
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/gojson"
)

// New returns the fastest backend for this platform.
func New() parser.Parser {
	return gojson.New()
}

func Type() BackendType {
	return BackendGoJSON
}
