//go:build amd64 && (linux || windows || darwin)

package fast

import (
	"github.com/unkn0wn-root/typejson/parser"
	"github.com/unkn0wn-root/typejson/parser/sonic"
)

// New returns the fastest backend for this platform.
func New() parser.Parser {
	return sonic.New(sonic.DefaultConfig())
}

func Type() BackendType {
	return BackendSonic
}
