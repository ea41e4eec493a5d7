//go:build amd64 && (linux || windows || darwin)

// Package sonic parses with bytedance/sonic. Sonic decodes objects into Go
// maps, so member order is not preserved: keys come back sorted.
package sonic

import (
	"github.com/bytedance/sonic"

	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
)

type Config = sonic.Config

type sonicParser struct {
	api sonic.API
}

var _ parser.Parser = (*sonicParser)(nil)

// DefaultConfig keeps number literals exact and copies strings out of the
// input buffer, since trees may outlive it.
func DefaultConfig() Config {
	return Config{
		UseNumber:  true,
		CopyString: true,
	}
}

func New(config Config) parser.Parser {
	config.UseNumber = true
	return &sonicParser{api: config.Froze()}
}

func (p *sonicParser) Parse(data []byte, entry parser.Entry) (jsonvalue.Value, error) {
	if len(data) == 0 {
		return jsonvalue.Value{}, parser.ErrEmpty
	}
	var raw any
	if err := p.api.Unmarshal(data, &raw); err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := jsonvalue.FromInterface(raw)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if err := parser.CheckEntry(v, entry); err != nil {
		return jsonvalue.Value{}, err
	}
	return v, nil
}
