// Package stdjson parses with encoding/json's token stream. It preserves
// object member order and is the default backend.
package stdjson

import (
	"bytes"
	"encoding/json"

	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
)

type stdjsonParser struct{}

var _ parser.Parser = stdjsonParser{}

func New() parser.Parser {
	return stdjsonParser{}
}

func (stdjsonParser) Parse(data []byte, entry parser.Entry) (jsonvalue.Value, error) {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	v, err := parser.BuildTree(d)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if err := parser.CheckEntry(v, entry); err != nil {
		return jsonvalue.Value{}, err
	}
	return v, nil
}
