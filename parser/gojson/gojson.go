// Package gojson parses with goccy/go-json's token stream. Like stdjson it
// keeps object member order.
package gojson

import (
	"bytes"
	stdjson "encoding/json"

	"github.com/goccy/go-json"

	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
)

type gojsonParser struct {
	decodeOptions []json.DecodeOptionFunc
}

var _ parser.Parser = (*gojsonParser)(nil)

// New returns a go-json backed parser. Options are applied when the backend
// validates input ahead of tokenizing.
func New(decodeOptions ...json.DecodeOptionFunc) parser.Parser {
	return &gojsonParser{decodeOptions: decodeOptions}
}

// tokens adapts *json.Decoder to parser.TokenSource.
type tokens struct{ d *json.Decoder }

func (t tokens) Token() (stdjson.Token, error) { return t.d.Token() }
func (t tokens) More() bool                    { return t.d.More() }

func (p *gojsonParser) Parse(data []byte, entry parser.Entry) (jsonvalue.Value, error) {
	if !json.Valid(data) || !literalsComplete(data) {
		// Valid is the fast reject; Unmarshal produces the positioned error.
		var discard any
		if err := json.UnmarshalWithOption(data, &discard, p.decodeOptions...); err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Value{}, parser.ErrInvalid
	}
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	v, err := parser.BuildTree(tokens{d: d})
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if err := parser.CheckEntry(v, entry); err != nil {
		return jsonvalue.Value{}, err
	}
	return v, nil
}

// literalsComplete reports whether every bare word outside strings is a whole
// true, false or null. go-json's Valid and token stream accept prefixes such
// as "tru" and expand them.
func literalsComplete(data []byte) bool {
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '"':
			for i++; i < len(data) && data[i] != '"'; i++ {
				if data[i] == '\\' {
					i++
				}
			}
			i++
		case c == '-' || isDigit(c):
			for i++; i < len(data) && isNumberByte(data[i]); i++ {
			}
		case isLetter(c):
			var lit string
			switch c {
			case 't':
				lit = "true"
			case 'f':
				lit = "false"
			case 'n':
				lit = "null"
			default:
				return false
			}
			if !bytes.HasPrefix(data[i:], []byte(lit)) {
				return false
			}
			i += len(lit)
			if i < len(data) && (isLetter(data[i]) || isDigit(data[i])) {
				return false
			}
		default:
			i++
		}
	}
	return true
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-'
}
