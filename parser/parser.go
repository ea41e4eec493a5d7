// Package parser turns JSON text into a jsonvalue tree. Lexing and grammar
// checks belong to the backend libraries (encoding/json, goccy/go-json,
// sonic); this package only defines the contract and the shared tree builder.
package parser

import (
	"errors"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// Entry selects the backend's entry point for a document.
type Entry uint8

const (
	EntryValue  Entry = iota // bare scalar (or anything, when unsure)
	EntryObject              // text starts with '{'
	EntryArray               // text starts with '['
)

func (e Entry) String() string {
	switch e {
	case EntryObject:
		return "object"
	case EntryArray:
		return "array"
	}
	return "value"
}

// Parser parses one complete JSON document.
// Implementations must be safe for concurrent use.
type Parser interface {
	Parse(data []byte, entry Entry) (jsonvalue.Value, error)
}

var (
	ErrEmpty         = errors.New("parser: empty input")
	ErrInvalid       = errors.New("parser: invalid JSON")
	ErrTrailingData  = errors.New("parser: unexpected data after top-level value")
	ErrEntryMismatch = errors.New("parser: document does not match entry point")
)

// EntryFor picks the entry point from the first non-whitespace byte. It is a
// hint only; nothing here validates the grammar.
func EntryFor(data []byte) Entry {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			return EntryObject
		case '[':
			return EntryArray
		}
		return EntryValue
	}
	return EntryValue
}

// CheckEntry verifies that a parsed tree has the shape its entry promised.
func CheckEntry(v jsonvalue.Value, entry Entry) error {
	switch {
	case entry == EntryObject && v.Kind() != jsonvalue.Object,
		entry == EntryArray && v.Kind() != jsonvalue.Array:
		return ErrEntryMismatch
	}
	return nil
}
