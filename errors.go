package typejson

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/unkn0wn-root/typejson/jsonvalue"
	"github.com/unkn0wn-root/typejson/parser"
)

// ParseError wraps a failure of the parser backend: the text is not
// well-formed JSON, or does not match its entry point.
type ParseError struct {
	Entry parser.Entry
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("typejson: parse %s: %v", e.Entry, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ConversionError reports a parsed node whose shape does not fit the target
// type, e.g. a map requested from a number.
type ConversionError struct {
	Type reflect.Type   // target type
	Kind jsonvalue.Kind // kind of the offending node
	Path string         // location in the document, e.g. .Children[0].Name
	Msg  string
	Err  error // underlying cause, if any
}

func (e *ConversionError) Error() string {
	at := ""
	if e.Path != "" {
		at = " at " + e.Path
	}
	msg := fmt.Sprintf("typejson: cannot convert %s to %s%s", e.Kind, e.Type, at)
	switch {
	case e.Msg != "":
		return msg + ": " + e.Msg
	case e.Err != nil:
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// UnsupportedTypeError is returned for types that have no JSON form:
// channels, functions, complex numbers and unsafe pointers.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "typejson: unsupported type " + e.Type.String()
}

// UnsupportedValueError is returned when a value of a supported type cannot
// be written, such as NaN or a pointer cycle.
type UnsupportedValueError struct {
	Value string
	Msg   string
}

func (e *UnsupportedValueError) Error() string {
	return "typejson: unsupported value " + e.Value + ": " + e.Msg
}

func mismatch(t reflect.Type, in jsonvalue.Value, msg string) error {
	return &ConversionError{Type: t, Kind: in.Kind(), Msg: msg}
}

func convFailed(t reflect.Type, in jsonvalue.Value, err error) error {
	return &ConversionError{Type: t, Kind: in.Kind(), Err: err}
}

// atPath prefixes the location of a nested ConversionError as it unwinds.
func atPath(err error, seg string) error {
	var ce *ConversionError
	if errors.As(err, &ce) {
		ce.Path = seg + ce.Path
	}
	return err
}
