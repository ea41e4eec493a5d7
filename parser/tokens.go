package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// TokenSource is the streaming token API shared by encoding/json and
// goccy/go-json decoders. Tokens follow encoding/json conventions: Delim for
// brackets, bool, string, json.Number (or float64) and nil.
type TokenSource interface {
	Token() (json.Token, error)
	More() bool
}

// BuildTree reads exactly one value from src. Object members keep their
// document order. Anything left after the value is ErrTrailingData.
func BuildTree(src TokenSource) (jsonvalue.Value, error) {
	tok, err := src.Token()
	if err == io.EOF {
		return jsonvalue.Value{}, ErrEmpty
	}
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := buildFrom(src, tok)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if _, err := src.Token(); err != io.EOF {
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Value{}, ErrTrailingData
	}
	return v, nil
}

func buildFrom(src TokenSource, tok json.Token) (jsonvalue.Value, error) {
	switch t := tok.(type) {
	case nil:
		return jsonvalue.NewNull(), nil
	case bool:
		return jsonvalue.NewBool(t), nil
	case string:
		return jsonvalue.NewString(t), nil
	case json.Number:
		return jsonvalue.NewNumber(t.String()), nil
	case float64:
		return jsonvalue.NewNumber(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case json.Delim:
		switch t {
		case '[':
			return buildArray(src)
		case '{':
			return buildObject(src)
		}
		return jsonvalue.Value{}, fmt.Errorf("parser: unexpected delimiter %q", rune(t))
	}
	return jsonvalue.Value{}, fmt.Errorf("parser: unexpected token %T", tok)
}

func buildArray(src TokenSource) (jsonvalue.Value, error) {
	var items []jsonvalue.Value
	for src.More() {
		tok, err := src.Token()
		if err != nil {
			return jsonvalue.Value{}, err
		}
		v, err := buildFrom(src, tok)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		items = append(items, v)
	}
	if err := expectDelim(src, ']'); err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.NewArray(items...), nil
}

func buildObject(src TokenSource) (jsonvalue.Value, error) {
	b := jsonvalue.NewObjectBuilder(4)
	for src.More() {
		tok, err := src.Token()
		if err != nil {
			return jsonvalue.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return jsonvalue.Value{}, fmt.Errorf("parser: object key is %T, not string", tok)
		}
		tok, err = src.Token()
		if err != nil {
			return jsonvalue.Value{}, err
		}
		v, err := buildFrom(src, tok)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		b.Set(key, v)
	}
	if err := expectDelim(src, '}'); err != nil {
		return jsonvalue.Value{}, err
	}
	return b.Build(), nil
}

var errUnclosed = errors.New("parser: unterminated container")

func expectDelim(src TokenSource, want json.Delim) error {
	tok, err := src.Token()
	if err == io.EOF {
		return errUnclosed
	}
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("parser: expected %q, got %v", rune(want), tok)
	}
	return nil
}
