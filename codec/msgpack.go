package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/unkn0wn-root/typejson"
	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// Msgpack is a Codec that writes the JSON tree of V as MessagePack using
// vmihailenco/msgpack/v5. Object member order is kept. Canonical integers
// are written as msgpack integers; other numbers travel as an ext type
// holding the literal, so they decode to the same text. The zero value is
// ready to use.
type Msgpack[V any] struct {
	Engine *typejson.Engine
}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (c Msgpack[V]) Encode(v V) ([]byte, error) {
	tree, err := toTree(c.Engine, v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := encodeMsgpack(msgpack.NewEncoder(&buf), tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Msgpack[V]) Decode(b []byte) (V, error) {
	tree, err := decodeMsgpack(msgpack.NewDecoder(bytes.NewReader(b)))
	if err != nil {
		var zero V
		return zero, err
	}
	return fromTree[V](c.Engine, tree)
}

// numberExt carries a number literal that is not a canonical 64-bit integer.
const numberExt int8 = 1

func encodeMsgpack(enc *msgpack.Encoder, v jsonvalue.Value) error {
	switch v.Kind() {
	case jsonvalue.Bool:
		b, _ := v.Bool()
		return enc.EncodeBool(b)
	case jsonvalue.Number:
		lit, _ := v.Literal()
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil && strconv.FormatInt(i, 10) == lit {
			return enc.EncodeInt(i)
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil && strconv.FormatUint(u, 10) == lit {
			return enc.EncodeUint(u)
		}
		// anything else keeps its literal text
		if err := enc.EncodeExtHeader(numberExt, len(lit)); err != nil {
			return err
		}
		_, err := io.WriteString(enc.Writer(), lit)
		return err
	case jsonvalue.String:
		s, _ := v.Text()
		return enc.EncodeString(s)
	case jsonvalue.Array:
		if err := enc.EncodeArrayLen(v.Len()); err != nil {
			return err
		}
		for _, e := range v.Elements() {
			if err := encodeMsgpack(enc, e); err != nil {
				return err
			}
		}
		return nil
	case jsonvalue.Object:
		if err := enc.EncodeMapLen(v.Len()); err != nil {
			return err
		}
		for k, mv := range v.Members() {
			if err := enc.EncodeString(k); err != nil {
				return err
			}
			if err := encodeMsgpack(enc, mv); err != nil {
				return err
			}
		}
		return nil
	}
	return enc.EncodeNil()
}

func decodeMsgpack(dec *msgpack.Decoder) (jsonvalue.Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return jsonvalue.Value{}, err
	}
	switch {
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil || n < 0 {
			return jsonvalue.Value{}, err
		}
		b := jsonvalue.NewObjectBuilder(n)
		for i := 0; i < n; i++ {
			k, err := dec.DecodeString()
			if err != nil {
				return jsonvalue.Value{}, fmt.Errorf("msgpack: map key: %w", err)
			}
			v, err := decodeMsgpack(dec)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			b.Set(k, v)
		}
		return b.Build(), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil || n < 0 {
			return jsonvalue.Value{}, err
		}
		items := make([]jsonvalue.Value, n)
		for i := range items {
			if items[i], err = decodeMsgpack(dec); err != nil {
				return jsonvalue.Value{}, err
			}
		}
		return jsonvalue.NewArray(items...), nil
	}
	if msgpcode.IsExt(c) {
		return decodeNumberExt(dec)
	}
	x, err := dec.DecodeInterfaceLoose()
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.FromInterface(x)
}

func decodeNumberExt(dec *msgpack.Decoder) (jsonvalue.Value, error) {
	id, n, err := dec.DecodeExtHeader()
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if id != numberExt {
		return jsonvalue.Value{}, fmt.Errorf("msgpack: unknown ext type %d", id)
	}
	buf := make([]byte, n)
	if err := dec.ReadFull(buf); err != nil {
		return jsonvalue.Value{}, err
	}
	lit := string(buf)
	if _, err := strconv.ParseFloat(lit, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
		return jsonvalue.Value{}, fmt.Errorf("msgpack: bad number literal %q", lit)
	}
	return jsonvalue.NewNumber(lit), nil
}
