package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/unkn0wn-root/typejson"
	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// Message stores a concrete proto message.
type Message[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.User { return &mypb.User{} })
}

func NewMessage[T proto.Message](ctor func() T) Message[T] {
	return Message[T]{new: ctor}
}

func (c Message[T]) Encode(v T) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Message[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

var structValues = NewMessage(func() *structpb.Value { return &structpb.Value{} })

// Protobuf is a Codec that writes the JSON tree of V as a
// google.protobuf.Value. Numbers travel as doubles, so integers beyond 2^53
// lose precision, and objects come back with their keys sorted.
// The zero value is ready to use.
type Protobuf[V any] struct {
	Engine *typejson.Engine
}

var _ Codec[struct{}] = Protobuf[struct{}]{}

func (c Protobuf[V]) Encode(v V) ([]byte, error) {
	tree, err := toTree(c.Engine, v)
	if err != nil {
		return nil, err
	}
	pv, err := toStructpb(tree)
	if err != nil {
		return nil, err
	}
	return structValues.Encode(pv)
}

func (c Protobuf[V]) Decode(b []byte) (V, error) {
	pv, err := structValues.Decode(b)
	if err != nil {
		var zero V
		return zero, err
	}
	tree, err := fromStructpb(pv)
	if err != nil {
		var zero V
		return zero, err
	}
	return fromTree[V](c.Engine, tree)
}

func toStructpb(v jsonvalue.Value) (*structpb.Value, error) {
	switch v.Kind() {
	case jsonvalue.Bool:
		b, _ := v.Bool()
		return structpb.NewBoolValue(b), nil
	case jsonvalue.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return structpb.NewNumberValue(f), nil
	case jsonvalue.String:
		s, _ := v.Text()
		return structpb.NewStringValue(s), nil
	case jsonvalue.Array:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, v.Len())}
		for _, e := range v.Elements() {
			pe, err := toStructpb(e)
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, pe)
		}
		return structpb.NewListValue(list), nil
	case jsonvalue.Object:
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, v.Len())}
		for k, mv := range v.Members() {
			pe, err := toStructpb(mv)
			if err != nil {
				return nil, err
			}
			st.Fields[k] = pe
		}
		return structpb.NewStructValue(st), nil
	}
	return structpb.NewNullValue(), nil
}

func fromStructpb(pv *structpb.Value) (jsonvalue.Value, error) {
	switch k := pv.GetKind().(type) {
	case nil, *structpb.Value_NullValue:
		return jsonvalue.NewNull(), nil
	case *structpb.Value_BoolValue:
		return jsonvalue.NewBool(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		return jsonvalue.FromInterface(k.NumberValue)
	case *structpb.Value_StringValue:
		return jsonvalue.NewString(k.StringValue), nil
	case *structpb.Value_ListValue:
		items := make([]jsonvalue.Value, len(k.ListValue.GetValues()))
		for i, e := range k.ListValue.GetValues() {
			v, err := fromStructpb(e)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			items[i] = v
		}
		return jsonvalue.NewArray(items...), nil
	case *structpb.Value_StructValue:
		native := make(map[string]any, len(k.StructValue.GetFields()))
		for key, e := range k.StructValue.GetFields() {
			v, err := fromStructpb(e)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			native[key] = v
		}
		return jsonvalue.FromInterface(native)
	default:
		return jsonvalue.Value{}, fmt.Errorf("protobuf: unexpected value kind %T", k)
	}
}
