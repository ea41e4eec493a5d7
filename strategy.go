package typejson

import (
	"reflect"
	"time"

	"github.com/unkn0wn-root/typejson/jsonvalue"
)

// Strategy is the codec construction rule chosen for a type.
type Strategy uint8

const (
	StrategyUnsupported Strategy = iota
	StrategyString
	StrategyPrimitive
	StrategyDateTime
	StrategyPassthrough
	StrategyMap
	StrategyFixedArray
	StrategyDynamicList
	StrategyNullableWrapper
	StrategySealedObject
	StrategyOpenObject
	StrategyUntypedDynamic
)

func (s Strategy) String() string {
	switch s {
	case StrategyString:
		return "string"
	case StrategyPrimitive:
		return "primitive"
	case StrategyDateTime:
		return "datetime"
	case StrategyPassthrough:
		return "passthrough"
	case StrategyMap:
		return "map"
	case StrategyFixedArray:
		return "fixed_array"
	case StrategyDynamicList:
		return "dynamic_list"
	case StrategyNullableWrapper:
		return "nullable"
	case StrategySealedObject:
		return "sealed_object"
	case StrategyOpenObject:
		return "open_object"
	case StrategyUntypedDynamic:
		return "dynamic"
	}
	return "unsupported"
}

var (
	timeType  = reflect.TypeFor[time.Time]()
	valueType = reflect.TypeFor[jsonvalue.Value]()
)

// classify applies the precedence rules; the first match wins. Strings come
// before everything else, and maps before sequences.
func classify(t reflect.Type) Strategy {
	k := t.Kind()
	switch {
	case k == reflect.String:
		return StrategyString
	case isPrimitive(k):
		return StrategyPrimitive
	case t == timeType:
		return StrategyDateTime
	case t == valueType:
		return StrategyPassthrough
	case k == reflect.Map:
		return StrategyMap
	case k == reflect.Array:
		return StrategyFixedArray
	case k == reflect.Slice:
		return StrategyDynamicList
	case k == reflect.Pointer:
		return StrategyNullableWrapper
	case k == reflect.Struct:
		return StrategySealedObject
	case k == reflect.Interface && t.NumMethod() > 0:
		return StrategyOpenObject
	case k == reflect.Interface:
		return StrategyUntypedDynamic
	}
	return StrategyUnsupported
}

func isPrimitive(k reflect.Kind) bool {
	switch k {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
