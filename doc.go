// Package typejson converts between Go values and JSON text without
// per-type conversion code. Given a type, the engine derives a serializer and
// a deserializer once and caches them.
//
// Components:
//   - jsonvalue: the parsed tree (null, bool, number, string, array, object).
//   - parser: pluggable text -> tree backends (encoding/json, go-json, sonic).
//   - Engine: codec cache plus Stringify / Parse entry points.
//   - codec: Codec[V] byte codecs (JSON, MessagePack, CBOR, Protobuf).
//   - doccache: a parser decorator that caches parsed trees in a Provider.
//
// Type mapping:
//
//	string                 string (null -> "")
//	bool, ints, floats     literal; a fractional number truncates into ints
//	time.Time              "2006-01-02T15:04:05.000Z" in UTC (null -> zero time)
//	jsonvalue.Value        passed through unchanged
//	map[K]V                object, keys sorted on output
//	[N]T, []T              array; [N]T requires exactly N elements
//	*T                     null or T
//	struct                 object with exported fields in declaration order
//	interface              runtime type on output; the raw tree on input
//
// Struct keys default to the field name. A `json:"key"` tag overrides it.
// Without a tag, a key missing from the input is retried once with its first
// letter lower-cased, so both {"Name":..} and {"name":..} fill Name.
//
// Usage:
//
//	s, _ := typejson.Stringify(city, typejson.LowerCamelCase)
//	c, err := typejson.Parse[City](s)
//	c, ok := typejson.TryParse[City](`{"name":"Karachi"}`)
package typejson
