package typejson

import "reflect"

// Hooks are callbacks for engine and document cache events worth counting or
// sampling. Implementations MUST be cheap and non-blocking: CodecBuilt and
// PlaceholderResolved run while a codec is being resolved. Wrap slow sinks
// with hooks/async.
type Hooks interface {
	// A codec was built and published for t.
	CodecBuilt(t reflect.Type, s Strategy)

	// A concurrent caller published t first; the local build was discarded.
	CodecRace(t reflect.Type)

	// A recursion placeholder for t was invoked before its owner finished
	// and had to go back to the cache.
	PlaceholderResolved(t reflect.Type)

	// Parse, TryParse or Deserialize into t failed.
	ParseFailed(t reflect.Type, err error)

	// A cached document failed validation or decoding and was deleted.
	SelfHeal(storageKey, reason string)

	// The provider refused to store a parsed document.
	ProviderSetRejected(storageKey string)

	// A provider call failed; parsing went ahead without the cache.
	ProviderError(op, storageKey string, err error)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) CodecBuilt(reflect.Type, Strategy)   {}
func (NopHooks) CodecRace(reflect.Type)              {}
func (NopHooks) PlaceholderResolved(reflect.Type)    {}
func (NopHooks) ParseFailed(reflect.Type, error)     {}
func (NopHooks) SelfHeal(string, string)             {}
func (NopHooks) ProviderSetRejected(string)          {}
func (NopHooks) ProviderError(string, string, error) {}
