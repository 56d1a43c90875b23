// Package udt defines the column codecs that map geometric values to and
// from their fixed columnar record layouts.
//
// A codec is a stateless schema descriptor: it declares the Arrow struct
// layout for its value kind, encodes values into record containers, and
// decodes stored records back into values. The layouts are a wire contract
// shared with other readers of the same storage; field names, types,
// nullability and order must not change.
//
// Codecs are registered once at package init. The engine resolves a codec
// by display name, by bridge key, or from a value via For.
package udt

import (
	"sort"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/visionlake/geocol/pkg/geometry"
	"github.com/visionlake/geocol/pkg/record"
)

// Codec converts one kind of geometric value between its in-memory form and
// its columnar record layout. Implementations are stateless; every method is
// pure and safe for concurrent use.
type Codec interface {
	// Name returns the short lowercase identifier used when printing schemas.
	Name() string

	// BridgeKey returns the fully-qualified name used to locate the
	// counterpart implementation in another runtime layer. The key is an
	// opaque string; nothing in this module interprets it.
	BridgeKey() string

	// Schema returns the fixed columnar record layout for the value kind.
	Schema() *arrow.StructType

	// EncodeValue produces the columnar record for a value of the codec's
	// kind. Values of any other type are rejected with a validation error.
	EncodeValue(v interface{}) (*record.Record, error)

	// DecodeValue reconstructs a value from its columnar record. Malformed
	// records fail with a validation error before any construction.
	DecodeValue(rec *record.Record) (interface{}, error)
}

var (
	registryMu sync.RWMutex
	byName     = make(map[string]Codec)
	byBridge   = make(map[string]Codec)
)

// Register adds a codec to the registry. Registering a codec under an
// already-registered name replaces the previous entry.
func Register(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	byName[c.Name()] = c
	byBridge[c.BridgeKey()] = c
}

// Lookup returns the codec registered under the given display name.
func Lookup(name string) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := byName[name]
	return c, ok
}

// LookupBridge returns the codec registered under the given bridge key.
func LookupBridge(key string) (Codec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := byBridge[key]
	return c, ok
}

// For returns the codec that handles the given value's type.
func For(v interface{}) (Codec, bool) {
	switch v.(type) {
	case geometry.Point:
		return Lookup("point")
	case geometry.Box2d:
		return Lookup("box2d")
	case geometry.Box3d:
		return Lookup("box3d")
	case geometry.Mask:
		return Lookup("mask")
	default:
		return nil, false
	}
}

// Codecs returns all registered codecs ordered by display name.
func Codecs() []Codec {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Codec, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func init() {
	Register(PointType{})
	Register(Box2dType{})
	Register(Box3dType{})
	Register(MaskType{})
}
