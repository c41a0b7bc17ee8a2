package serialbox

import "github.com/robert-malhotra/go-serialbox/internal/metainfo"

type (
	// Value is a typed metainfo value.
	Value = metainfo.Value
	// Kind is the variant of a Value.
	Kind = metainfo.Kind
	// MetaInfo is one ordered key/value annotation.
	MetaInfo = metainfo.Pair
)

const (
	KindBool    = metainfo.KindBool
	KindInt32   = metainfo.KindInt32
	KindFloat32 = metainfo.KindFloat32
	KindFloat64 = metainfo.KindFloat64
	KindString  = metainfo.KindString
)

// Bool, Int32, Float32, Float64 and String build explicit values.
var (
	Bool    = metainfo.Bool
	Int32   = metainfo.Int32
	Float32 = metainfo.Float32
	Float64 = metainfo.Float64
	String  = metainfo.String
)

// ValueOf converts a Go value to its metainfo variant. Integers are
// narrowed to 32 bits.
func ValueOf(v any) (Value, error) {
	return metainfo.Encode(v)
}
