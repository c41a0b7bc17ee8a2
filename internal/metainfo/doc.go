// Package metainfo implements the typed key/value metadata attached to a
// serializer, to its savepoints and to its fields.
//
// A metainfo value is one of five variants. Across the engine boundary a
// value travels as a tag plus a little-endian payload:
//
//	Tag   | Variant  | Payload
//	------|----------|---------------------------------
//	-1    | Bool     | 1 byte (0 or 1)
//	-2    | Int32    | 4 bytes, two's complement
//	-3    | Float32  | 4 bytes, IEEE 754
//	-4    | Float64  | 8 bytes, IEEE 754
//	n>=0  | String   | n bytes, no terminator
//
// # Encoding Go Values
//
// [Encode] maps a native Go value to a [Value] by category: bool, any
// integer width (narrowed to 32 bits, wrapping on overflow), float32,
// float64, string and []byte. [Marshal] additionally produces the tag and
// payload. Any other type fails with an [UnsupportedTypeError].
//
//	tag, payload, err := metainfo.Marshal(42)
//	v, err := metainfo.Unmarshal(tag, payload) // v.Interface() == int32(42)
//
// Decoding dispatches on the tag alone; for strings the tag is also the
// payload length, so callers size their buffers with [Tag.Size] before
// asking the engine to fill them.
//
// # Sets
//
// A [Set] holds unique keys and iterates them in sorted order. Sets are
// ordered against each other (keys first, then values), with values of
// different variants ordered Bool < Int32 < Float32 < Float64 < String.
package metainfo
