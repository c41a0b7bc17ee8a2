// Package filter implements the reversible transforms applied to field
// records before they are appended to a data file.
//
// Records are stored raw by default. When compression is enabled each
// record passes through a [Pipeline] on write and is wrapped in a frame
// that names the filters used, so a reader never needs out-of-band
// configuration to decode it.
//
// # Supported Filters
//
//   - Deflate (ID 1): zlib compression via [Deflate].
//   - Shuffle (ID 2): byte shuffling via [Shuffle]. Groups byte 0 of every
//     element, then byte 1, and so on, which helps the compressors on
//     floating point fields whose neighbouring values are close.
//   - Fletcher32 (ID 3): integrity check via [Fletcher32Filter]; a 32-bit
//     checksum is appended on encode and verified on decode.
//   - LZ4 (ID 32): LZ4 block compression via [LZ4].
//   - Zstd (ID 33): Zstandard compression via [Zstd].
//
// # Pipelines
//
// Filters are applied in order on encode and in reverse order on decode:
//
//	p, err := filter.NewPipeline(filter.ForCodec(filter.CodecZstd, 8))
//	stored, err := p.Encode(record)
//	record, err = p.Decode(stored)
//
// # Frames
//
// [WriteFrame] and [ReadFrame] wrap an encoded record with its filter list
// and lengths. See frame.go for the layout.
package filter
