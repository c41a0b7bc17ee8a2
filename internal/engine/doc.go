// Package engine defines the contract between the access layer and the
// storage engine that owns field data on disk.
//
// The contract mirrors the engine's flat call surface: opaque handles,
// integer counts, and caller-allocated buffers. Every variable-length
// result (names, keys, type names) is fetched in two phases: the caller
// asks for counts and lengths, allocates exactly that much, then asks the
// engine to fill the buffers. The helpers in fetch.go are the only place
// that protocol is spelled out; callers above this package never see it.
//
// Engines are provided by drivers registered under a name:
//
//	native  pure Go implementation of the centralized file format
//	cgo     the serialbox wrapper library loaded with dlopen
//	        (only with the serialbox_cgo build tag)
//
// # Handles
//
// A serializer handle comes from [Engine.Open] and is released with
// [Engine.Close]. Savepoint handles come from [Engine.Savepoint],
// [Engine.NewSavepoint] or [Engine.DuplicateSavepoint] and are released
// with [Engine.DestroySavepoint]. Every handle is owned by exactly one
// caller and must be released exactly once.
package engine
