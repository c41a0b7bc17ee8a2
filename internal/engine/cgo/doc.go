// Package cgo binds the engine contract to the serialbox C wrapper
// library (libSerialbox_Wrapper) loaded at run time with dlopen.
//
// The binding is compiled only with cgo enabled and the serialbox_cgo
// build tag; without it the "cgo" driver is not registered and asking
// for it yields a configuration error. Library lookup is always
// available so tools can report where they would search.
//
// The C API reports no failures: every call is assumed to succeed.
package cgo
