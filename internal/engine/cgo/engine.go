//go:build cgo && serialbox_cgo

package cgo

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdbool.h>
#include <stdlib.h>

static void* sb_open(const char* path) { return dlopen(path, RTLD_NOW | RTLD_LOCAL); }
static const char* sb_error(void) { return dlerror(); }
static void* sb_sym(void* lib, const char* name) { return dlsym(lib, name); }
static int sb_close(void* lib) { return dlclose(lib); }

typedef void* (*create_serializer_fn)(const char*, int, const char*, int, char);
typedef void  (*void_ptr_fn)(void*);
typedef char  (*char_ptr_fn)(void*);
typedef int   (*int_ptr_fn)(void*);
typedef void  (*ints_fn)(void*, int*);
typedef void  (*strs_fn)(void*, char**);
typedef void* (*ptr_int_fn)(void*, int);
typedef void* (*ptr_str_fn)(const char*, int);
typedef void* (*ptr_ptr_fn)(void*);
typedef int   (*int_pp_fn)(void*, void*);
typedef void  (*ints_pp_fn)(void*, void*, int*);
typedef void  (*strs_pp_fn)(void*, void*, char**);
typedef int   (*int_name_fn)(void*, const char*, int);
typedef void  (*name_buf_fn)(void*, const char*, int, void*);
typedef void  (*buf_fn)(void*, char*);
typedef void  (*fieldinfo_fn)(void*, const char*, int,
	int*, int*, int*, int*, int*, int*, int*, int*, int*, int*, int*, int*, int*);
typedef void  (*register_fn)(void*, const char*, int, const char*, int, int,
	int, int, int, int, int, int, int, int, int, int, int, int);
typedef void  (*add_b_fn)(void*, const char*, int, bool);
typedef void  (*add_i_fn)(void*, const char*, int, int);
typedef void  (*add_f_fn)(void*, const char*, int, float);
typedef void  (*add_d_fn)(void*, const char*, int, double);
typedef void  (*add_s_fn)(void*, const char*, int, const char*, int);
typedef void  (*fadd_b_fn)(void*, const char*, int, const char*, int, bool);
typedef void  (*fadd_i_fn)(void*, const char*, int, const char*, int, int);
typedef void  (*fadd_f_fn)(void*, const char*, int, const char*, int, float);
typedef void  (*fadd_d_fn)(void*, const char*, int, const char*, int, double);
typedef void  (*fadd_s_fn)(void*, const char*, int, const char*, int, const char*, int);
typedef void  (*data_fn)(void*, void*, const char*, int, void*, int, int, int, int);

static void* call_create_serializer(void* f, const char* d, int dl, const char* p, int pl, char m) {
	return ((create_serializer_fn)f)(d, dl, p, pl, m);
}
static void  call_void_ptr(void* f, void* a) { ((void_ptr_fn)f)(a); }
static char  call_char_ptr(void* f, void* a) { return ((char_ptr_fn)f)(a); }
static int   call_int_ptr(void* f, void* a) { return ((int_ptr_fn)f)(a); }
static void  call_ints(void* f, void* a, int* out) { ((ints_fn)f)(a, out); }
static void  call_strs(void* f, void* a, char** out) { ((strs_fn)f)(a, out); }
static void* call_ptr_int(void* f, void* a, int i) { return ((ptr_int_fn)f)(a, i); }
static void* call_ptr_str(void* f, const char* s, int n) { return ((ptr_str_fn)f)(s, n); }
static void* call_ptr_ptr(void* f, void* a) { return ((ptr_ptr_fn)f)(a); }
static int   call_int_pp(void* f, void* a, void* b) { return ((int_pp_fn)f)(a, b); }
static void  call_ints_pp(void* f, void* a, void* b, int* out) { ((ints_pp_fn)f)(a, b, out); }
static void  call_strs_pp(void* f, void* a, void* b, char** out) { ((strs_pp_fn)f)(a, b, out); }
static int   call_int_name(void* f, void* a, const char* s, int n) { return ((int_name_fn)f)(a, s, n); }
static void  call_name_buf(void* f, void* a, const char* s, int n, void* out) { ((name_buf_fn)f)(a, s, n, out); }
static void  call_buf(void* f, void* a, char* out) { ((buf_fn)f)(a, out); }
static void  call_fieldinfo(void* f, void* a, const char* s, int n, int* v) {
	((fieldinfo_fn)f)(a, s, n, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6],
		&v[7], &v[8], &v[9], &v[10], &v[11], &v[12]);
}
static void  call_register(void* f, void* a, const char* s, int n, const char* t, int tn, int* v) {
	((register_fn)f)(a, s, n, t, tn, v[0], v[1], v[2], v[3], v[4], v[5], v[6],
		v[7], v[8], v[9], v[10], v[11], v[12]);
}
static void call_add_b(void* f, void* a, const char* k, int kn, bool v) { ((add_b_fn)f)(a, k, kn, v); }
static void call_add_i(void* f, void* a, const char* k, int kn, int v) { ((add_i_fn)f)(a, k, kn, v); }
static void call_add_f(void* f, void* a, const char* k, int kn, float v) { ((add_f_fn)f)(a, k, kn, v); }
static void call_add_d(void* f, void* a, const char* k, int kn, double v) { ((add_d_fn)f)(a, k, kn, v); }
static void call_add_s(void* f, void* a, const char* k, int kn, const char* v, int vn) { ((add_s_fn)f)(a, k, kn, v, vn); }
static void call_fadd_b(void* f, void* a, const char* fl, int fn, const char* k, int kn, bool v) { ((fadd_b_fn)f)(a, fl, fn, k, kn, v); }
static void call_fadd_i(void* f, void* a, const char* fl, int fn, const char* k, int kn, int v) { ((fadd_i_fn)f)(a, fl, fn, k, kn, v); }
static void call_fadd_f(void* f, void* a, const char* fl, int fn, const char* k, int kn, float v) { ((fadd_f_fn)f)(a, fl, fn, k, kn, v); }
static void call_fadd_d(void* f, void* a, const char* fl, int fn, const char* k, int kn, double v) { ((fadd_d_fn)f)(a, fl, fn, k, kn, v); }
static void call_fadd_s(void* f, void* a, const char* fl, int fn, const char* k, int kn, const char* v, int vn) { ((fadd_s_fn)f)(a, fl, fn, k, kn, v, vn); }
static void call_data(void* f, void* a, void* b, const char* s, int n, void* data, int si, int sj, int sk, int sl) {
	((data_fn)f)(a, b, s, n, data, si, sj, sk, sl);
}
*/
import "C"

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

func init() {
	engine.Register("cgo", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// symbols lists every wrapper entry point the engine calls.
var symbols = []string{
	"fs_create_serializer", "fs_destroy_serializer", "fs_serializer_openmode",
	"fs_serializer_metainfo_size", "fs_serializer_metainfo_key_lengths",
	"fs_serializer_metainfo_get_keys", "fs_serializer_metainfo_get_types",
	"fs_get_serializer_metainfo_b", "fs_get_serializer_metainfo_i",
	"fs_get_serializer_metainfo_f", "fs_get_serializer_metainfo_d",
	"fs_get_serializer_metainfo_s",
	"fs_add_serializer_metainfo_b", "fs_add_serializer_metainfo_i",
	"fs_add_serializer_metainfo_f", "fs_add_serializer_metainfo_d",
	"fs_add_serializer_metainfo_s",
	"fs_savepoints", "fs_get_savepoint",
	"fs_fields", "fs_fieldname_lengths", "fs_get_fieldnames", "fs_get_fieldinfo",
	"fs_get_field_type_length", "fs_get_field_type",
	"fs_fields_at_savepoint", "fs_fields_at_savepoint_name_lengths",
	"fs_fields_at_savepoint_names",
	"fs_register_field", "fs_field_exists",
	"fs_add_field_metainfo_b", "fs_add_field_metainfo_i", "fs_add_field_metainfo_f",
	"fs_add_field_metainfo_d", "fs_add_field_metainfo_s",
	"fs_create_savepoint", "fs_duplicate_savepoint", "fs_destroy_savepoint",
	"fs_savepoint_metainfo_size", "fs_savepoint_name_length", "fs_savepoint_get_name",
	"fs_savepoint_key_lengths", "fs_savepoint_get_keys", "fs_savepoint_get_types",
	"fs_get_savepoint_metainfo_b", "fs_get_savepoint_metainfo_i",
	"fs_get_savepoint_metainfo_f", "fs_get_savepoint_metainfo_d",
	"fs_get_savepoint_metainfo_s",
	"fs_add_savepoint_metainfo_b", "fs_add_savepoint_metainfo_i",
	"fs_add_savepoint_metainfo_f", "fs_add_savepoint_metainfo_d",
	"fs_add_savepoint_metainfo_s",
	"fs_read_field", "fs_write_field",
}

// errFieldScope is returned for field metainfo reads, which the wrapper
// does not expose.
var errFieldScope = errors.New("field metainfo cannot be read through the C wrapper")

// Engine calls into a loaded wrapper library.
type Engine struct {
	lib    unsafe.Pointer
	path   string
	fn     map[string]unsafe.Pointer
	logger *slog.Logger
}

// New locates and loads the wrapper library and resolves every symbol.
func New(cfg engine.Config) (*Engine, error) {
	path, searched := Find(cfg.LibraryPaths)
	if path == "" {
		return nil, &engine.ConfigError{
			Driver:   "cgo",
			Searched: searched,
			Err:      fmt.Errorf("%s not found", LibraryName()),
		}
	}

	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	lib := C.sb_open(cpath)
	if lib == nil {
		return nil, &engine.ConfigError{
			Driver:   "cgo",
			Searched: searched,
			Err:      fmt.Errorf("dlopen %s: %s", path, C.GoString(C.sb_error())),
		}
	}

	e := &Engine{lib: lib, path: path, fn: make(map[string]unsafe.Pointer, len(symbols)), logger: cfg.Logger}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	e.logger = e.logger.With("engine", "cgo")
	for _, name := range symbols {
		cname := C.CString(name)
		sym := C.sb_sym(lib, cname)
		C.free(unsafe.Pointer(cname))
		if sym == nil {
			C.sb_close(lib)
			return nil, &engine.ConfigError{Driver: "cgo", Err: fmt.Errorf("%s: missing symbol %s", path, name)}
		}
		e.fn[name] = sym
	}
	e.logger.Debug("loaded wrapper library", "path", path)
	return e, nil
}

// Path returns the loaded library's path.
func (e *Engine) Path() string { return e.path }

func ptr(h engine.Handle) unsafe.Pointer {
	return unsafe.Pointer(uintptr(h))
}

func handle(p unsafe.Pointer) (engine.Handle, error) {
	if p == nil {
		return 0, errors.New("wrapper returned a null handle")
	}
	return engine.Handle(uintptr(p)), nil
}

// cstr copies s into C memory; the caller frees it.
func cstr(s string) (*C.char, C.int) {
	return C.CString(s), C.int(len(s))
}

func free(p *C.char) { C.free(unsafe.Pointer(p)) }

func (e *Engine) Open(dir, prefix string, mode engine.Mode) (engine.Handle, error) {
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return 0, err
	}
	d, dn := cstr(dir)
	defer free(d)
	p, pn := cstr(prefix)
	defer free(p)
	h, err := handle(C.call_create_serializer(e.fn["fs_create_serializer"], d, dn, p, pn, C.char(mode)))
	if err != nil {
		return 0, err
	}
	e.logger.Debug("opened serializer", "dir", dir, "prefix", prefix, "mode", mode.String())
	return h, nil
}

func (e *Engine) Close(ser engine.Handle) error {
	C.call_void_ptr(e.fn["fs_destroy_serializer"], ptr(ser))
	return nil
}

func (e *Engine) OpenMode(ser engine.Handle) (engine.Mode, error) {
	return engine.ParseMode(string(rune(C.call_char_ptr(e.fn["fs_serializer_openmode"], ptr(ser)))))
}

func (e *Engine) count(sym string, h engine.Handle) (int, error) {
	return int(C.call_int_ptr(e.fn[sym], ptr(h))), nil
}

// ints fills dst through a C int array.
func (e *Engine) ints(dst []int, call func(*C.int)) {
	if len(dst) == 0 {
		return
	}
	buf := (*C.int)(C.malloc(C.size_t(len(dst)) * C.size_t(unsafe.Sizeof(C.int(0)))))
	defer C.free(unsafe.Pointer(buf))
	call(buf)
	for i, v := range unsafe.Slice(buf, len(dst)) {
		dst[i] = int(v)
	}
}

// strs fills pre-sized buffers through an array of C strings.
func (e *Engine) strs(dst [][]byte, call func(**C.char)) {
	if len(dst) == 0 {
		return
	}
	arr := (**C.char)(C.malloc(C.size_t(len(dst)) * C.size_t(unsafe.Sizeof((*C.char)(nil)))))
	defer C.free(unsafe.Pointer(arr))
	slots := unsafe.Slice(arr, len(dst))
	for i, b := range dst {
		slots[i] = (*C.char)(C.calloc(C.size_t(len(b)+1), 1))
	}
	call(arr)
	for i, b := range dst {
		copy(b, unsafe.Slice((*byte)(unsafe.Pointer(slots[i])), len(b)))
		C.free(unsafe.Pointer(slots[i]))
	}
}

func (e *Engine) FieldCount(ser engine.Handle) (int, error) {
	return e.count("fs_fields", ser)
}

func (e *Engine) FieldNameLengths(ser engine.Handle, lengths []int) error {
	e.ints(lengths, func(out *C.int) { C.call_ints(e.fn["fs_fieldname_lengths"], ptr(ser), out) })
	return nil
}

func (e *Engine) FieldNames(ser engine.Handle, names [][]byte) error {
	e.strs(names, func(out **C.char) { C.call_strs(e.fn["fs_get_fieldnames"], ptr(ser), out) })
	return nil
}

func (e *Engine) FieldLayout(ser engine.Handle, name string) (engine.Layout, error) {
	ok, err := e.FieldExists(ser, name)
	if err != nil {
		return engine.Layout{}, err
	}
	if !ok {
		return engine.Layout{}, fmt.Errorf("field %q is not registered in the serializer", name)
	}
	n, nn := cstr(name)
	defer free(n)
	v := make([]int, 13)
	e.ints(v, func(out *C.int) { C.call_fieldinfo(e.fn["fs_get_fieldinfo"], ptr(ser), n, nn, out) })
	return engine.Layout{
		BytesPerElement: v[0],
		Sizes:           [4]int{v[1], v[2], v[3], v[4]},
		MinusHalo:       [4]int{v[5], v[7], v[9], v[11]},
		PlusHalo:        [4]int{v[6], v[8], v[10], v[12]},
	}, nil
}

func (e *Engine) FieldTypeLength(ser engine.Handle, name string) (int, error) {
	n, nn := cstr(name)
	defer free(n)
	return int(C.call_int_name(e.fn["fs_get_field_type_length"], ptr(ser), n, nn)), nil
}

func (e *Engine) FieldType(ser engine.Handle, name string, buf []byte) error {
	n, nn := cstr(name)
	defer free(n)
	out := C.calloc(C.size_t(len(buf)+1), 1)
	defer C.free(out)
	C.call_name_buf(e.fn["fs_get_field_type"], ptr(ser), n, nn, out)
	copy(buf, unsafe.Slice((*byte)(out), len(buf)))
	return nil
}

func (e *Engine) FieldExists(ser engine.Handle, name string) (bool, error) {
	n, nn := cstr(name)
	defer free(n)
	return C.call_int_name(e.fn["fs_field_exists"], ptr(ser), n, nn) != 0, nil
}

func (e *Engine) RegisterField(ser engine.Handle, name, typeName string, l engine.Layout) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	n, nn := cstr(name)
	defer free(n)
	t, tn := cstr(typeName)
	defer free(t)
	v := []C.int{
		C.int(l.BytesPerElement),
		C.int(l.Sizes[0]), C.int(l.Sizes[1]), C.int(l.Sizes[2]), C.int(l.Sizes[3]),
		C.int(l.MinusHalo[0]), C.int(l.PlusHalo[0]),
		C.int(l.MinusHalo[1]), C.int(l.PlusHalo[1]),
		C.int(l.MinusHalo[2]), C.int(l.PlusHalo[2]),
		C.int(l.MinusHalo[3]), C.int(l.PlusHalo[3]),
	}
	C.call_register(e.fn["fs_register_field"], ptr(ser), n, nn, t, tn, &v[0])
	return nil
}

func (e *Engine) SavepointCount(ser engine.Handle) (int, error) {
	return e.count("fs_savepoints", ser)
}

func (e *Engine) Savepoint(ser engine.Handle, index int) (engine.Handle, error) {
	n, err := e.SavepointCount(ser)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= n {
		return 0, fmt.Errorf("savepoint index %d out of range [0, %d)", index, n)
	}
	return handle(C.call_ptr_int(e.fn["fs_get_savepoint"], ptr(ser), C.int(index)))
}

func (e *Engine) NewSavepoint(name string) (engine.Handle, error) {
	n, nn := cstr(name)
	defer free(n)
	return handle(C.call_ptr_str(e.fn["fs_create_savepoint"], n, nn))
}

func (e *Engine) DuplicateSavepoint(sp engine.Handle) (engine.Handle, error) {
	return handle(C.call_ptr_ptr(e.fn["fs_duplicate_savepoint"], ptr(sp)))
}

func (e *Engine) DestroySavepoint(sp engine.Handle) error {
	C.call_void_ptr(e.fn["fs_destroy_savepoint"], ptr(sp))
	return nil
}

func (e *Engine) SavepointNameLength(sp engine.Handle) (int, error) {
	return e.count("fs_savepoint_name_length", sp)
}

func (e *Engine) SavepointName(sp engine.Handle, buf []byte) error {
	out := (*C.char)(C.calloc(C.size_t(len(buf)+1), 1))
	defer free(out)
	C.call_buf(e.fn["fs_savepoint_get_name"], ptr(sp), out)
	copy(buf, unsafe.Slice((*byte)(unsafe.Pointer(out)), len(buf)))
	return nil
}

func (e *Engine) FieldsAtSavepointCount(ser, sp engine.Handle) (int, error) {
	return int(C.call_int_pp(e.fn["fs_fields_at_savepoint"], ptr(ser), ptr(sp))), nil
}

func (e *Engine) FieldsAtSavepointLengths(ser, sp engine.Handle, lengths []int) error {
	e.ints(lengths, func(out *C.int) {
		C.call_ints_pp(e.fn["fs_fields_at_savepoint_name_lengths"], ptr(ser), ptr(sp), out)
	})
	return nil
}

func (e *Engine) FieldsAtSavepointNames(ser, sp engine.Handle, names [][]byte) error {
	e.strs(names, func(out **C.char) {
		C.call_strs_pp(e.fn["fs_fields_at_savepoint_names"], ptr(ser), ptr(sp), out)
	})
	return nil
}

// scopeSymbols returns the symbol prefix family and the object handle for
// a readable scope.
func scopeSymbols(ser engine.Handle, scope engine.Scope) (size, lengths, keys, types, get string, obj engine.Handle, err error) {
	switch scope.Kind {
	case engine.ScopeSerializer:
		return "fs_serializer_metainfo_size", "fs_serializer_metainfo_key_lengths",
			"fs_serializer_metainfo_get_keys", "fs_serializer_metainfo_get_types",
			"fs_get_serializer_metainfo_", ser, nil
	case engine.ScopeSavepoint:
		return "fs_savepoint_metainfo_size", "fs_savepoint_key_lengths",
			"fs_savepoint_get_keys", "fs_savepoint_get_types",
			"fs_get_savepoint_metainfo_", scope.Savepoint, nil
	}
	return "", "", "", "", "", 0, errFieldScope
}

func (e *Engine) MetainfoCount(ser engine.Handle, scope engine.Scope) (int, error) {
	size, _, _, _, _, obj, err := scopeSymbols(ser, scope)
	if err != nil {
		return 0, err
	}
	return e.count(size, obj)
}

func (e *Engine) MetainfoKeyLengths(ser engine.Handle, scope engine.Scope, lengths []int) error {
	_, sym, _, _, _, obj, err := scopeSymbols(ser, scope)
	if err != nil {
		return err
	}
	e.ints(lengths, func(out *C.int) { C.call_ints(e.fn[sym], ptr(obj), out) })
	return nil
}

func (e *Engine) MetainfoKeys(ser engine.Handle, scope engine.Scope, keys [][]byte) error {
	_, _, sym, _, _, obj, err := scopeSymbols(ser, scope)
	if err != nil {
		return err
	}
	e.strs(keys, func(out **C.char) { C.call_strs(e.fn[sym], ptr(obj), out) })
	return nil
}

func (e *Engine) MetainfoTags(ser engine.Handle, scope engine.Scope, tags []metainfo.Tag) error {
	_, _, _, sym, _, obj, err := scopeSymbols(ser, scope)
	if err != nil {
		return err
	}
	raw := make([]int, len(tags))
	e.ints(raw, func(out *C.int) { C.call_ints(e.fn[sym], ptr(obj), out) })
	for i, t := range raw {
		tags[i] = metainfo.Tag(t)
	}
	return nil
}

func (e *Engine) MetainfoValue(ser engine.Handle, scope engine.Scope, key string, tag metainfo.Tag, buf []byte) error {
	_, _, _, _, get, obj, err := scopeSymbols(ser, scope)
	if err != nil {
		return err
	}
	var suffix string
	switch tag.Kind() {
	case metainfo.KindBool:
		suffix = "b"
	case metainfo.KindInt32:
		suffix = "i"
	case metainfo.KindFloat32:
		suffix = "f"
	case metainfo.KindFloat64:
		suffix = "d"
	case metainfo.KindString:
		suffix = "s"
	default:
		return fmt.Errorf("%w %d for key %q", metainfo.ErrInvalidTag, tag, key)
	}

	k, kn := cstr(key)
	defer free(k)
	out := C.calloc(C.size_t(len(buf)+1), 1)
	defer C.free(out)
	C.call_name_buf(e.fn[get+suffix], ptr(obj), k, kn, out)
	copy(buf, unsafe.Slice((*byte)(out), len(buf)))
	return nil
}

func (e *Engine) AddMetainfo(ser engine.Handle, scope engine.Scope, key string, tag metainfo.Tag, payload []byte) error {
	v, err := metainfo.Unmarshal(tag, payload)
	if err != nil {
		return err
	}
	k, kn := cstr(key)
	defer free(k)

	if scope.Kind == engine.ScopeField {
		f, fn := cstr(scope.Field)
		defer free(f)
		s := ptr(ser)
		switch v.Kind() {
		case metainfo.KindBool:
			C.call_fadd_b(e.fn["fs_add_field_metainfo_b"], s, f, fn, k, kn, C.bool(v.Bool()))
		case metainfo.KindInt32:
			C.call_fadd_i(e.fn["fs_add_field_metainfo_i"], s, f, fn, k, kn, C.int(v.Int()))
		case metainfo.KindFloat32:
			C.call_fadd_f(e.fn["fs_add_field_metainfo_f"], s, f, fn, k, kn, C.float(v.Float()))
		case metainfo.KindFloat64:
			C.call_fadd_d(e.fn["fs_add_field_metainfo_d"], s, f, fn, k, kn, C.double(v.Float()))
		case metainfo.KindString:
			sv, sn := cstr(v.String())
			defer free(sv)
			C.call_fadd_s(e.fn["fs_add_field_metainfo_s"], s, f, fn, k, kn, sv, sn)
		}
		return nil
	}

	prefix, obj := "fs_add_serializer_metainfo_", ser
	if scope.Kind == engine.ScopeSavepoint {
		prefix, obj = "fs_add_savepoint_metainfo_", scope.Savepoint
	}
	o := ptr(obj)
	switch v.Kind() {
	case metainfo.KindBool:
		C.call_add_b(e.fn[prefix+"b"], o, k, kn, C.bool(v.Bool()))
	case metainfo.KindInt32:
		C.call_add_i(e.fn[prefix+"i"], o, k, kn, C.int(v.Int()))
	case metainfo.KindFloat32:
		C.call_add_f(e.fn[prefix+"f"], o, k, kn, C.float(v.Float()))
	case metainfo.KindFloat64:
		C.call_add_d(e.fn[prefix+"d"], o, k, kn, C.double(v.Float()))
	case metainfo.KindString:
		sv, sn := cstr(v.String())
		defer free(sv)
		C.call_add_s(e.fn[prefix+"s"], o, k, kn, sv, sn)
	}
	return nil
}

func (e *Engine) data(sym string, ser, sp engine.Handle, name string, buf []byte, strides [4]int) error {
	if len(buf) == 0 {
		return fmt.Errorf("field %q: empty buffer", name)
	}
	n, nn := cstr(name)
	defer free(n)
	C.call_data(e.fn[sym], ptr(ser), ptr(sp), n, nn, unsafe.Pointer(&buf[0]),
		C.int(strides[0]), C.int(strides[1]), C.int(strides[2]), C.int(strides[3]))
	return nil
}

func (e *Engine) ReadField(ser, sp engine.Handle, name string, dst []byte, strides [4]int) error {
	e.logger.Debug("reading field", "field", name)
	return e.data("fs_read_field", ser, sp, name, dst, strides)
}

func (e *Engine) WriteField(ser, sp engine.Handle, name string, src []byte, strides [4]int) error {
	e.logger.Debug("writing field", "field", name)
	return e.data("fs_write_field", ser, sp, name, src, strides)
}

var _ engine.Engine = (*Engine)(nil)
