// Package enginetest provides an engine wrapper for tests that records
// calls, tracks handle ownership and injects failures.
package enginetest

import (
	"fmt"
	"slices"
	"sync"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// Recorder wraps an engine. Every handle it hands out is tracked until
// released; releasing a handle twice is recorded as a double release.
type Recorder struct {
	engine.Engine

	mu       sync.Mutex
	calls    []string
	live     map[engine.Handle]string
	released map[engine.Handle]int
	doubles  []engine.Handle
	failures map[string]error
	after    map[string]int
}

// New wraps e.
func New(e engine.Engine) *Recorder {
	return &Recorder{
		Engine:   e,
		live:     make(map[engine.Handle]string),
		released: make(map[engine.Handle]int),
		failures: make(map[string]error),
		after:    make(map[string]int),
	}
}

// FailOn makes the named call fail with err once it has succeeded skip
// times.
func (r *Recorder) FailOn(op string, skip int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
	r.after[op] = skip
}

// Calls returns the recorded call names in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// Count returns how many times op was called.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == op {
			n++
		}
	}
	return n
}

// Live returns the kinds of handles not yet released, sorted.
func (r *Recorder) Live() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.live))
	for h, kind := range r.live {
		out = append(out, fmt.Sprintf("%s#%d", kind, h))
	}
	slices.Sort(out)
	return out
}

// DoubleReleases returns handles released more than once.
func (r *Recorder) DoubleReleases() []engine.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.doubles)
}

func (r *Recorder) record(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	err, ok := r.failures[op]
	if !ok {
		return nil
	}
	if r.after[op] > 0 {
		r.after[op]--
		return nil
	}
	return err
}

func (r *Recorder) acquire(kind string, h engine.Handle, err error) (engine.Handle, error) {
	if err != nil {
		return h, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[h] = kind
	return h, nil
}

func (r *Recorder) release(h engine.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released[h]++
	if r.released[h] > 1 {
		r.doubles = append(r.doubles, h)
	}
	delete(r.live, h)
}

func (r *Recorder) Open(dir, prefix string, mode engine.Mode) (engine.Handle, error) {
	if err := r.record("Open"); err != nil {
		return 0, err
	}
	h, err := r.Engine.Open(dir, prefix, mode)
	return r.acquire("serializer", h, err)
}

func (r *Recorder) Close(ser engine.Handle) error {
	r.release(ser)
	if err := r.record("Close"); err != nil {
		return err
	}
	return r.Engine.Close(ser)
}

func (r *Recorder) Savepoint(ser engine.Handle, index int) (engine.Handle, error) {
	if err := r.record("Savepoint"); err != nil {
		return 0, err
	}
	h, err := r.Engine.Savepoint(ser, index)
	return r.acquire("savepoint", h, err)
}

func (r *Recorder) NewSavepoint(name string) (engine.Handle, error) {
	if err := r.record("NewSavepoint"); err != nil {
		return 0, err
	}
	h, err := r.Engine.NewSavepoint(name)
	return r.acquire("savepoint", h, err)
}

func (r *Recorder) DuplicateSavepoint(sp engine.Handle) (engine.Handle, error) {
	if err := r.record("DuplicateSavepoint"); err != nil {
		return 0, err
	}
	h, err := r.Engine.DuplicateSavepoint(sp)
	return r.acquire("savepoint", h, err)
}

func (r *Recorder) DestroySavepoint(sp engine.Handle) error {
	r.release(sp)
	if err := r.record("DestroySavepoint"); err != nil {
		return err
	}
	return r.Engine.DestroySavepoint(sp)
}

func (r *Recorder) FieldCount(ser engine.Handle) (int, error) {
	if err := r.record("FieldCount"); err != nil {
		return 0, err
	}
	return r.Engine.FieldCount(ser)
}

func (r *Recorder) FieldNameLengths(ser engine.Handle, lengths []int) error {
	if err := r.record("FieldNameLengths"); err != nil {
		return err
	}
	return r.Engine.FieldNameLengths(ser, lengths)
}

func (r *Recorder) FieldNames(ser engine.Handle, names [][]byte) error {
	if err := r.record("FieldNames"); err != nil {
		return err
	}
	return r.Engine.FieldNames(ser, names)
}

func (r *Recorder) SavepointNameLength(sp engine.Handle) (int, error) {
	if err := r.record("SavepointNameLength"); err != nil {
		return 0, err
	}
	return r.Engine.SavepointNameLength(sp)
}

func (r *Recorder) SavepointName(sp engine.Handle, buf []byte) error {
	if err := r.record("SavepointName"); err != nil {
		return err
	}
	return r.Engine.SavepointName(sp, buf)
}

func (r *Recorder) MetainfoTags(ser engine.Handle, scope engine.Scope, tags []metainfo.Tag) error {
	if err := r.record("MetainfoTags"); err != nil {
		return err
	}
	return r.Engine.MetainfoTags(ser, scope, tags)
}

func (r *Recorder) MetainfoValue(ser engine.Handle, scope engine.Scope, key string, tag metainfo.Tag, buf []byte) error {
	if err := r.record("MetainfoValue"); err != nil {
		return err
	}
	return r.Engine.MetainfoValue(ser, scope, key, tag, buf)
}

func (r *Recorder) ReadField(ser, sp engine.Handle, name string, dst []byte, strides [4]int) error {
	if err := r.record("ReadField"); err != nil {
		return err
	}
	return r.Engine.ReadField(ser, sp, name, dst, strides)
}

func (r *Recorder) WriteField(ser, sp engine.Handle, name string, src []byte, strides [4]int) error {
	if err := r.record("WriteField"); err != nil {
		return err
	}
	return r.Engine.WriteField(ser, sp, name, src, strides)
}
