// Package native implements the engine contract in pure Go on top of the
// centralized file format: one JSON database per serializer holding the
// global metainfo, the fields table and the offset table, plus one
// append-only data file per field.
//
//	<dir>/<prefix>.json          database
//	<dir>/<prefix>_<field>.dat   column-major records of <field>
//
// Records are stored raw unless a compression codec is configured, in
// which case new records are written as filter frames and marked as such
// in the offset table. Identical records of a field are stored once.
//
// The engine registers itself as the "native" driver.
package native

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
	"github.com/robert-malhotra/go-serialbox/internal/filter"
	"github.com/robert-malhotra/go-serialbox/internal/metainfo"
)

// DisableEnv, when set to a positive integer, turns field reads and
// writes into no-ops for every serializer opened afterwards.
const DisableEnv = "STELLA_SERIALIZATION_DISABLED"

func init() {
	engine.Register("native", func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	})
}

// Engine is the pure Go engine. It is not safe for concurrent use.
type Engine struct {
	codec  filter.Codec
	logger *slog.Logger

	next        engine.Handle
	serializers map[engine.Handle]*serializer
	savepoints  map[engine.Handle]*savepoint
}

// New creates an engine.
func New(cfg engine.Config) (*Engine, error) {
	codec, err := filter.ParseCodec(cfg.Compression)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		codec:       codec,
		logger:      logger.With("engine", "native"),
		serializers: make(map[engine.Handle]*serializer),
		savepoints:  make(map[engine.Handle]*savepoint),
	}, nil
}

func (e *Engine) newHandle() engine.Handle {
	e.next++
	return e.next
}

func (e *Engine) serializer(h engine.Handle) (*serializer, error) {
	s, ok := e.serializers[h]
	if !ok {
		return nil, fmt.Errorf("%w: serializer %d", engine.ErrInvalidHandle, h)
	}
	return s, nil
}

func (e *Engine) savepoint(h engine.Handle) (*savepoint, error) {
	sp, ok := e.savepoints[h]
	if !ok {
		return nil, fmt.Errorf("%w: savepoint %d", engine.ErrInvalidHandle, h)
	}
	return sp, nil
}

func serializationDisabled() bool {
	n, err := strconv.Atoi(os.Getenv(DisableEnv))
	return err == nil && n > 0
}

// Open creates a serializer. Write mode discards any previous store under
// the same prefix; read mode requires the database to exist.
func (e *Engine) Open(dir, prefix string, mode engine.Mode) (engine.Handle, error) {
	if _, err := engine.ParseMode(string(mode)); err != nil {
		return 0, err
	}
	s := newSerializer(dir, prefix, mode)
	s.disabled = serializationDisabled()

	switch mode {
	case engine.ModeRead:
		if err := s.importTables(true); err != nil {
			return 0, err
		}
	case engine.ModeAppend:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating directory: %w", err)
		}
		if err := s.importTables(false); err != nil {
			return 0, err
		}
	case engine.ModeWrite:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating directory: %w", err)
		}
		if err := s.cleanTables(); err != nil {
			return 0, err
		}
	}

	if !s.global.Has("__format") {
		if err := s.global.AddValue("__format", metainfo.String(formatName)); err != nil {
			return 0, err
		}
	}

	h := e.newHandle()
	e.serializers[h] = s
	e.logger.Debug("opened serializer",
		"handle", h, "dir", dir, "prefix", prefix, "mode", mode.String(),
		"fields", len(s.fields), "savepoints", len(s.rows), "disabled", s.disabled)
	return h, nil
}

// Close releases a serializer handle.
func (e *Engine) Close(ser engine.Handle) error {
	if _, err := e.serializer(ser); err != nil {
		return err
	}
	delete(e.serializers, ser)
	e.logger.Debug("closed serializer", "handle", ser)
	return nil
}

// OpenMode returns the mode ser was opened in.
func (e *Engine) OpenMode(ser engine.Handle) (engine.Mode, error) {
	s, err := e.serializer(ser)
	if err != nil {
		return 0, err
	}
	return s.mode, nil
}

var _ engine.Engine = (*Engine)(nil)
