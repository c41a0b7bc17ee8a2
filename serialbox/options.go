package serialbox

import (
	"log/slog"

	"github.com/robert-malhotra/go-serialbox/internal/engine"
)

// Option configures how a serializer is opened.
type Option func(*options)

type options struct {
	driver string
	cfg    engine.Config
	eng    engine.Engine
}

func defaultOptions() *options {
	return &options{driver: engine.DefaultDriver}
}

// WithEngine selects the engine driver: "native" (default) or "cgo".
func WithEngine(name string) Option {
	return func(o *options) {
		if name != "" {
			o.driver = name
		}
	}
}

// WithLibraryPaths adds directories searched for the C wrapper library.
func WithLibraryPaths(dirs ...string) Option {
	return func(o *options) {
		o.cfg.LibraryPaths = append(o.cfg.LibraryPaths, dirs...)
	}
}

// WithLogger sets the logger for diagnostics. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.cfg.Logger = l
	}
}

// WithCompression sets the codec for newly written records: "none",
// "zlib", "lz4" or "zstd".
func WithCompression(codec string) Option {
	return func(o *options) {
		o.cfg.Compression = codec
	}
}

// withEngineInstance uses e instead of creating an engine from a driver.
func withEngineInstance(e engine.Engine) Option {
	return func(o *options) {
		o.eng = e
	}
}

func (o *options) logger() *slog.Logger {
	if o.cfg.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.cfg.Logger
}
