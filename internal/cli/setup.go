package cli

import (
	"log/slog"

	"github.com/robert-malhotra/go-serialbox/internal/config"
	"github.com/robert-malhotra/go-serialbox/serialbox"
)

// Env is the configuration shared by the tools after flag parsing.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
}

// Setup loads the config file at path (or from config.EnvVar) and builds
// the logger.
func Setup(path string) (*Env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Logger: cfg.Logger()}, nil
}

// StoreOptions returns the options for opening stores under env.
func (env *Env) StoreOptions() []serialbox.Option {
	return []serialbox.Option{
		serialbox.WithEngine(env.Config.Engine),
		serialbox.WithLibraryPaths(env.Config.LibraryPaths...),
		serialbox.WithCompression(env.Config.Compression),
		serialbox.WithLogger(env.Logger),
	}
}

// Open opens the store at loc read-only.
func (env *Env) Open(loc Location) (*serialbox.Serializer, error) {
	return serialbox.Open(loc.Dir, loc.Prefix, serialbox.ModeRead, env.StoreOptions()...)
}
