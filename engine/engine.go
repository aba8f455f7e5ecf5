package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/sigbridge/sigbridge"
	"github.com/sigbridge/sigbridge/errors"
)

// hostModule is the namespace models import host hooks from.
const hostModule = "env"

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages caps memory per model instance in pages (64KB
	// each). 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine owns the wazero runtime model instances run on.
type Engine struct {
	runtime wazero.Runtime
}

// New creates a new engine with default configuration.
func New(ctx context.Context) (*Engine, error) {
	return NewWithConfig(ctx, nil)
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	// host hooks available to every model; a model that imports none of
	// them is unaffected
	_, err := runtime.NewHostModuleBuilder(hostModule).
		NewFunctionBuilder().WithFunc(hostFinish).Export("finish").
		Instantiate(ctx)
	if err != nil {
		runtime.Close(ctx)
		return nil, errors.Load("install host hooks", err)
	}

	return &Engine{runtime: runtime}, nil
}

// Close releases the runtime and every instance created from it.
// All handles driving instances of this engine must be closed first.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Load compiles a model artifact and pairs it with its port table. The
// port table is per-model configuration fixed at generation time; Load
// validates it but binding against the artifact's exports happens at
// Instantiate.
func (e *Engine) Load(ctx context.Context, wasmBytes []byte, ports []sigbridge.PortSpec) (*Model, error) {
	if len(ports) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty port table")
	}
	seen := make(map[string]bool, len(ports))
	for _, p := range ports {
		if p.Name == "" {
			return nil, errors.InvalidInput(errors.PhaseLoad, "port with empty name")
		}
		if seen[p.Name] {
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Port(p.Name).Detail("duplicate port").Build()
		}
		seen[p.Name] = true
		if p.Width < 1 || p.Width > sigbridge.MaxWidth {
			return nil, errors.New(errors.PhaseLoad, errors.KindUnsupported).
				Port(p.Name).Detail("width %d out of range 1..%d", p.Width, sigbridge.MaxWidth).Build()
		}
	}

	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.Load("compile model", err)
	}

	Logger().Debug("model compiled",
		zap.Int("bytes", len(wasmBytes)),
		zap.Int("ports", len(ports)))

	return &Model{
		engine:   e,
		compiled: compiled,
		ports:    append([]sigbridge.PortSpec(nil), ports...),
	}, nil
}
