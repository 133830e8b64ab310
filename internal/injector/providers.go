package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/stembranch/internal/config"
	"github.com/zeusync/stembranch/internal/core/events/bus"
	"github.com/zeusync/stembranch/internal/core/observability/log"
	"github.com/zeusync/stembranch/internal/core/sim"
	"github.com/zeusync/stembranch/internal/core/storage"
	"github.com/zeusync/stembranch/internal/server"
)

// ProviderSet builds everything a headless server needs from a config.Config
var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideStorage,
	ProvideMapStore,
	sim.NewSession,
	server.New,
)

// ProvideLogger builds the zap logger from cfg.Log. The cleanup flushes it.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger, err := log.New(log.Config{
		Level:       level,
		Encoding:    cfg.Log.Encoding,
		Development: cfg.Log.Development,
	})
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideStorage(cfg config.Config) (storage.Storage, error) {
	return storage.New(cfg.Storage)
}

func ProvideMapStore(cfg config.Config, backend storage.Storage) (*storage.MapStore, error) {
	return storage.NewMapStore(backend, cfg.Storage.Format, cfg.Storage.Key)
}
