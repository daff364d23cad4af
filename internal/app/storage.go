package app

import (
	"github.com/adanyl0v/go-tasks/internal/config"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

var globalRepository storage.Repository

// MustInitStorage selects the repository configured by STORAGE. The
// returned function releases it.
func MustInitStorage() func() {
	cfg := config.Global()
	switch cfg.Storage {
	case config.StorageMemory:
		globalRepository = storage.NewMemoryRepository()
		globalLogger.Warn().Msg("using in-memory storage, data is lost on exit")
		return func() {}
	default:
		MustConnectPostgres()
		MustMigratePostgres()
		globalRepository = storage.NewPostgresRepository(globalLogger, globalPostgresPool)
		return DisconnectPostgres
	}
}
