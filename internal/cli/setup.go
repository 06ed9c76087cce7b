package cli

import (
	"fmt"

	"github.com/johanforsgren/codenvy-remotes/internal/codenvy"
	"github.com/johanforsgren/codenvy-remotes/internal/config"
	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
	"github.com/johanforsgren/codenvy-remotes/internal/remote"
	"github.com/johanforsgren/codenvy-remotes/internal/storage"
)

// openPreferences opens the configured store. The returned close function
// is never nil.
func openPreferences(cfg *config.Config) (domain.Preferences, func() error, error) {
	var sealer *storage.Sealer
	if cfg.Security.TokenKeyFile != "" {
		s, err := storage.LoadSealer(cfg.Security.TokenKeyFile)
		if err != nil {
			return nil, nil, err
		}
		sealer = s
	}

	switch cfg.Preferences.Backend {
	case config.BackendSQLite:
		store, err := storage.OpenSQLiteStore(cfg.Preferences.Path, sealer)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := storage.NewLocalStore(cfg.Preferences.Path, sealer)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	}
}

// openManager wires the store and the Codenvy client builder into a manager
// whose diagnostics go to reporter.
func openManager(cfg *config.Config, reporter remote.Reporter) (*remote.Manager, func() error, error) {
	prefs, closeFn, err := openPreferences(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open preferences %s: %w", cfg.Preferences.Path, err)
	}

	builder := codenvy.NewBuilder(cfg.HTTP.Timeout, cfg.HTTP.Debug)
	logger.Log("Opened %s preferences at %s", cfg.Preferences.Backend, cfg.Preferences.Path)
	return remote.New(prefs, builder, remote.WithReporter(reporter)), closeFn, nil
}
