// Package datasource picks the store implementation once, at start-up, and
// keeps it for the life of the process.
package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"github.com/stwalsh4118/luxeestate/internal/apiclient"
	"github.com/stwalsh4118/luxeestate/internal/config"
	"github.com/stwalsh4118/luxeestate/internal/database"
	"github.com/stwalsh4118/luxeestate/internal/localstore"
	"github.com/stwalsh4118/luxeestate/internal/logger"
	"github.com/stwalsh4118/luxeestate/internal/repository"
	"github.com/stwalsh4118/luxeestate/internal/seed"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// Handle is an opened store together with the resources it holds.
type Handle struct {
	Store   store.Store
	closers []func() error
}

// Close releases everything the store holds open, in reverse order.
func (h *Handle) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

type options struct {
	fs         afero.Fs
	clientOpts []apiclient.Option
}

// Option configures how a store is opened.
type Option func(*options)

// WithFs sets the filesystem used by the file driver. Defaults to the OS.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithClientOptions passes options to the remote API client.
func WithClientOptions(opts ...apiclient.Option) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

func buildOptions(opts []Option) *options {
	o := &options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open probes the API once. A 2xx from its health endpoint selects remote
// mode; any failure selects the local store. The probe never fails Open.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Handle, error) {
	o := buildOptions(opts)
	dlog := log.Named("datasource")

	if cfg.API.BaseURL == "" {
		dlog.Info("No API configured, using local store", nil)
		return openLocal(ctx, cfg.LocalStore, cfg.API, log, o)
	}

	client := apiclient.New(cfg.API.BaseURL, o.clientOpts...)

	probeCtx, cancel := context.WithTimeout(ctx, cfg.API.ProbeTimeout)
	defer cancel()

	if err := client.Ping(probeCtx); err != nil {
		dlog.Warn("API unreachable, using local store", map[string]interface{}{
			"base_url": cfg.API.BaseURL,
			"timeout":  cfg.API.ProbeTimeout.String(),
			"error":    err.Error(),
		})
		return openLocal(ctx, cfg.LocalStore, cfg.API, log, o)
	}

	dlog.Info("Using remote API", map[string]interface{}{"base_url": client.BaseURL()})
	return &Handle{Store: client}, nil
}

// OpenForServer connects to PostgreSQL, creating the schema and loading
// the demo dataset into an empty database. If the database cannot be
// reached within the probe timeout the server runs on the local store.
func OpenForServer(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Handle, error) {
	o := buildOptions(opts)
	dlog := log.Named("datasource")

	connectCtx, cancel := context.WithTimeout(ctx, cfg.API.ProbeTimeout)
	db, err := database.NewPostgresPool(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		dlog.Warn("Database unreachable, using local store", map[string]interface{}{
			"host":  cfg.Database.Host,
			"port":  cfg.Database.Port,
			"name":  cfg.Database.Name,
			"error": err.Error(),
		})
		return openLocal(ctx, cfg.LocalStore, cfg.API, log, o)
	}

	if err := prepare(ctx, db, dlog); err != nil {
		db.Close()
		return nil, err
	}

	dlog.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	return &Handle{
		Store:   repository.NewStore(db),
		closers: []func() error{func() error { db.Close(); return nil }},
	}, nil
}

func prepare(ctx context.Context, db *database.Database, log *logger.Logger) error {
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	empty, err := db.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	ds, err := seed.Load()
	if err != nil {
		return err
	}
	if err := repository.NewStore(db).Seed(ctx, ds); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	log.Info("Seeded empty database", map[string]interface{}{
		"properties": len(ds.Properties),
		"agents":     len(ds.Agents),
		"users":      len(ds.Users),
	})
	return nil
}

// OpenLocal opens the local store on the configured driver.
func OpenLocal(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*Handle, error) {
	return openLocal(ctx, cfg.LocalStore, cfg.API, log, buildOptions(opts))
}

func openLocal(ctx context.Context, cfg config.LocalStoreConfig, api config.APIConfig, log *logger.Logger, o *options) (*Handle, error) {
	kv, err := openKV(ctx, cfg, api, o)
	if err != nil {
		return nil, err
	}

	st, err := localstore.Open(ctx, kv, log.Named("localstore"))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	log.Named("datasource").Info("Using local store", map[string]interface{}{
		"driver": cfg.Driver,
		"quota":  cfg.QuotaBytes,
	})
	return &Handle{Store: st, closers: []func() error{st.Close}}, nil
}

func openKV(ctx context.Context, cfg config.LocalStoreConfig, api config.APIConfig, o *options) (localstore.KV, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		client, err := localstore.ConnectRedis(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		kv := localstore.NewRedisKV(client, "")

		pingCtx, cancel := context.WithTimeout(ctx, api.ProbeTimeout)
		defer cancel()
		if err := kv.Ping(pingCtx); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisURL, err)
		}
		return kv, nil
	case config.DriverFile, "":
		return localstore.NewFileKV(o.fs, cfg.Dir, cfg.QuotaBytes)
	}
	return nil, fmt.Errorf("unknown local store driver %q", cfg.Driver)
}
