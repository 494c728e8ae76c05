// Package cli wires configuration, adapters and the demo handlers into a Conduit
// instance for the conduit command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/conduit"
	"github.com/aretw0/conduit/internal/config"
	"github.com/aretw0/conduit/internal/demo"
	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/adapters/redis"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/manifest"
	"github.com/aretw0/conduit/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
)

// Runtime is a ready-to-use Conduit together with the resources backing it.
type Runtime struct {
	Conduit  *conduit.Conduit
	Home     *demo.Home
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []io.Closer
}

// Close releases external connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NewLogger creates the CLI logger for cfg, writing to w.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(w, level), nil
}

// LoadManifest reads cfg.Manifest, or the built-in demo manifest when none is set.
func LoadManifest(path string) (*domain.Manifest, error) {
	if path == "" {
		return manifest.Decode(demo.Manifest())
	}
	return manifest.Load(path)
}

// Build creates a Conduit over the demo handlers using cfg.
// Requests handled early are tracked in Redis when cfg.RedisAddr is set, in memory otherwise.
func Build(cfg *config.Config, logOut io.Writer, opts ...conduit.Option) (*Runtime, error) {
	logger, err := NewLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	m, err := LoadManifest(cfg.Manifest)
	if err != nil {
		return nil, fmt.Errorf("error loading manifest: %w", err)
	}

	rt := &Runtime{
		Home:     demo.NewHome(),
		Registry: prometheus.NewRegistry(),
		Logger:   logger,
	}
	metrics, err := observability.NewMetrics(rt.Registry)
	if err != nil {
		return nil, err
	}

	conduitOpts := []conduit.Option{
		conduit.WithLogger(logger),
		conduit.WithStrict(cfg.Strict),
		conduit.WithLifecycleHooks(metrics.Hooks().Merge(observability.LogHooks(logger))),
	}

	if cfg.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		rt.closers = append(rt.closers, client)
		conduitOpts = append(conduitOpts,
			conduit.WithTracker(redis.NewFromClient(client,
				redis.WithPrefix(cfg.RedisPrefix+"validated:"),
				redis.WithTTL(cfg.TrackerTTL),
			)),
			conduit.WithLocker(redis.NewLocker(client, cfg.RedisPrefix)),
		)
		logger.Debug("tracking early validation in redis", "addr", cfg.RedisAddr)
	} else {
		conduitOpts = append(conduitOpts, conduit.WithTracker(memory.NewTracker(memory.WithTTL(cfg.TrackerTTL))))
	}

	c, err := conduit.New(m, demo.NewTable(rt.Home), append(conduitOpts, opts...)...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing conduit: %w", err)
	}
	rt.Conduit = c
	return rt, nil
}
