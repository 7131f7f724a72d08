// Package app wires the configuration into a ready to use set of API services
// sharing one client and one set of stores.
package app

import (
	"context"
	"datasources-client/internal/api"
	"datasources-client/internal/auth"
	"datasources-client/internal/check"
	"datasources-client/internal/components/assert"
	"datasources-client/internal/components/chrono"
	"datasources-client/internal/components/db"
	"datasources-client/internal/components/telemetry"
	"datasources-client/internal/locations"
	"datasources-client/internal/search"
	"datasources-client/internal/store"
	"datasources-client/internal/user"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type App struct {
	Config Config
	Client *api.Client
	Stores *store.Stores

	Auth      auth.Service
	Search    search.Service
	Locations locations.Service
	Check     check.Service
	User      user.Service

	closers []func() error
}

// Open builds every service for profile and restores its saved session.
func Open(ctx context.Context, cfg Config, profile string, tel telemetry.API) (*App, error) {
	assert.NotNil(tel)
	if profile == "" {
		profile = "default"
	}

	client, err := api.NewClient(api.Options{
		BaseUrl:           cfg.Api.BaseUrl,
		ApiKey:            cfg.Api.ApiKey,
		Timeout:           time.Duration(cfg.Api.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Api.RequestsPerSecond,
		Burst:             cfg.Api.Burst,
		UserAgent:         cfg.Api.UserAgent,
	}, tel)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Client: client}
	clock := chrono.NewStandardTime()

	persister, err := app.openPersister(cfg.Session, profile, clock)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Stores = store.NewStores(clock, persister, tel)
	err = app.Stores.Load(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Auth = auth.NewService(client, app.Stores, clock, tel)
	app.Search = search.NewService(client, app.Stores, search.Options{
		CacheWindow: time.Duration(cfg.Search.CacheSeconds) * time.Second,
	}, tel)
	app.Locations = locations.NewService(client)
	app.Check = check.NewService(client)
	app.User = user.NewService(client, app.Stores)

	return app, nil
}

func (a *App) openPersister(cfg SessionConfig, profile string, clock chrono.TimeAPI) (store.Persister, error) {
	switch cfg.Backend {
	case "memory":
		return nil, nil
	case "sqlite", "":
		database, err := cfg.Database.OpenDB(db.Schema)
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		return store.NewSqlitePersister(database, profile, clock), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		return store.NewRedisPersister(client, profile, clock), nil
	}
	return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
}

func (a *App) Close() error {
	errlist := []error{}
	for _, closer := range a.closers {
		err := closer()
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	a.closers = nil
	return errors.Join(errlist...)
}
