package main

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-admin-console/auth"
	"github.com/jrsteele09/go-admin-console/authz"
	"github.com/jrsteele09/go-admin-console/catalog"
	catalogrepo "github.com/jrsteele09/go-admin-console/catalog/gormrepo"
	"github.com/jrsteele09/go-admin-console/catalog/rediscache"
	fakecatalogrepo "github.com/jrsteele09/go-admin-console/catalog/repofake"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/internal/metrics"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/jrsteele09/go-admin-console/session"
	"github.com/jrsteele09/go-admin-console/token"
	"github.com/jrsteele09/go-admin-console/users"
	usergormrepo "github.com/jrsteele09/go-admin-console/users/gormrepo"
	fakeuserrepo "github.com/jrsteele09/go-admin-console/users/repofake"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type stores struct {
	users   users.Repo
	catalog catalog.Repo
	writer  catalog.Writer // nil leaves the catalog untouched at startup
}

// buildApp wires the stores, the auth service and the HTTP server from cfg.
func buildApp(ctx context.Context, cfg config.Config, seedCatalog bool) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}

	st, err := openStores(ctx, cfg, seedCatalog, a)
	if err != nil {
		return nil, err
	}
	if err = withCatalogCache(ctx, cfg, st, a); err != nil {
		return nil, err
	}
	if _, err = server.InitialiseSystem(ctx, st.users, st.writer, cfg.GetBootstrapPassword()); err != nil {
		return nil, err
	}

	engine, err := authz.NewEngine(st.catalog, st.catalog)
	if err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder(metrics.WithProcessCollectors())
	authService, err := auth.NewService(auth.Deps{
		Codec:      codec,
		Resolver:   session.NewResolver(codec, session.Cookie{Name: cfg.GetCookieName(), Secure: cfg.GetSecureCookie()}),
		Authorizer: engine,
		Users:      st.users,
	}, auth.WithBaseAPIPath(cfg.GetBaseAPIPath()), auth.WithRecorder(recorder))
	if err != nil {
		return nil, err
	}

	srv, err := server.New(cfg, authService, recorder)
	if err != nil {
		return nil, err
	}
	a.handler = srv
	return a, nil
}

func newCodec(cfg config.Config) (*token.Codec, error) {
	secret, err := cfg.GetTokenSecret()
	if err != nil {
		return nil, err
	}
	signer, err := token.NewHMACSigner(secret)
	if err != nil {
		return nil, err
	}
	return token.NewCodec(signer, cfg.GetPhase())
}

func openStores(ctx context.Context, cfg config.Config, seedCatalog bool, a *app) (*stores, error) {
	dsn := cfg.GetPostgresDSN()
	if dsn == "" {
		log.Info().Msg("POSTGRES_DSN not set, using in-memory users and catalog")
		cat := fakecatalogrepo.NewFakeCatalogRepo()
		return &stores{users: fakeuserrepo.NewFakeUserRepo(), catalog: cat, writer: cat}, nil
	}

	db, err := catalogrepo.Open(dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "[openStores] sql handle")
	}
	a.closers = append(a.closers, sqlDB.Close)

	catRepo := catalogrepo.New(db)
	if err := catRepo.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "[openStores] migrate catalog")
	}
	userRepo := usergormrepo.New(db)
	if err := userRepo.Migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "[openStores] migrate users")
	}

	st := &stores{users: userRepo, catalog: catRepo}
	if seedCatalog {
		st.writer = catRepo
	}
	return st, nil
}

// withCatalogCache puts the Redis cache in front of the catalog when
// REDIS_ADDR is set. Writes made through st.writer drop the cached entries.
func withCatalogCache(ctx context.Context, cfg config.Config, st *stores, a *app) error {
	addr := cfg.GetRedisAddr()
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.GetRedisPassword()})
	a.closers = append(a.closers, client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.Wrapf(err, "[withCatalogCache] ping redis %s", addr)
	}

	cache, err := rediscache.New(st.catalog, client, rediscache.WithTTL(cfg.GetCatalogCacheTTL()))
	if err != nil {
		return err
	}
	st.catalog = cache
	if st.writer != nil {
		st.writer = cache.Writer(st.writer)
	}
	log.Info().Str("addr", addr).Dur("ttl", cfg.GetCatalogCacheTTL()).Msg("catalog cache enabled")
	return nil
}
