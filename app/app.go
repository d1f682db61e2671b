// Package app wires configuration into a running set of components shared
// by the HTTP daemon and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lvillar/proposalpdf"
	"github.com/lvillar/proposalpdf/assets"
	"github.com/lvillar/proposalpdf/cache"
	"github.com/lvillar/proposalpdf/config"
	"github.com/lvillar/proposalpdf/logging"
	"github.com/lvillar/proposalpdf/pdfengine"
	"github.com/lvillar/proposalpdf/printer"
	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/store"
)

// App holds the wired components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *store.Store
	Schemas *schema.Provider
	Printer *printer.Service

	closers []io.Closer
}

// New opens the store, migrates it, loads schemas and builds the print
// service. An unreachable Redis disables caching with a warning rather than
// failing. logOut receives log output.
func New(ctx context.Context, cfg *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, logOut)
	if err != nil {
		return nil, err
	}
	logging.SetLogger(logger)
	a := &App{Config: cfg, Logger: logger}

	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st)
	if err := st.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}
	a.Store = st

	schemas, err := schema.NewProvider(cfg.Schemas.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("loading schemas: %w", err)
	}
	a.Schemas = schemas

	assembler := proposalpdf.New(
		proposalpdf.WithLogger(logger),
		proposalpdf.WithResolver(assets.NewResolver(st, cfg.Assets.AppRoot, cfg.Assets.UploadsDir)),
		proposalpdf.WithContentSource(st),
		proposalpdf.WithEngineOptions(
			pdfengine.WithPageSize(cfg.PDF.PageSize),
			pdfengine.WithMargins(cfg.PDF.Margins.Engine()),
			pdfengine.WithImageRoots(cfg.Assets.UploadsDir),
		),
		proposalpdf.WithStylesheetPath(cfg.PDF.Stylesheet),
		proposalpdf.WithOrganization(cfg.PDF.Organization),
		proposalpdf.WithDateFormat(cfg.PDF.DateFormat),
		proposalpdf.WithConformeQR(cfg.PDF.ConformeQR),
	)

	a.Printer = printer.New(st, schemas, assembler,
		printer.WithLogger(logger),
		printer.WithCache(a.renderCache(ctx)),
		printer.WithAmountInWords(cfg.PDF.AmountInWords),
	)
	return a, nil
}

func (a *App) renderCache(ctx context.Context) cache.Cache {
	rc := a.Config.Redis
	if rc.Addr == "" {
		return cache.Nop{}
	}
	r, err := cache.NewRedis(ctx, cache.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB, TTL: rc.TTL})
	if err != nil {
		a.Logger.Warn("render cache disabled", "addr", rc.Addr, "error", err)
		return cache.Nop{}
	}
	a.closers = append(a.closers, r)
	a.Logger.Info("render cache enabled", "addr", rc.Addr, "ttl", rc.TTL)
	return r
}

// Close releases the store and the cache connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
