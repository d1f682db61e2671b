// Command proposald serves proposal and brochure PDFs over HTTP together
// with the record API behind them.
//
//	proposald -config proposalpdf.yaml
//
// Without a config file the defaults apply: SQLite in ./proposalpdf.db,
// listening on :8080. DB_URL, REDIS_ADDR, PROPOSALPDF_ADDR and
// PROPOSALPDF_UPLOADS_DIR override the file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/lvillar/proposalpdf/app"
	"github.com/lvillar/proposalpdf/config"
	"github.com/lvillar/proposalpdf/server"
)

func main() {
	configPath := flag.String("config", "proposalpdf.yaml", "path to the YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	if err := run(*configPath, *addr); err != nil {
		fmt.Fprintf(os.Stderr, "proposald: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(a.Store, a.Printer, a.Schemas,
		server.WithLogger(a.Logger),
		server.WithUploadsDir(cfg.Assets.UploadsDir),
	)
	return srv.Run(ctx, cfg.Server.Addr)
}
