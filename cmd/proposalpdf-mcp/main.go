// Command proposalpdf-mcp is an MCP (Model Context Protocol) server that
// lets an assistant print proposals and brochures from the record store.
//
// # Configuration for Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "proposalpdf": {
//	      "command": "proposalpdf-mcp",
//	      "args": ["-config", "/etc/proposalpdf.yaml"]
//	    }
//	  }
//	}
//
// # Available Tools
//
//   - print_proposal: render a proposal or agreement
//   - print_brochure: render a brochure
//   - extract_assets: list the asset ids a proposal selects
//   - page_count: count the pages of a PDF on disk
//
// # Available Resources
//
//   - schema://<kind> : the field definition of each record kind
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvillar/proposalpdf/app"
	"github.com/lvillar/proposalpdf/config"
	"github.com/lvillar/proposalpdf/mcp"
)

func main() {
	configPath := flag.String("config", "proposalpdf.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "proposalpdf-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	s := mcp.NewServer(mcp.WithLogger(a.Logger))
	mcp.RegisterTools(s, mcp.Tools{Printer: a.Printer, Proposals: a.Store})
	mcp.RegisterSchemaResources(s, a.Schemas)
	return s.Run(ctx)
}
