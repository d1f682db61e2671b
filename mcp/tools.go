package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/lvillar/proposalpdf/assets"
	"github.com/lvillar/proposalpdf/pdfengine"
	"github.com/lvillar/proposalpdf/printer"
	"github.com/lvillar/proposalpdf/store"
)

// Printer renders print commands. *printer.Service implements it.
type Printer interface {
	Print(ctx context.Context, cmd printer.Command) (*printer.Output, error)
}

// Proposals loads proposals by id. *store.Store implements it.
type Proposals interface {
	Proposal(ctx context.Context, id int64) (*store.Proposal, error)
}

// Tools holds what the built-in tools need.
type Tools struct {
	Printer   Printer
	Proposals Proposals
}

// RegisterTools adds print_proposal, print_brochure, extract_assets and
// page_count to s.
func RegisterTools(s *Server, t Tools) {
	s.AddTool(Tool{
		Name:        "print_proposal",
		Description: "Render a proposal to PDF: cover, letterhead pages, cost table, attachments and, for agreements, the conforme page. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: objectSchema(map[string]any{
			"id":         property("integer", "Proposal id"),
			"conforme":   property("boolean", "Force the conforme page on or off. Defaults to on for agreements only."),
			"outputPath": property("string", "Optional file path to write the PDF to"),
		}, "id"),
		Handler: t.printHandler(printer.ActionPrintProposal),
	})
	s.AddTool(Tool{
		Name:        "print_brochure",
		Description: "Render a brochure to PDF. Returns the PDF as base64 unless outputPath is given.",
		InputSchema: objectSchema(map[string]any{
			"id":         property("integer", "Brochure id"),
			"outputPath": property("string", "Optional file path to write the PDF to"),
		}, "id"),
		Handler: t.printHandler(printer.ActionPrintBrochure),
	})
	s.AddTool(Tool{
		Name:        "extract_assets",
		Description: "List the asset ids a proposal selects for its cover, mockup, portfolio, terms, agreement and ending slots, plus the linked agreement content.",
		InputSchema: objectSchema(map[string]any{
			"id": property("integer", "Proposal id"),
		}, "id"),
		Handler: t.extractAssets,
	})
	s.AddTool(Tool{
		Name:        "page_count",
		Description: "Count the pages of a PDF file on disk.",
		InputSchema: objectSchema(map[string]any{
			"path": property("string", "Path to the PDF file"),
		}, "path"),
		Handler: pageCount,
	})
}

func objectSchema(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func property(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}

func (t Tools) printHandler(action printer.ActionKind) ToolHandler {
	return func(ctx context.Context, args map[string]any) (ToolResult, error) {
		if t.Printer == nil {
			return ToolResult{}, errors.New("printing is not configured")
		}
		id, err := intArg(args, "id")
		if err != nil {
			return ToolResult{}, err
		}
		cmd, err := printer.NewCommand(action, id)
		if err != nil {
			return ToolResult{}, err
		}
		if v, ok := args["conforme"]; ok && action == printer.ActionPrintProposal {
			b, ok := v.(bool)
			if !ok {
				return ToolResult{}, fmt.Errorf("'conforme' must be a boolean")
			}
			cmd.IncludeConforme = &b
		}

		out, err := t.Printer.Print(ctx, cmd)
		if err != nil {
			return ToolResult{}, err
		}
		summary := fmt.Sprintf("%s: %d bytes, %d pages, %d warnings", out.Filename, len(out.PDF), out.Pages, len(out.Warnings))
		if out.Cached {
			summary = fmt.Sprintf("%s: %d bytes (cached)", out.Filename, len(out.PDF))
		}
		for _, w := range out.Warnings {
			summary += "\n  warning: " + w.String()
		}

		if path, ok := args["outputPath"].(string); ok && path != "" {
			if err := os.WriteFile(path, out.PDF, 0o644); err != nil {
				return ToolResult{}, fmt.Errorf("writing file: %w", err)
			}
			return textResult(fmt.Sprintf("Wrote %s\n%s", path, summary)), nil
		}
		return ToolResult{Content: []ContentBlock{
			{Type: "text", Text: summary},
			{Type: "resource", MIMEType: "application/pdf", Data: base64.StdEncoding.EncodeToString(out.PDF)},
		}}, nil
	}
}

type extractedAssets struct {
	assets.Selection
	LinkedContent int64 `json:"linked_content,omitempty"`
}

func (t Tools) extractAssets(ctx context.Context, args map[string]any) (ToolResult, error) {
	if t.Proposals == nil {
		return ToolResult{}, errors.New("proposal lookup is not configured")
	}
	id, err := intArg(args, "id")
	if err != nil {
		return ToolResult{}, err
	}
	p, err := t.Proposals.Proposal(ctx, id)
	if err != nil {
		return ToolResult{}, err
	}
	sel := extractedAssets{
		Selection:     assets.Extract(p.Data),
		LinkedContent: assets.LinkedContent(p.Data),
	}
	data, err := json.MarshalIndent(sel, "", "  ")
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(string(data)), nil
}

func pageCount(_ context.Context, args map[string]any) (ToolResult, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return ToolResult{}, fmt.Errorf("missing 'path' argument")
	}
	n, err := pdfengine.PageCount(path)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(fmt.Sprintf(`{"path": %q, "pages": %d}`, path, n)), nil
}

// intArg reads a positive integer argument. JSON numbers arrive as
// float64; numeric strings are accepted too.
func intArg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("'%s' must be an integer", name)
		}
		return int64(v), nil
	case string:
		id := assets.ToID(v)
		if id == 0 {
			return 0, fmt.Errorf("'%s' must be an integer", name)
		}
		return id, nil
	case nil:
		return 0, fmt.Errorf("missing '%s' argument", name)
	}
	return 0, fmt.Errorf("'%s' must be an integer", name)
}
