package proposalpdf

import (
	"context"
	"log/slog"
	"time"

	"github.com/lvillar/proposalpdf/pdfengine"
)

// DefaultDateFormat is the footer date layout (day-month-year).
const DefaultDateFormat = "2-01-2006"

// PathResolver maps an asset id to an absolute file path.
type PathResolver interface {
	ResolveFilePath(ctx context.Context, id int64) (string, error)
}

// ContentSource loads the linked content rendered for agreements.
type ContentSource interface {
	LinkedContent(ctx context.Context, id int64) (LinkedContent, error)
}

// EngineFactory creates the document for one render.
type EngineFactory func(title, author string) Engine

// Option is a functional option for configuring an Assembler via New.
type Option func(*Assembler)

// WithLogger sets the logger that receives attachment warnings.
func WithLogger(l *slog.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// WithResolver sets how asset ids become file paths.
func WithResolver(r PathResolver) Option {
	return func(a *Assembler) {
		a.resolver = r
	}
}

// WithContentSource sets where agreement linked content is loaded from.
func WithContentSource(s ContentSource) Option {
	return func(a *Assembler) {
		a.content = s
	}
}

// WithEngineFactory replaces the PDF engine. Tests use it to record calls.
func WithEngineFactory(f EngineFactory) Option {
	return func(a *Assembler) {
		a.newEngine = f
	}
}

// WithEngineOptions passes options to the default gofpdf engine.
func WithEngineOptions(opts ...pdfengine.Option) Option {
	return func(a *Assembler) {
		a.engineOpts = append(a.engineOpts, opts...)
	}
}

// WithStylesheetPath sets the CSS file layered over the built-in styles.
// A path that does not exist is skipped at render time.
func WithStylesheetPath(path string) Option {
	return func(a *Assembler) {
		a.stylesheetPath = path
	}
}

// WithOrganization sets the author metadata and the footer name.
func WithOrganization(name string) Option {
	return func(a *Assembler) {
		a.organization = name
	}
}

// WithDateFormat sets the time layout of the footer date.
func WithDateFormat(layout string) Option {
	return func(a *Assembler) {
		a.dateFormat = layout
	}
}

// WithClock sets the time source for the footer date.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithConformeQR prints the render context's Reference as a QR code on
// the conforme page.
func WithConformeQR(enabled bool) Option {
	return func(a *Assembler) {
		a.conformeQR = enabled
	}
}
