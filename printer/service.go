package printer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/lvillar/proposalpdf"
	"github.com/lvillar/proposalpdf/assets"
	"github.com/lvillar/proposalpdf/cache"
	"github.com/lvillar/proposalpdf/logging"
	"github.com/lvillar/proposalpdf/render"
	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/section"
	"github.com/lvillar/proposalpdf/store"
)

// MetaDateLayout formats the Date meta field.
const MetaDateLayout = "January 2, 2006"

// Records loads the records that can be printed. *store.Store implements it.
type Records interface {
	ProposalWithItems(ctx context.Context, id int64) (*store.Proposal, error)
	Brochure(ctx context.Context, id int64) (*store.Brochure, error)
}

// Schemas serves schema definitions. *schema.Provider implements it.
type Schemas interface {
	SchemaFor(kind schema.Kind) (*schema.Definition, error)
}

// Renderer assembles a render context. *proposalpdf.Assembler implements it.
type Renderer interface {
	Assemble(ctx context.Context, rc *proposalpdf.RenderContext) (*proposalpdf.Result, error)
}

// Output is a rendered document ready to be served.
type Output struct {
	Filename string
	PDF      []byte
	Pages    int
	Warnings []proposalpdf.Warning
	Cached   bool
}

// Service prints proposals and brochures.
type Service struct {
	records       Records
	schemas       Schemas
	renderer      Renderer
	cache         cache.Cache
	logger        *slog.Logger
	amountInWords bool
	now           func() time.Time
}

// Option is a functional option for configuring a Service via New.
type Option func(*Service)

// WithCache stores rendered documents in c. Renders with warnings are not
// cached, nor are renders that append assets or linked content, whose edits
// do not touch the record's version.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithAmountInWords adds the spelled-out total below cost tables.
func WithAmountInWords(enabled bool) Option {
	return func(s *Service) {
		s.amountInWords = enabled
	}
}

// WithClock sets the time source used to date cache entries. The assembler
// should share it so the footer date matches the key.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(records Records, schemas Schemas, renderer Renderer, opts ...Option) *Service {
	s := &Service{
		records:  records,
		schemas:  schemas,
		renderer: renderer,
		cache:    cache.Nop{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Logger()
	}
	return s
}

// Print renders the record named by cmd. A missing record returns an error
// matching proposalpdf.ErrNotFound.
func (s *Service) Print(ctx context.Context, cmd Command) (*Output, error) {
	if _, ok := idParam[cmd.Action]; !ok || cmd.ID <= 0 {
		return nil, fmt.Errorf("%w: bad command %s/%d", proposalpdf.ErrInvalidInput, cmd.Action, cmd.ID)
	}
	log := s.logger.With("action", string(cmd.Action), "id", cmd.ID, "render_id", cmd.RenderID.String())
	ctx = logging.NewContext(ctx, log)

	rc, key, err := s.load(ctx, cmd)
	if err != nil {
		return nil, err
	}
	out := &Output{Filename: Filename(rc.Title)}
	cacheable := rc.Assets.Empty() && rc.LinkedContentID == 0

	if !cacheable {
		log.Debug("cache bypassed", "linked_content", rc.LinkedContentID)
	} else if data, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Warn("cache read failed", "error", err)
	} else if ok {
		log.Debug("served from cache")
		out.PDF, out.Cached = data, true
		return out, nil
	}

	start := time.Now()
	res, err := s.renderer.Assemble(ctx, rc)
	if err != nil {
		log.Error("render failed", "error", err)
		return nil, err
	}
	log.Info("document rendered",
		"pages", res.Pages,
		"warnings", len(res.Warnings),
		"duration", time.Since(start),
	)
	out.PDF, out.Pages, out.Warnings = res.PDF, res.Pages, res.Warnings
	if cacheable && len(res.Warnings) == 0 {
		if err := s.cache.Set(ctx, key, res.PDF); err != nil {
			log.Warn("cache write failed", "error", err)
		}
	}
	return out, nil
}

func (s *Service) load(ctx context.Context, cmd Command) (*proposalpdf.RenderContext, string, error) {
	switch cmd.Action {
	case ActionPrintBrochure:
		b, err := s.records.Brochure(ctx, cmd.ID)
		if err != nil {
			return nil, "", err
		}
		rc, err := s.BrochureContext(b)
		if err != nil {
			return nil, "", err
		}
		return rc, cache.Key(string(rc.Kind), b.ID, b.UpdatedAt, false, s.now()), nil
	default:
		p, err := s.records.ProposalWithItems(ctx, cmd.ID)
		if err != nil {
			return nil, "", err
		}
		rc, err := s.ProposalContext(p, cmd.IncludeConforme)
		if err != nil {
			return nil, "", err
		}
		return rc, cache.Key(string(rc.Kind), p.ID, p.UpdatedAt, rc.IncludeConforme, s.now()), nil
	}
}

// ProposalContext builds the render context of a proposal. conforme, when
// set, overrides the agreement-only default.
func (s *Service) ProposalContext(p *store.Proposal, conforme *bool) (*proposalpdf.RenderContext, error) {
	def, err := s.schemas.SchemaFor(schema.KindProposal)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	data := schema.Normalize(def, p.Data)
	kind := proposalpdf.ParseDocumentKind(p.ProposalType)
	if kind == proposalpdf.KindBrochure {
		kind = proposalpdf.KindProposal
	}

	title := p.Name
	if title == "" {
		title = "Proposal"
	}
	include := kind == proposalpdf.KindAgreement
	if conforme != nil {
		include = *conforme
	}

	return &proposalpdf.RenderContext{
		Kind:            kind,
		Title:           title,
		Reference:       fmt.Sprintf("%s:%d", kind, p.ID),
		Record:          p,
		Schema:          def,
		Data:            data,
		Sections:        section.Build(def),
		Items:           LineItems(p.Items),
		Meta:            ProposalMeta(p),
		Currency:        p.Currency,
		Assets:          assets.Extract(data),
		LinkedContentID: assets.LinkedContent(data),
		IncludeConforme: include,
		AmountInWords:   s.amountInWords,
	}, nil
}

// LineItems converts stored items to renderer rows.
func LineItems(items []store.ProposalItem) []render.LineItem {
	out := make([]render.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, render.LineItem{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return out
}

// ProposalMeta returns the Date, Client Name and Project Name fields.
func ProposalMeta(p *store.Proposal) []render.MetaField {
	date := ""
	if !p.CreatedAt.IsZero() {
		date = p.CreatedAt.Format(MetaDateLayout)
	}
	return []render.MetaField{
		{Label: "Date", Value: date},
		{Label: "Client Name", Value: p.ClientName},
		{Label: "Project Name", Value: p.ProjectName},
	}
}

// BrochureContext builds the render context of a brochure: title and
// sections only.
func (s *Service) BrochureContext(b *store.Brochure) (*proposalpdf.RenderContext, error) {
	def, err := s.schemas.SchemaFor(schema.KindBrochure)
	if err != nil {
		return nil, fmt.Errorf("printer: %w", err)
	}
	data := schema.Normalize(def, b.Data)
	title := b.Title
	if title == "" {
		title = "Brochure"
	}
	return &proposalpdf.RenderContext{
		Kind:      proposalpdf.KindBrochure,
		Title:     title,
		Reference: fmt.Sprintf("%s:%d", proposalpdf.KindBrochure, b.ID),
		Record:    b,
		Schema:    def,
		Data:      data,
		Sections:  section.Build(def),
		Assets:    assets.Extract(data),
	}, nil
}

// Filename returns title as a safe file name with a .pdf extension.
// Letters, digits, '-', '_' and '.' are kept, whitespace runs become a
// single '-', and everything else is dropped.
func Filename(title string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			if space && b.Len() > 0 {
				b.WriteByte('-')
			}
			space = false
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), ".-_")
	if name == "" {
		name = "document"
	}
	return name + ".pdf"
}
