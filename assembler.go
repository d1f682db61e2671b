package proposalpdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/lvillar/proposalpdf/logging"
	"github.com/lvillar/proposalpdf/markup"
	"github.com/lvillar/proposalpdf/pdfengine"
	"github.com/lvillar/proposalpdf/render"
)

// Step names one stage of assembly in the order it runs.
type Step string

const (
	StepCover      Step = "cover"
	StepLetterhead Step = "letterhead"
	StepStyles     Step = "styles"
	StepBody       Step = "body"
	StepPortfolio  Step = "portfolio"
	StepMockup     Step = "mockup"
	StepTerms      Step = "terms"
	StepAgreement  Step = "agreement"
	StepConforme   Step = "conforme"
	StepEnding     Step = "ending"
	StepOutput     Step = "output"
)

// Engine is the PDF document an Assembler drives. *pdfengine.Document
// implements it.
type Engine interface {
	ImportAllPages(path string) (int, error)
	AddPage()
	SetBands(header, footer pdfengine.Band)
	ApplyStylesheet(s *markup.Stylesheet)
	WriteMarkup(body string) error
	PageCount() int
	Output(w io.Writer) error
}

// Warning records an attachment that was skipped.
type Warning struct {
	Step    Step
	AssetID int64
	Path    string
	Err     error
}

func (w Warning) String() string {
	if w.Path != "" {
		return fmt.Sprintf("%s asset %d (%s): %v", w.Step, w.AssetID, w.Path, w.Err)
	}
	return fmt.Sprintf("%s asset %d: %v", w.Step, w.AssetID, w.Err)
}

// Result is a finished document.
type Result struct {
	PDF      []byte
	Pages    int
	Warnings []Warning
}

// Assembler builds documents. It holds configuration only and may be
// shared; each Assemble call uses its own engine.
type Assembler struct {
	resolver       PathResolver
	content        ContentSource
	newEngine      EngineFactory
	engineOpts     []pdfengine.Option
	logger         *slog.Logger
	stylesheetPath string
	organization   string
	dateFormat     string
	now            func() time.Time
	conformeQR     bool
}

// New returns an Assembler using the gofpdf engine unless an
// EngineFactory is given.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		dateFormat: DefaultDateFormat,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.newEngine == nil {
		a.newEngine = a.defaultEngine
	}
	return a
}

func (a *Assembler) defaultEngine(title, author string) Engine {
	opts := append([]pdfengine.Option{
		pdfengine.WithTitle(title),
		pdfengine.WithAuthor(author),
	}, a.engineOpts...)
	return pdfengine.New(opts...)
}

func (a *Assembler) log(ctx context.Context) *slog.Logger {
	if l := logging.FromContext(ctx); l != nil {
		return l
	}
	if a.logger != nil {
		return a.logger
	}
	return logging.Logger()
}

// job is the state of one Assemble call.
type job struct {
	a        *Assembler
	ctx      context.Context
	rc       *RenderContext
	eng      Engine
	log      *slog.Logger
	warnings []Warning
}

// Assemble renders rc to PDF. Attachments that cannot be resolved or read
// are skipped and listed in Result.Warnings. Any other failure, including
// a panic inside the engine, returns an error matching ErrRender and no
// document.
func (a *Assembler) Assemble(ctx context.Context, rc *RenderContext) (res *Result, err error) {
	if rc == nil {
		return nil, fmt.Errorf("%w: nil render context", ErrInvalidInput)
	}
	title := rc.Title
	if title == "" {
		title = "Proposal"
	}
	j := &job{
		a:   a,
		ctx: ctx,
		rc:  rc,
		log: a.log(ctx).With("kind", string(rc.Kind), "title", title),
	}

	current := StepCover
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = newAssemblyError(current, fmt.Errorf("panic: %v", r))
		}
	}()

	j.eng = a.newEngine(title, a.organization)
	steps := []struct {
		step Step
		run  func() error
	}{
		{StepCover, j.cover},
		{StepLetterhead, j.letterhead},
		{StepStyles, j.styles},
		{StepBody, j.body},
		{StepPortfolio, j.portfolios},
		{StepMockup, func() error { return j.attach(StepMockup, rc.Assets.Mockup) }},
		{StepTerms, func() error { return j.attach(StepTerms, rc.Assets.Terms) }},
		{StepAgreement, j.agreement},
		{StepConforme, j.conforme},
		{StepEnding, func() error { return j.attach(StepEnding, rc.Assets.Ending) }},
	}
	for _, s := range steps {
		current = s.step
		if err := ctx.Err(); err != nil {
			return nil, newAssemblyError(s.step, err)
		}
		if err := s.run(); err != nil {
			return nil, newAssemblyError(s.step, err)
		}
	}

	current = StepOutput
	var buf bytes.Buffer
	if err := j.eng.Output(&buf); err != nil {
		return nil, newAssemblyError(StepOutput, err)
	}
	return &Result{
		PDF:      buf.Bytes(),
		Pages:    j.eng.PageCount(),
		Warnings: j.warnings,
	}, nil
}

// cover imports the cover file before any letterhead exists, so its pages
// carry no header or footer.
func (j *job) cover() error {
	return j.attach(StepCover, j.rc.Assets.Cover)
}

func (j *job) letterhead() error {
	label := j.rc.Kind.HeaderLabel()
	if label == "" {
		return nil
	}
	header, footer := Letterhead(label, j.a.organization, j.a.now().Format(j.a.dateFormat))
	j.eng.SetBands(header, footer)
	return nil
}

// Letterhead returns the running header and footer bands: the kind label
// with the page number, and the organization with the render date.
func Letterhead(label, organization, date string) (header, footer pdfengine.Band) {
	header = pdfengine.Band{Left: label, Right: pdfengine.PageNumber}
	footer = pdfengine.Band{Left: organization, Right: date}
	return header, footer
}

// styles applies the configured stylesheet. A missing file is skipped
// quietly; a file that does not parse is reported and the built-in styles
// are kept.
func (j *job) styles() error {
	path := j.a.stylesheetPath
	if path == "" {
		return nil
	}
	sheet, err := markup.LoadStylesheet(path)
	if errors.Is(err, fs.ErrNotExist) {
		j.log.Debug("stylesheet not found", "path", path)
		return nil
	}
	if err != nil {
		j.log.Warn("stylesheet skipped", "path", path, "error", err)
		return nil
	}
	j.eng.ApplyStylesheet(sheet)
	return nil
}

func (j *job) body() error {
	j.eng.AddPage()
	return j.eng.WriteMarkup(render.HTML(j.rc.content()))
}

func (j *job) portfolios() error {
	for _, id := range j.rc.Assets.Portfolios {
		if err := j.attach(StepPortfolio, id); err != nil {
			return err
		}
	}
	return nil
}

// agreement appends the agreement file, or renders linked content when no
// file is selected. It only runs for agreements.
func (j *job) agreement() error {
	if j.rc.Kind != KindAgreement {
		return nil
	}
	if id := j.rc.Assets.Agreement; id > 0 {
		return j.attach(StepAgreement, id)
	}
	id := j.rc.LinkedContentID
	if id <= 0 {
		return nil
	}
	if j.a.content == nil {
		j.warn(StepAgreement, id, "", fmt.Errorf("%w: no content source", ErrNotFound))
		return nil
	}
	lc, err := j.a.content.LinkedContent(j.ctx, id)
	if err != nil {
		j.warn(StepAgreement, id, "", err)
		return nil
	}
	j.eng.AddPage()
	return j.eng.WriteMarkup(render.Article(lc.Title, lc.Body))
}

func (j *job) conforme() error {
	if !j.rc.IncludeConforme {
		return nil
	}
	ref := ""
	if j.a.conformeQR {
		ref = j.rc.Reference
	}
	j.eng.AddPage()
	return j.eng.WriteMarkup(render.Conforme(ref))
}

// attach resolves one asset and imports all of its pages. Failures become
// warnings; the returned error is always nil so the step order holds.
func (j *job) attach(step Step, id int64) error {
	if id <= 0 {
		return nil
	}
	if j.a.resolver == nil {
		j.warn(step, id, "", fmt.Errorf("%w: no asset resolver", ErrSourceNotFound))
		return nil
	}
	path, err := j.a.resolver.ResolveFilePath(j.ctx, id)
	if err != nil {
		j.warn(step, id, "", err)
		return nil
	}
	n, err := j.eng.ImportAllPages(path)
	if err != nil {
		j.warn(step, id, path, err)
		return nil
	}
	j.log.Debug("asset appended", "step", string(step), "asset_id", id, "pages", n)
	return nil
}

func (j *job) warn(step Step, id int64, path string, err error) {
	j.warnings = append(j.warnings, Warning{Step: step, AssetID: id, Path: path, Err: err})
	j.log.Warn("asset skipped",
		"step", string(step),
		"asset_id", id,
		"path", path,
		"error", err,
	)
}
