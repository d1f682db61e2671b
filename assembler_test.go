package proposalpdf_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/proposalpdf"
	"github.com/lvillar/proposalpdf/assets"
	"github.com/lvillar/proposalpdf/logging"
	"github.com/lvillar/proposalpdf/markup"
	"github.com/lvillar/proposalpdf/pdfengine"
	"github.com/lvillar/proposalpdf/render"
)

// recordingEngine logs every call the assembler makes.
type recordingEngine struct {
	calls    []string
	markups  []string
	broken   map[string]bool
	failBody bool
	panicOn  string
}

func (e *recordingEngine) ImportAllPages(path string) (int, error) {
	if path == e.panicOn {
		panic("engine exploded")
	}
	if e.broken[path] {
		return 0, fmt.Errorf("%w: bad xref", pdfengine.ErrSourceUnreadable)
	}
	e.calls = append(e.calls, "import:"+path)
	return 1, nil
}

func (e *recordingEngine) AddPage() {
	e.calls = append(e.calls, "page")
}

func (e *recordingEngine) SetBands(header, footer pdfengine.Band) {
	e.calls = append(e.calls, fmt.Sprintf("bands:%s|%s/%s|%s", header.Left, header.Right, footer.Left, footer.Right))
}

func (e *recordingEngine) ApplyStylesheet(*markup.Stylesheet) {
	e.calls = append(e.calls, "styles")
}

func (e *recordingEngine) WriteMarkup(body string) error {
	if e.failBody {
		return errors.New("markup: font missing")
	}
	e.calls = append(e.calls, "markup")
	e.markups = append(e.markups, body)
	return nil
}

func (e *recordingEngine) PageCount() int {
	n := 0
	for _, c := range e.calls {
		if c == "page" || strings.HasPrefix(c, "import:") {
			n++
		}
	}
	return n
}

func (e *recordingEngine) Output(w io.Writer) error {
	_, err := io.WriteString(w, "%PDF-fake")
	return err
}

// mapResolver resolves asset ids from a fixed table.
type mapResolver map[int64]string

func (m mapResolver) ResolveFilePath(_ context.Context, id int64) (string, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return "", fmt.Errorf("asset %d: %w", id, assets.ErrNotFound)
}

type staticContent map[int64]proposalpdf.LinkedContent

func (s staticContent) LinkedContent(_ context.Context, id int64) (proposalpdf.LinkedContent, error) {
	if lc, ok := s[id]; ok {
		return lc, nil
	}
	return proposalpdf.LinkedContent{}, proposalpdf.ErrNotFound
}

var fixedNow = func() time.Time {
	return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
}

func newTestAssembler(eng *recordingEngine, opts ...proposalpdf.Option) *proposalpdf.Assembler {
	base := []proposalpdf.Option{
		proposalpdf.WithEngineFactory(func(title, author string) proposalpdf.Engine { return eng }),
		proposalpdf.WithOrganization("Acme Studio"),
		proposalpdf.WithClock(fixedNow),
		proposalpdf.WithResolver(mapResolver{
			1: "cover.pdf", 2: "portfolio-a.pdf", 3: "portfolio-b.pdf", 4: "mockup.pdf",
			5: "terms.pdf", 6: "agreement.pdf", 7: "ending.pdf",
		}),
	}
	return proposalpdf.New(append(base, opts...)...)
}

func TestAssembleStepOrder(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng)
	rc := &proposalpdf.RenderContext{
		Kind:  proposalpdf.KindAgreement,
		Title: "Website Revamp",
		Assets: assets.Selection{
			Cover: 1, Portfolios: []int64{2, 3}, Mockup: 4, Terms: 5, Agreement: 6, Ending: 7,
		},
		LinkedContentID: 11,
		IncludeConforme: true,
	}

	res, err := a.Assemble(context.Background(), rc)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{
		"import:cover.pdf",
		"bands:Agreement|{PAGENO}/Acme Studio|19-10-2026",
		"page",
		"markup",
		"import:portfolio-a.pdf",
		"import:portfolio-b.pdf",
		"import:mockup.pdf",
		"import:terms.pdf",
		"import:agreement.pdf",
		"page",
		"markup",
		"import:ending.pdf",
	}
	if diff := cmp.Diff(want, eng.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
	if string(res.PDF) != "%PDF-fake" {
		t.Errorf("PDF = %q", res.PDF)
	}
	if !strings.Contains(eng.markups[1], "<h2>Conforme</h2>") {
		t.Errorf("second markup block is not the conforme page: %s", eng.markups[1])
	}
}

func TestAssembleMinimalProposal(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng)
	res, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Kind:     proposalpdf.KindProposal,
		Title:    "Website Revamp",
		Currency: "PHP",
		Items: []render.LineItem{
			{Name: "Design", Quantity: 1, UnitPrice: 50000, TotalPrice: 50000},
			{Name: "Development", Quantity: 1, UnitPrice: 75000, TotalPrice: 75000},
		},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{"bands:Proposal|{PAGENO}/Acme Studio|19-10-2026", "page", "markup"}
	if diff := cmp.Diff(want, eng.calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if res.Pages != 1 {
		t.Errorf("Pages = %d, want 1", res.Pages)
	}
	body := eng.markups[0]
	if !strings.Contains(body, "<td>125,000.00</td>") || !strings.Contains(body, "Total (PHP)") {
		t.Errorf("body lacks totals row: %s", body)
	}
	if strings.Contains(body, "Conforme") {
		t.Error("unexpected conforme content")
	}
}

func TestAssembleAppendResilience(t *testing.T) {
	eng := &recordingEngine{}
	h := logging.NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelWarn})
	a := newTestAssembler(eng, proposalpdf.WithLogger(slog.New(h)))

	res, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Title:  "Website Revamp",
		Assets: assets.Selection{Portfolios: []int64{2, 99, 3}},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var imports []string
	for _, c := range eng.calls {
		if strings.HasPrefix(c, "import:") {
			imports = append(imports, c)
		}
	}
	if diff := cmp.Diff([]string{"import:portfolio-a.pdf", "import:portfolio-b.pdf"}, imports); diff != "" {
		t.Errorf("imports mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(res.Warnings))
	}
	w := res.Warnings[0]
	if w.Step != proposalpdf.StepPortfolio || w.AssetID != 99 || !errors.Is(w.Err, assets.ErrNotFound) {
		t.Errorf("unexpected warning %+v", w)
	}
	entries := h.Entries()
	if len(entries) != 1 || entries[0].Attrs["step"] != "portfolio" || entries[0].Attrs["asset_id"] != "99" {
		t.Errorf("unexpected log entries %+v", entries)
	}
}

func TestAssembleUnreadableAttachment(t *testing.T) {
	eng := &recordingEngine{broken: map[string]bool{"terms.pdf": true}}
	a := newTestAssembler(eng)
	res, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Title:  "Website Revamp",
		Assets: assets.Selection{Terms: 5, Ending: 7},
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0].Err, proposalpdf.ErrSourceUnreadable) {
		t.Fatalf("unexpected warnings %v", res.Warnings)
	}
	if res.Warnings[0].Path != "terms.pdf" {
		t.Errorf("warning path = %q", res.Warnings[0].Path)
	}
	if last := eng.calls[len(eng.calls)-1]; last != "import:ending.pdf" {
		t.Errorf("last call = %q, want ending import", last)
	}
}

func TestAssembleAgreementLinkedContent(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng, proposalpdf.WithContentSource(staticContent{
		11: {Title: "Service Agreement", Body: "Clause one."},
	}))
	_, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Kind:            proposalpdf.KindAgreement,
		Title:           "Website Revamp",
		LinkedContentID: 11,
	})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(eng.markups) != 2 {
		t.Fatalf("got %d markup blocks, want 2", len(eng.markups))
	}
	if want := "<h2>Service Agreement</h2><p>Clause one.</p>"; eng.markups[1] != want {
		t.Errorf("linked content = %q, want %q", eng.markups[1], want)
	}
}

func TestAssembleAgreementStepSkipped(t *testing.T) {
	tests := []struct {
		name string
		rc   proposalpdf.RenderContext
	}{
		{"not an agreement", proposalpdf.RenderContext{
			Kind:            proposalpdf.KindCostEstimate,
			Assets:          assets.Selection{Agreement: 6},
			LinkedContentID: 11,
		}},
		{"agreement without sources", proposalpdf.RenderContext{
			Kind: proposalpdf.KindAgreement,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := &recordingEngine{}
			a := newTestAssembler(eng, proposalpdf.WithContentSource(staticContent{
				11: {Title: "Service Agreement", Body: "Clause one."},
			}))
			rc := tt.rc
			if _, err := a.Assemble(context.Background(), &rc); err != nil {
				t.Fatal(err)
			}
			if len(eng.markups) != 1 {
				t.Errorf("got %d markup blocks, want only the body", len(eng.markups))
			}
			for _, c := range eng.calls {
				if c == "import:agreement.pdf" {
					t.Error("agreement file imported")
				}
			}
		})
	}
}

func TestAssembleAgreementFileWinsOverLinkedContent(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng, proposalpdf.WithContentSource(staticContent{
		11: {Title: "Service Agreement", Body: "Clause one."},
	}))
	_, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Kind:            proposalpdf.KindAgreement,
		Assets:          assets.Selection{Agreement: 77},
		LinkedContentID: 11,
	})
	if err != nil {
		t.Fatal(err)
	}
	// 77 does not resolve: a warning, and no fallback to linked content.
	if len(eng.markups) != 1 {
		t.Errorf("got %d markup blocks, want 1", len(eng.markups))
	}
}

func TestAssembleBrochureHasNoLetterhead(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng)
	if _, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Kind:  proposalpdf.KindBrochure,
		Title: "Spring Promo",
	}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"page", "markup"}, eng.calls); diff != "" {
		t.Errorf("call mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleStylesheet(t *testing.T) {
	dir := t.TempDir()
	css := filepath.Join(dir, "proposal.css")
	if err := os.WriteFile(css, []byte("h2 { color: #003366; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := &recordingEngine{}
	if _, err := newTestAssembler(eng, proposalpdf.WithStylesheetPath(css)).
		Assemble(context.Background(), &proposalpdf.RenderContext{Title: "X"}); err != nil {
		t.Fatal(err)
	}
	if eng.calls[1] != "styles" {
		t.Errorf("calls = %v, want styles after letterhead", eng.calls)
	}

	eng = &recordingEngine{}
	res, err := newTestAssembler(eng, proposalpdf.WithStylesheetPath(filepath.Join(dir, "missing.css"))).
		Assemble(context.Background(), &proposalpdf.RenderContext{Title: "X"})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range eng.calls {
		if c == "styles" {
			t.Error("missing stylesheet was applied")
		}
	}
	if len(res.Warnings) != 0 {
		t.Errorf("missing stylesheet produced warnings: %v", res.Warnings)
	}
}

func TestAssembleConformeQR(t *testing.T) {
	eng := &recordingEngine{}
	a := newTestAssembler(eng, proposalpdf.WithConformeQR(true))
	if _, err := a.Assemble(context.Background(), &proposalpdf.RenderContext{
		Title:           "X",
		Reference:       "proposal:42",
		IncludeConforme: true,
	}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(eng.markups[1], `data-value="proposal:42"`) {
		t.Errorf("conforme page lacks QR reference: %s", eng.markups[1])
	}
}

func TestAssembleFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		eng  *recordingEngine
		ctx  func() context.Context
		step proposalpdf.Step
	}{
		{
			name: "markup failure",
			eng:  &recordingEngine{failBody: true},
			ctx:  context.Background,
			step: proposalpdf.StepBody,
		},
		{
			name: "engine panic",
			eng:  &recordingEngine{panicOn: "mockup.pdf"},
			ctx:  context.Background,
			step: proposalpdf.StepMockup,
		},
		{
			name: "canceled",
			eng:  &recordingEngine{},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			step: proposalpdf.StepCover,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAssembler(tt.eng)
			res, err := a.Assemble(tt.ctx(), &proposalpdf.RenderContext{
				Title:  "X",
				Assets: assets.Selection{Mockup: 4},
			})
			if !errors.Is(err, proposalpdf.ErrRender) {
				t.Fatalf("expected ErrRender, got %v", err)
			}
			if res != nil {
				t.Error("expected no result on fatal error")
			}
			var aerr *proposalpdf.AssemblyError
			if !errors.As(err, &aerr) || aerr.Step != tt.step {
				t.Errorf("error = %v, want step %s", err, tt.step)
			}
		})
	}
}

func TestAssembleNilContext(t *testing.T) {
	_, err := proposalpdf.New().Assemble(context.Background(), nil)
	if !errors.Is(err, proposalpdf.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestParseDocumentKind(t *testing.T) {
	tests := map[string]proposalpdf.DocumentKind{
		"":              proposalpdf.KindProposal,
		"proposal":      proposalpdf.KindProposal,
		"Agreement":     proposalpdf.KindAgreement,
		"cost_estimate": proposalpdf.KindCostEstimate,
		"brochure":      proposalpdf.KindBrochure,
		"quote":         proposalpdf.KindProposal,
	}
	for in, want := range tests {
		if got := proposalpdf.ParseDocumentKind(in); got != want {
			t.Errorf("ParseDocumentKind(%q) = %q, want %q", in, got, want)
		}
	}
	if got := proposalpdf.KindCostEstimate.HeaderLabel(); got != "Cost Estimate" {
		t.Errorf("HeaderLabel = %q", got)
	}
}
