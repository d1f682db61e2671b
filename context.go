// Package proposalpdf assembles proposal, agreement, cost estimate and
// brochure PDFs from a RenderContext.
//
// Assembly runs a fixed sequence of steps: cover pages, letterhead,
// stylesheet, the rendered body, attached portfolio/mockup/terms files,
// agreement content, the conforme page and the ending page. A missing or
// corrupt attachment is logged and skipped; anything else that goes wrong
// aborts the render with ErrRender.
package proposalpdf

import (
	"strings"

	"github.com/lvillar/proposalpdf/assets"
	"github.com/lvillar/proposalpdf/render"
	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/section"
)

// DocumentKind selects the letterhead and whether agreement content is
// included.
type DocumentKind string

const (
	KindProposal     DocumentKind = "proposal"
	KindAgreement    DocumentKind = "agreement"
	KindCostEstimate DocumentKind = "cost_estimate"
	KindBrochure     DocumentKind = "brochure"
)

// ParseDocumentKind maps a stored proposal_type to a kind. Unknown and
// empty values are proposals.
func ParseDocumentKind(s string) DocumentKind {
	switch k := DocumentKind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindAgreement, KindCostEstimate, KindBrochure:
		return k
	}
	return KindProposal
}

// HeaderLabel is the running header text for the kind. Brochures have no
// letterhead and return "".
func (k DocumentKind) HeaderLabel() string {
	switch k {
	case KindAgreement:
		return "Agreement"
	case KindCostEstimate:
		return "Cost Estimate"
	case KindBrochure:
		return ""
	}
	return "Proposal"
}

// LinkedContent is a titled HTML body rendered on its own page for
// agreements that have no agreement file.
type LinkedContent struct {
	Title string
	Body  string
}

// RenderContext is everything one render needs. It is built per request
// and owned by that render.
type RenderContext struct {
	Kind  DocumentKind
	Title string
	// Reference identifies the owning record, e.g. "proposal:42". It is
	// encoded in the conforme QR code when that is enabled.
	Reference string
	Record    any

	Schema   *schema.Definition
	Data     schema.Document
	Sections []section.Section
	Items    []render.LineItem
	Meta     []render.MetaField
	Currency string

	Assets          assets.Selection
	LinkedContentID int64

	IncludeConforme bool
	AmountInWords   bool
}

// content is the renderer input for the body page.
func (rc *RenderContext) content() render.Content {
	sections := rc.Sections
	if sections == nil && rc.Schema != nil {
		sections = section.Build(rc.Schema)
	}
	return render.Content{
		Title:         rc.Title,
		Currency:      rc.Currency,
		Meta:          rc.Meta,
		Items:         rc.Items,
		Sections:      sections,
		Data:          rc.Data,
		AmountInWords: rc.AmountInWords,
	}
}
