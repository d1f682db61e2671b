// Package render turns a document's data into the HTML body written onto
// its content pages.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/section"
)

// DefaultCurrency is used when a document carries no currency code.
const DefaultCurrency = "PHP"

// MetaField is a label/value pair printed verbatim near the top.
type MetaField struct {
	Label string
	Value string
}

// LineItem is one priced row of the cost breakdown.
type LineItem struct {
	Name        string
	Description string
	Quantity    int
	UnitPrice   float64
	TotalPrice  float64
}

// Content is everything the renderer reads.
type Content struct {
	Title         string
	Currency      string
	Meta          []MetaField
	Items         []LineItem
	Sections      []section.Section
	Data          schema.Document
	AmountInWords bool
}

// HTML renders the body markup. Blocks are emitted in a fixed order: title,
// meta fields, cost breakdown, then sections in schema order.
func HTML(c Content) string {
	var b strings.Builder
	if c.Title != "" {
		fmt.Fprintf(&b, "<h1>%s</h1>", esc(c.Title))
	}
	for _, m := range c.Meta {
		if m.Value == "" {
			continue
		}
		fmt.Fprintf(&b, `<div class="field-label">%s</div><div class="field-value"><p>%s</p></div>`, esc(m.Label), esc(m.Value))
	}
	if len(c.Items) > 0 {
		writeCostBreakdown(&b, c)
	}
	for _, s := range c.Sections {
		writeSection(&b, s, c.Data)
	}
	return b.String()
}

// Total sums the items' total prices.
func Total(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.TotalPrice
	}
	return total
}

func writeCostBreakdown(b *strings.Builder, c Content) {
	currency := c.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	b.WriteString(`<h2>Cost Breakdown</h2><table class="cost-breakdown-table">`)
	b.WriteString(`<thead><tr><th>Item</th><th>Description</th><th>Amount</th></tr></thead><tbody>`)
	for _, it := range c.Items {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>", esc(it.Name), esc(it.Description), FormatMoney(it.TotalPrice))
	}
	total := Total(c.Items)
	fmt.Fprintf(b, `<tr class="totals-row"><td colspan="2">Total (%s)</td><td>%s</td></tr>`, esc(currency), FormatMoney(total))
	b.WriteString("</tbody></table>")
	if c.AmountInWords {
		fmt.Fprintf(b, `<p class="amount-words">%s</p>`, esc(AmountInWords(total, currency)))
	}
}

func writeSection(b *strings.Builder, s section.Section, data schema.Document) {
	hasContent := false
	for _, e := range s.Entries {
		if !schema.IsEmpty(schema.Get(data, e.Key, "")) {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return
	}

	// Any one field flagged label_hidden_in_pdf hides the whole section's
	// heading.
	hideHeading := s.HeadingHidden()
	for _, e := range s.Entries {
		if e.Field.LabelHiddenInPDF {
			hideHeading = true
			break
		}
	}
	if !hideHeading {
		fmt.Fprintf(b, "<h2>%s</h2>", esc(s.Title()))
	}

	for _, e := range s.Entries {
		v := schema.Get(data, e.Key, "")
		if schema.IsEmpty(v) || e.Field.HiddenInPDF {
			continue
		}
		switch e.Field.Type {
		case schema.TypePaymentSchedule:
			writeBlock(b, labelOr(e, "Payment Schedule"), v)
		case schema.TypeOptionalExtras:
			writeBlock(b, labelOr(e, "Optional Extras"), v)
		default:
			writeField(b, labelOr(e, e.Key), v, e.Field.Type)
		}
	}
}

func labelOr(e section.Entry, fallback string) string {
	if e.Field.Label != "" {
		return e.Field.Label
	}
	return fallback
}

func writeBlock(b *strings.Builder, label string, v any) {
	fmt.Fprintf(b, `<div class="field-label">%s</div><div class="field-value">`, esc(label))
	switch t := v.(type) {
	case schema.RichText:
		b.WriteString(schema.SanitizeRichText(autop(string(t))))
	case string:
		b.WriteString(schema.SanitizeRichText(autop(t)))
	case schema.Milestones:
		b.WriteString("<table><thead><tr><th>Milestone</th><th>Amount</th><th>Due Date</th></tr></thead><tbody>")
		for _, m := range t {
			fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>", esc(m.Milestone), esc(m.Amount), esc(m.DueDate))
		}
		b.WriteString("</tbody></table>")
	case schema.ExtrasList:
		b.WriteString("<ul>")
		for _, x := range t {
			item := esc(x.Name)
			if x.Price != "" {
				item += " - " + esc(x.Price)
			}
			fmt.Fprintf(b, "<li>%s</li>", item)
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</div>")
}

func writeField(b *strings.Builder, label string, v any, typ schema.FieldType) {
	fmt.Fprintf(b, `<div class="field-label">%s</div><div class="field-value">`, esc(label))
	switch {
	case typ.IsRichText():
		b.WriteString(schema.SanitizeRichText(autop(text(v))))
	case typ.IsMulti() && isList(v):
		b.WriteString("<ul>")
		for _, item := range list(v) {
			fmt.Fprintf(b, "<li>%s</li>", esc(item))
		}
		b.WriteString("</ul>")
	default:
		fmt.Fprintf(b, "<p>%s</p>", esc(text(v)))
	}
	b.WriteString("</div>")
}

func isList(v any) bool {
	switch v.(type) {
	case []string, []any:
		return true
	}
	return false
}

func list(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, text(e))
		}
		return out
	}
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case schema.RichText:
		return string(t)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func esc(s string) string {
	return html.EscapeString(s)
}

var (
	blockTag   = regexp.MustCompile(`(?i)<(p|div|ul|ol|table|h[1-6]|blockquote|pre)[\s>]`)
	paragraphs = regexp.MustCompile(`\n\s*\n`)
)

// autop wraps plain text in paragraphs: blank lines separate paragraphs and
// single newlines become line breaks. Text already containing block markup
// is returned unchanged.
func autop(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
	if s == "" || blockTag.MatchString(s) {
		return s
	}
	var b strings.Builder
	for _, p := range paragraphs.Split(s, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(p, "\n", "<br />\n"))
		b.WriteString("</p>\n")
	}
	return strings.TrimSpace(b.String())
}
