package render

import (
	"fmt"
	"strings"

	"github.com/lvillar/proposalpdf/schema"
)

// ConformeStatement is the acknowledgement printed above the signature
// lines.
const ConformeStatement = "By signing below, the client acknowledges and agrees to the terms and conditions outlined in this proposal."

// Conforme renders the signature page: a heading, the acknowledgement and
// two rows of signature lines. A non-empty reference is added as a QR code.
func Conforme(reference string) string {
	var b strings.Builder
	b.WriteString(`<div class="conforme">`)
	b.WriteString("<h2>Conforme</h2>")
	fmt.Fprintf(&b, "<p>%s</p>", esc(ConformeStatement))
	b.WriteString(`<table class="signature-lines">`)
	b.WriteString("<tr><td>Client Signature</td><td>Date</td></tr>")
	b.WriteString("<tr><td>Printed Name</td><td>Position/Title</td></tr>")
	b.WriteString("</table>")
	if reference != "" {
		fmt.Fprintf(&b, `<div class="qr" data-value="%s"></div>`, esc(reference))
	}
	b.WriteString("</div>")
	return b.String()
}

// Article renders linked content: the title as a heading followed by the
// sanitized, paragraph-wrapped body.
func Article(title, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", esc(title))
	b.WriteString(autop(schema.SanitizeRichText(body)))
	return b.String()
}
