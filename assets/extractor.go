// Package assets extracts the asset references selected in a data document
// and resolves asset identifiers to files on disk.
package assets

import (
	"strconv"
	"strings"

	"github.com/lvillar/proposalpdf/schema"
)

// Slot names one singular asset position in an assembled document.
type Slot string

const (
	SlotCover     Slot = "cover"
	SlotMockup    Slot = "mockup"
	SlotTerms     Slot = "terms"
	SlotEnding    Slot = "ending"
	SlotAgreement Slot = "agreement_pdf"
)

// Aliases lists, per slot, every data-document key ever used to store that
// selection, most specific first. New renames are added here.
var Aliases = map[Slot][]string{
	SlotCover:     {"assets.cover_page", "assets.cover", "cover_page", "cover"},
	SlotMockup:    {"assets.mockup_pdf", "assets.mockup", "mockup_pdf", "mockup"},
	SlotTerms:     {"assets.terms_pdf", "assets.terms", "terms_conditions", "terms"},
	SlotEnding:    {"assets.ending_page", "assets.ending", "ending_page", "ending"},
	SlotAgreement: {"assets.agreement_pdf", "assets.agreement", "agreement_pdf"},
}

// PortfolioAliases are the keys probed for the portfolio list.
var PortfolioAliases = []string{"assets.portfolio_pdfs", "assets.portfolios", "portfolio_pdfs", "portfolios"}

// LinkedContentAliases are the keys probed for the text snippet rendered as
// agreement content.
var LinkedContentAliases = []string{"assets.agreement_content", "agreement_content"}

// Selection holds the asset identifiers chosen for one document. Zero means
// nothing was selected for that slot.
type Selection struct {
	Cover      int64   `json:"cover,omitempty"`
	Mockup     int64   `json:"mockup,omitempty"`
	Terms      int64   `json:"terms,omitempty"`
	Ending     int64   `json:"ending,omitempty"`
	Agreement  int64   `json:"agreement_pdf,omitempty"`
	Portfolios []int64 `json:"portfolios"`
}

// Get returns the identifier selected for a singular slot.
func (s Selection) Get(slot Slot) int64 {
	switch slot {
	case SlotCover:
		return s.Cover
	case SlotMockup:
		return s.Mockup
	case SlotTerms:
		return s.Terms
	case SlotEnding:
		return s.Ending
	case SlotAgreement:
		return s.Agreement
	}
	return 0
}

// Empty reports whether no asset is selected in any slot.
func (s Selection) Empty() bool {
	return s.Cover == 0 && s.Mockup == 0 && s.Terms == 0 && s.Ending == 0 &&
		s.Agreement == 0 && len(s.Portfolios) == 0
}

func (s *Selection) set(slot Slot, id int64) {
	switch slot {
	case SlotCover:
		s.Cover = id
	case SlotMockup:
		s.Mockup = id
	case SlotTerms:
		s.Terms = id
	case SlotEnding:
		s.Ending = id
	case SlotAgreement:
		s.Agreement = id
	}
}

// Extract probes the alias table against doc. For each slot the first alias
// holding a non-empty value wins, even when that value is not a valid
// identifier.
func Extract(doc schema.Document) Selection {
	sel := Selection{Portfolios: []int64{}}
	for slot, aliases := range Aliases {
		if v, ok := firstPresent(doc, aliases); ok {
			sel.set(slot, ToID(v))
		}
	}
	for _, key := range PortfolioAliases {
		list := listValue(schema.Get(doc, key, nil))
		if len(list) == 0 {
			continue
		}
		for _, v := range list {
			sel.Portfolios = append(sel.Portfolios, ToID(v))
		}
		break
	}
	return sel
}

// LinkedContent returns the snippet identifier referenced for agreement
// content, or zero.
func LinkedContent(doc schema.Document) int64 {
	if v, ok := firstPresent(doc, LinkedContentAliases); ok {
		return ToID(v)
	}
	return 0
}

func firstPresent(doc schema.Document, aliases []string) (any, bool) {
	for _, key := range aliases {
		v := schema.Get(doc, key, nil)
		if isSet(v) {
			return v, true
		}
	}
	return nil, false
}

// isSet treats "0", 0 and empty values as unset; asset identifiers start at 1.
func isSet(v any) bool {
	if schema.IsEmpty(v) {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != "0"
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	}
	return true
}

func listValue(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return nil
}

// ToID converts a stored selection value to an identifier. Values that are
// not integers convert to zero.
func ToID(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return id
	}
	return 0
}
