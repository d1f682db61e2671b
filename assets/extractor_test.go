package assets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lvillar/proposalpdf/schema"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		doc  schema.Document
		want Selection
	}{
		{
			name: "nothing selected",
			doc:  schema.Document{},
			want: Selection{Portfolios: []int64{}},
		},
		{
			name: "current keys",
			doc: schema.Document{"assets": map[string]any{
				"cover_page":     "12",
				"mockup_pdf":     float64(13),
				"terms_pdf":      "14",
				"ending_page":    "15",
				"agreement_pdf":  "16",
				"portfolio_pdfs": []any{"3", float64(4)},
			}},
			want: Selection{Cover: 12, Mockup: 13, Terms: 14, Ending: 15, Agreement: 16, Portfolios: []int64{3, 4}},
		},
		{
			name: "legacy top-level keys",
			doc: schema.Document{
				"cover_page":       "7",
				"terms_conditions": "8",
				"portfolios":       []any{"9"},
			},
			want: Selection{Cover: 7, Terms: 8, Portfolios: []int64{9}},
		},
		{
			name: "first non-empty alias wins",
			doc: schema.Document{
				"assets": map[string]any{"cover_page": "", "cover": "0"},
				"cover_page": "21",
				"cover":      "22",
			},
			want: Selection{Cover: 21, Portfolios: []int64{}},
		},
		{
			name: "empty portfolio list falls through",
			doc: schema.Document{
				"assets":         map[string]any{"portfolio_pdfs": []any{}},
				"portfolio_pdfs": []string{"5", "bad"},
			},
			want: Selection{Portfolios: []int64{5, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Extract(tt.doc)); diff != "" {
				t.Errorf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinkedContent(t *testing.T) {
	doc := schema.Document{"assets": map[string]any{"agreement_content": "31"}}
	if got := LinkedContent(doc); got != 31 {
		t.Errorf("LinkedContent = %d, want 31", got)
	}
	if got := LinkedContent(schema.Document{}); got != 0 {
		t.Errorf("LinkedContent = %d, want 0", got)
	}
}

func TestSelectionGet(t *testing.T) {
	sel := Selection{Cover: 1, Mockup: 2, Terms: 3, Ending: 4, Agreement: 5}
	for slot, want := range map[Slot]int64{SlotCover: 1, SlotMockup: 2, SlotTerms: 3, SlotEnding: 4, SlotAgreement: 5} {
		if got := sel.Get(slot); got != want {
			t.Errorf("Get(%s) = %d, want %d", slot, got, want)
		}
	}
}

func TestSelectionEmpty(t *testing.T) {
	if !Extract(schema.Document{}).Empty() {
		t.Error("empty document selects assets")
	}
	for _, sel := range []Selection{{Ending: 3}, {Portfolios: []int64{8}}, {Agreement: 2}} {
		if sel.Empty() {
			t.Errorf("%+v reported empty", sel)
		}
	}
}
