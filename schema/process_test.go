package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testDefinition() *Definition {
	return &Definition{
		ID: "test",
		Groups: []Group{{
			ID: "g",
			Fields: []Field{
				{Key: "title", Type: TypeText},
				{Key: "body", Type: TypeTextarea},
				{Key: "tags", Type: TypeCheckboxMulti, Default: []any{}},
				{Key: "pay.schedule", Type: TypePaymentSchedule},
				{Key: "pay.extras", Type: TypeOptionalExtras},
				{Key: "flag", Type: TypeCheckbox, Default: true},
				{Key: "marker", Type: TypeSection, Label: "Marker"},
				{Key: "count", Type: TypeNumber, Default: 1},
			},
		}},
	}
}

func TestProcess(t *testing.T) {
	raw := Document{
		"title": "  Hello <b>World</b>  ",
		"body":  `<p>Text</p><script>alert(1)</script>`,
		"tags":  []any{"a", "<i>b</i>"},
		"pay": map[string]any{
			"schedule": []any{
				map[string]any{"milestone": "Kickoff", "amount": 5000.5, "due_date": "2026-01-01"},
				"ignored",
			},
			"extras": []any{
				map[string]any{"name": "SEO", "price": "1,000"},
				"Logo refresh",
			},
		},
		"count": []any{"wrong shape"},
	}

	got := Process(testDefinition(), raw)
	want := Document{
		"title": "Hello World",
		"body":  "<p>Text</p>",
		"tags":  []string{"a", "b"},
		"pay": map[string]any{
			"schedule": Milestones{{Milestone: "Kickoff", Amount: "5000.5", DueDate: "2026-01-01"}},
			"extras":   ExtrasList{{Name: "SEO", Price: "1,000"}, {Name: "Logo refresh"}},
		},
		"flag":  "1",
		"count": "1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Process mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessMultiValueAlwaysList(t *testing.T) {
	def := &Definition{Groups: []Group{{Fields: []Field{{Key: "tags", Type: TypeCheckboxMulti}}}}}

	for _, raw := range []Document{nil, {"tags": "scalar"}, {"tags": map[string]any{}}} {
		got, ok := Get(Process(def, raw), "tags", nil).([]string)
		if !ok || got == nil || len(got) != 0 {
			t.Errorf("Process(%v).tags = %#v, want empty list", raw, got)
		}
	}
}

func TestProcessUnionStringBecomesRichText(t *testing.T) {
	raw := Document{"pay": map[string]any{"schedule": "<p>50% upfront</p>", "extras": "<em>none</em>"}}
	got := Process(testDefinition(), raw)

	if v, ok := Get(got, "pay.schedule", nil).(RichText); !ok || v != "<p>50% upfront</p>" {
		t.Errorf("schedule = %#v", Get(got, "pay.schedule", nil))
	}
	if v, ok := Get(got, "pay.extras", nil).(RichText); !ok || v != "<em>none</em>" {
		t.Errorf("extras = %#v", Get(got, "pay.extras", nil))
	}
}

func TestNormalizeAfterDecode(t *testing.T) {
	stored := Document{
		"pay": map[string]any{
			"schedule": []any{map[string]any{"milestone": "M1", "amount": "100", "due_date": "soon"}},
			"extras":   "plain text",
		},
		"tags":  []any{"x", "y"},
		"other": map[string]any{"kept": true},
	}
	got := Normalize(testDefinition(), stored)

	if diff := cmp.Diff(Milestones{{Milestone: "M1", Amount: "100", DueDate: "soon"}}, Get(got, "pay.schedule", nil)); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(RichText("plain text"), Get(got, "pay.extras", nil)); diff != "" {
		t.Errorf("extras mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, Get(got, "tags", nil)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	if Get(got, "other.kept", nil) != true {
		t.Error("unknown keys must be preserved")
	}
	if _, ok := Get(stored, "pay.schedule", nil).([]any); !ok {
		t.Error("Normalize must not mutate its input")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{"0", false},
		{0, false},
		{0.0, false},
		{false, true},
		{[]string{}, true},
		{[]any{}, true},
		{Milestones{}, true},
		{ExtrasList{{Name: "x"}}, false},
		{RichText(""), true},
		{"text", false},
	}
	for _, tt := range tests {
		if got := IsEmpty(tt.v); got != tt.want {
			t.Errorf("IsEmpty(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestMissing(t *testing.T) {
	def := &Definition{Groups: []Group{{Fields: []Field{
		{Key: "name", Type: TypeText, Required: true},
		{Key: "note", Type: TypeText},
	}}}}
	got := Missing(def, Process(def, Document{"note": "n"}))
	if diff := cmp.Diff([]string{"name"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizeRichText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`<p>Intro</p><img src="https://example.com/logo.png">`, `<p>Intro</p>`},
		{`<p>a<img src="../../etc/logo.png" width="40">b</p>`, `<p>ab</p>`},
		{`<table><tr><td colspan="2">x</td></tr></table>`, `<table><tr><td colspan="2">x</td></tr></table>`},
		{`<p onclick="x()"><strong>Bold</strong><script>alert(1)</script></p>`, `<p><strong>Bold</strong></p>`},
		{`<iframe src="https://example.com"></iframe><em>ok</em>`, `<em>ok</em>`},
	}
	for _, tt := range tests {
		if got := SanitizeRichText(tt.in); got != tt.want {
			t.Errorf("SanitizeRichText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProcessDropsImages(t *testing.T) {
	raw := Document{"body": `<p>Intro</p><img src="https://example.com/logo.png">`}
	got := Process(testDefinition(), raw)
	if diff := cmp.Diff("<p>Intro</p>", Get(got, "body", nil)); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
}
