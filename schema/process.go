package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce  sync.Once
	richPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		richPolicy = richTextPolicy()
		plainPolicy = bluemonday.StrictPolicy()
	})
	return richPolicy, plainPolicy
}

// richTextPolicy is the formatting subset of the UGC policy: text blocks,
// lists, tables and links. Images and embeds are not allowed.
func richTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AllowElements(
		"p", "br", "div", "span", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"strong", "b", "em", "i", "u", "s", "sub", "sup",
		"blockquote", "pre", "code",
		"ul", "ol", "li", "dl", "dt", "dd",
		"table", "caption", "thead", "tbody", "tfoot", "tr",
	)
	p.AllowElements("th", "td")
	p.AllowAttrs("colspan", "rowspan").Matching(bluemonday.Integer).OnElements("th", "td")
	return p
}

// SanitizeRichText keeps the constrained markup subset allowed in rich-text
// fields.
func SanitizeRichText(s string) string {
	rich, _ := policies()
	return strings.TrimSpace(rich.Sanitize(s))
}

// SanitizeText strips all markup and collapses whitespace.
func SanitizeText(s string) string {
	_, plain := policies()
	return strings.Join(strings.Fields(html.UnescapeString(plain.Sanitize(s))), " ")
}

// Process builds a clean document from a raw submission. Every field key is
// materialized with a value of the shape implied by its type; values of the
// wrong shape fall back to the field default. Process never fails.
func Process(def *Definition, raw Document) Document {
	out := Document{}
	for _, f := range def.Fields() {
		if f.IsSectionMarker() || f.Key == "" {
			continue
		}
		out = Set(out, f.Key, cleanValue(f, Get(raw, f.Key, f.Default)))
	}
	return out
}

// Normalize re-types a stored document after decoding: union fields become a
// Block and multi-value fields become []string. Values are not re-sanitized
// and keys unknown to def are kept as they are.
func Normalize(def *Definition, doc Document) Document {
	out := Clone(doc)
	if out == nil {
		out = Document{}
	}
	for _, f := range def.Fields() {
		if f.IsSectionMarker() || f.Key == "" {
			continue
		}
		v := Get(doc, f.Key, nil)
		if v == nil {
			continue
		}
		switch {
		case f.Type == TypePaymentSchedule:
			out = Set(out, f.Key, toMilestoneBlock(v, false))
		case f.Type == TypeOptionalExtras:
			out = Set(out, f.Key, toExtrasBlock(v, false))
		case f.Type.IsMulti():
			out = Set(out, f.Key, toStrings(v, false))
		}
	}
	return out
}

func cleanValue(f Field, v any) any {
	switch {
	case f.Type == TypePaymentSchedule:
		if b := toMilestoneBlock(v, true); b != nil {
			return b
		}
		return toMilestoneBlock(f.Default, true)
	case f.Type == TypeOptionalExtras:
		if b := toExtrasBlock(v, true); b != nil {
			return b
		}
		return toExtrasBlock(f.Default, true)
	case f.Type.IsMulti():
		if isList(v) {
			return toStrings(v, true)
		}
		return toStrings(f.Default, true)
	case f.Type.IsRichText():
		s, ok := scalarString(v)
		if !ok {
			s, _ = scalarString(f.Default)
		}
		return SanitizeRichText(s)
	default:
		s, ok := scalarString(v)
		if !ok {
			s, _ = scalarString(f.Default)
		}
		return SanitizeText(s)
	}
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}

// toStrings always returns a non-nil list.
func toStrings(v any, sanitize bool) []string {
	out := []string{}
	add := func(s string) {
		if sanitize {
			s = SanitizeText(s)
		}
		out = append(out, s)
	}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			add(s)
		}
	case []any:
		for _, e := range t {
			if s, ok := scalarString(e); ok && e != nil {
				add(s)
			}
		}
	}
	return out
}

func toMilestoneBlock(v any, sanitize bool) Block {
	text := func(s string) string {
		if sanitize {
			return SanitizeText(s)
		}
		return s
	}
	switch t := v.(type) {
	case Milestones:
		return t
	case RichText:
		return t
	case string:
		if sanitize {
			return RichText(SanitizeRichText(t))
		}
		return RichText(t)
	case []any:
		rows := Milestones{}
		for _, e := range t {
			m, ok := asMap(e)
			if !ok {
				continue
			}
			rows = append(rows, Milestone{
				Milestone: text(mapString(m, "milestone")),
				Amount:    text(mapString(m, "amount")),
				DueDate:   text(mapString(m, "due_date")),
			})
		}
		return rows
	case nil:
		return RichText("")
	}
	return nil
}

func toExtrasBlock(v any, sanitize bool) Block {
	text := func(s string) string {
		if sanitize {
			return SanitizeText(s)
		}
		return s
	}
	switch t := v.(type) {
	case ExtrasList:
		return t
	case RichText:
		return t
	case string:
		if sanitize {
			return RichText(SanitizeRichText(t))
		}
		return RichText(t)
	case []any:
		list := ExtrasList{}
		for _, e := range t {
			if m, ok := asMap(e); ok {
				list = append(list, Extra{Name: text(mapString(m, "name")), Price: text(mapString(m, "price"))})
				continue
			}
			if s, ok := scalarString(e); ok && s != "" {
				list = append(list, Extra{Name: text(s)})
			}
		}
		return list
	case nil:
		return RichText("")
	}
	return nil
}

func mapString(m map[string]any, key string) string {
	s, _ := scalarString(m[key])
	return s
}

// Missing returns the keys of required fields whose processed value is empty.
func Missing(def *Definition, doc Document) []string {
	var keys []string
	for _, f := range def.Fields() {
		if f.Required && !f.IsSectionMarker() && IsEmpty(Get(doc, f.Key, nil)) {
			keys = append(keys, f.Key)
		}
	}
	return keys
}
