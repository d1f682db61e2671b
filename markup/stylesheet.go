package markup

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/lvillar/proposalpdf/table"
)

//go:embed default.css
var defaultCSS string

// Style is the computed appearance of one element. Zero values and nil
// pointers mean "inherit".
type Style struct {
	FontFamily   string
	FontSize     float64 // points
	Bold         *bool
	Italic       *bool
	Color        *table.RGBColor
	Background   *table.RGBColor
	Align        string // "L", "C", "R", "J"
	MarginTop    *float64
	MarginBottom *float64
	BorderBottom float64 // line width in mm, zero for none
	BorderColor  *table.RGBColor
}

// FontStyle returns the gofpdf style string.
func (s Style) FontStyle() string {
	out := ""
	if s.Bold != nil && *s.Bold {
		out += "B"
	}
	if s.Italic != nil && *s.Italic {
		out += "I"
	}
	return out
}

// merge overlays the set fields of o onto s.
func (s Style) merge(o Style) Style {
	if o.FontFamily != "" {
		s.FontFamily = o.FontFamily
	}
	if o.FontSize > 0 {
		s.FontSize = o.FontSize
	}
	if o.Bold != nil {
		s.Bold = o.Bold
	}
	if o.Italic != nil {
		s.Italic = o.Italic
	}
	if o.Color != nil {
		s.Color = o.Color
	}
	if o.Background != nil {
		s.Background = o.Background
	}
	if o.Align != "" {
		s.Align = o.Align
	}
	if o.MarginTop != nil {
		s.MarginTop = o.MarginTop
	}
	if o.MarginBottom != nil {
		s.MarginBottom = o.MarginBottom
	}
	if o.BorderBottom > 0 {
		s.BorderBottom = o.BorderBottom
		s.BorderColor = o.BorderColor
	}
	return s
}

// Stylesheet maps simple selectors to styles. Supported selectors are
// element names, .class, element.class and a descendant pair of those.
type Stylesheet struct {
	rules map[string]Style
}

// DefaultStylesheet returns the built-in rules.
func DefaultStylesheet() *Stylesheet {
	s, err := ParseStylesheet(defaultCSS)
	if err != nil {
		panic(fmt.Sprintf("markup: built-in stylesheet: %v", err))
	}
	return s
}

// ParseStylesheet parses CSS text. Unsupported properties and at-rules are
// ignored.
func ParseStylesheet(text string) (*Stylesheet, error) {
	sheet, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("markup: parse stylesheet: %w", err)
	}
	s := &Stylesheet{rules: make(map[string]Style)}
	for _, rule := range sheet.Rules {
		if rule.Kind != css.QualifiedRule {
			continue
		}
		decl := declarations(rule.Declarations)
		for _, sel := range rule.Selectors {
			sel = strings.ToLower(strings.Join(strings.Fields(sel), " "))
			s.rules[sel] = s.rules[sel].merge(decl)
		}
	}
	return s, nil
}

// LoadStylesheet reads and parses a CSS file. A missing file returns an
// error satisfying errors.Is(err, fs.ErrNotExist).
func LoadStylesheet(path string) (*Stylesheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStylesheet(string(data))
}

// Merge returns a stylesheet with o's rules layered over s's.
func (s *Stylesheet) Merge(o *Stylesheet) *Stylesheet {
	out := &Stylesheet{rules: make(map[string]Style)}
	for _, src := range []*Stylesheet{s, o} {
		if src == nil {
			continue
		}
		for sel, st := range src.rules {
			out.rules[sel] = out.rules[sel].merge(st)
		}
	}
	return out
}

// Resolve computes the style of an element from its tag and classes,
// inheriting from parent. Rules apply in increasing specificity: tag,
// .class, tag.class, then "ancestor-class tag" descendant pairs.
func (s *Stylesheet) Resolve(parent Style, tag string, classes []string, ancestors []string) Style {
	st := parent
	st.Background = nil
	st.MarginTop, st.MarginBottom = nil, nil
	st.BorderBottom, st.BorderColor = 0, nil
	if s == nil {
		return st
	}
	apply := func(sel string) {
		if r, ok := s.rules[sel]; ok {
			st = st.merge(r)
		}
	}
	apply(tag)
	for _, c := range classes {
		apply("." + c)
	}
	for _, c := range classes {
		apply(tag + "." + c)
	}
	for _, a := range ancestors {
		apply("." + a + " " + tag)
	}
	return st
}

func declarations(decls []*css.Declaration) Style {
	var st Style
	for _, d := range decls {
		v := strings.ToLower(strings.TrimSpace(d.Value))
		switch strings.ToLower(d.Property) {
		case "font-family":
			st.FontFamily = fontFamily(v)
		case "font-size":
			st.FontSize = toPoints(v)
		case "font-weight":
			b := v == "bold" || v == "bolder" || v == "600" || v == "700" || v == "800" || v == "900"
			st.Bold = &b
		case "font-style":
			i := v == "italic" || v == "oblique"
			st.Italic = &i
		case "color":
			st.Color = parseColor(v)
		case "background-color", "background":
			st.Background = parseColor(v)
		case "text-align":
			st.Align = map[string]string{"left": "L", "center": "C", "right": "R", "justify": "J"}[v]
		case "margin-top":
			m := toMillimetres(v)
			st.MarginTop = &m
		case "margin-bottom":
			m := toMillimetres(v)
			st.MarginBottom = &m
		case "border-bottom":
			for _, part := range strings.Fields(v) {
				if c := parseColor(part); c != nil {
					st.BorderColor = c
				} else if w := toMillimetres(part); w > 0 {
					st.BorderBottom = w
				}
			}
		}
	}
	return st
}

func fontFamily(v string) string {
	first := strings.Trim(strings.TrimSpace(strings.Split(v, ",")[0]), `"'`)
	switch first {
	case "serif", "times", "times new roman", "georgia":
		return "Times"
	case "monospace", "courier", "courier new":
		return "Courier"
	}
	return "Helvetica"
}

func splitUnit(v string) (float64, string) {
	i := len(v)
	for i > 0 && (v[i-1] < '0' || v[i-1] > '9') && v[i-1] != '.' {
		i--
	}
	n, err := strconv.ParseFloat(v[:i], 64)
	if err != nil {
		return 0, ""
	}
	return n, v[i:]
}

func toPoints(v string) float64 {
	n, unit := splitUnit(v)
	switch unit {
	case "px":
		return n * 0.75
	case "mm":
		return n * 72 / 25.4
	case "em", "rem":
		return n * 10
	}
	return n
}

func toMillimetres(v string) float64 {
	n, unit := splitUnit(v)
	switch unit {
	case "px":
		return n * 25.4 / 96
	case "pt":
		return n * 25.4 / 72
	case "cm":
		return n * 10
	case "em", "rem":
		return n * 10 * 25.4 / 72
	}
	return n
}

func parseColor(v string) *table.RGBColor {
	switch v {
	case "black":
		return &table.RGBColor{}
	case "white":
		return &table.RGBColor{R: 255, G: 255, B: 255}
	}
	if !strings.HasPrefix(v, "#") {
		return nil
	}
	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return nil
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil
	}
	return &table.RGBColor{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}
}
