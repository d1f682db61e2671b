package schema

import (
	"encoding/json"
	"strconv"
)

// Block is the decided shape of a payment_schedule or optional_extras value:
// RichText, Milestones or ExtrasList. The shape is fixed once when the
// document is processed or normalized and never re-sniffed at render time.
type Block interface {
	block()
}

// RichText is free-form sanitized markup.
type RichText string

// Milestone is one row of a payment schedule.
type Milestone struct {
	Milestone string `json:"milestone"`
	Amount    string `json:"amount"`
	DueDate   string `json:"due_date"`
}

// Milestones is a structured payment schedule.
type Milestones []Milestone

// Extra is one optional add-on offered in a proposal.
type Extra struct {
	Name  string `json:"name"`
	Price string `json:"price,omitempty"`
}

// ExtrasList is a structured list of optional add-ons.
type ExtrasList []Extra

func (RichText) block()   {}
func (Milestones) block() {}
func (ExtrasList) block() {}

// MarshalJSON keeps RichText a plain JSON string.
func (r RichText) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// IsEmpty reports whether v counts as absent. The string "0" and numeric zero
// are present; nil, empty strings, empty lists, empty maps and false are not.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case RichText:
		return t == ""
	case bool:
		return !t
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case Milestones:
		return len(t) == 0
	case ExtrasList:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Document:
		return len(t) == 0
	}
	return false
}

// scalarString renders a scalar JSON/YAML value as text. ok is false for
// maps, lists and other composite values.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	case RichText:
		return string(t), true
	case bool:
		if t {
			return "1", true
		}
		return "", true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}
