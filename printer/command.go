// Package printer turns print requests into rendered documents. A request
// is parsed once into a Command; the Service loads the record, builds the
// render context and runs the assembler.
package printer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lvillar/proposalpdf"
)

// ActionKind names a print action.
type ActionKind string

const (
	ActionPrintProposal ActionKind = "print_proposal"
	ActionPrintBrochure ActionKind = "print_brochure"
)

// idParam is the query parameter carrying the record id for each action.
var idParam = map[ActionKind]string{
	ActionPrintProposal: "proposal_id",
	ActionPrintBrochure: "brochure_id",
}

// Command is one print request.
type Command struct {
	Action ActionKind
	ID     int64
	// IncludeConforme overrides the default, which is true for agreements
	// only. Brochures ignore it.
	IncludeConforme *bool
	RenderID        uuid.UUID
}

// NewCommand validates action and id and assigns a fresh render id.
func NewCommand(action ActionKind, id int64) (Command, error) {
	if _, ok := idParam[action]; !ok {
		return Command{}, fmt.Errorf("%w: unknown action %q", proposalpdf.ErrInvalidInput, action)
	}
	if id <= 0 {
		return Command{}, fmt.Errorf("%w: %s", proposalpdf.ErrInvalidInput, invalidIDMessage(action))
	}
	return Command{Action: action, ID: id, RenderID: uuid.New()}, nil
}

// ParseLegacyQuery reads ?action=print_proposal&proposal_id=N or
// ?action=print_brochure&brochure_id=N. A conforme=0|1 parameter sets
// IncludeConforme.
func ParseLegacyQuery(q url.Values) (Command, error) {
	action := ActionKind(strings.ToLower(strings.TrimSpace(q.Get("action"))))
	param, ok := idParam[action]
	if !ok {
		return Command{}, fmt.Errorf("%w: unknown action %q", proposalpdf.ErrInvalidInput, action)
	}
	id, _ := strconv.ParseInt(strings.TrimSpace(q.Get(param)), 10, 64)
	cmd, err := NewCommand(action, id)
	if err != nil {
		return Command{}, err
	}
	if v := q.Get("conforme"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Command{}, fmt.Errorf("%w: conforme=%q", proposalpdf.ErrInvalidInput, v)
		}
		cmd.IncludeConforme = &b
	}
	return cmd, nil
}

func invalidIDMessage(action ActionKind) string {
	if action == ActionPrintBrochure {
		return "Invalid brochure ID."
	}
	return "Invalid proposal ID."
}

// NotFoundMessage is the user-visible text for a missing record.
func NotFoundMessage(action ActionKind) string {
	if action == ActionPrintBrochure {
		return "Brochure not found."
	}
	return "Proposal not found."
}
