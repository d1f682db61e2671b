package proposalpdf

import (
	"errors"
	"fmt"

	"github.com/lvillar/proposalpdf/pdfengine"
)

// Sentinel errors shared by the assembler, the record store and the print
// boundary.
var (
	ErrNotFound     = errors.New("proposalpdf: record not found")
	ErrInvalidInput = errors.New("proposalpdf: invalid input")
	ErrRender       = errors.New("proposalpdf: render failed")

	// Attachment failures. These never abort a render; they are reported
	// as warnings.
	ErrSourceNotFound   = pdfengine.ErrSourceNotFound
	ErrSourceUnreadable = pdfengine.ErrSourceUnreadable
)

// AssemblyError is a fatal failure at one step of document assembly. It
// matches ErrRender with errors.Is.
type AssemblyError struct {
	Step Step
	Err  error
}

func (e *AssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proposalpdf.%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("proposalpdf.%s: render failed", e.Step)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// Is reports ErrRender as a match so callers need not know the step.
func (e *AssemblyError) Is(target error) bool {
	return target == ErrRender
}

func newAssemblyError(step Step, err error) *AssemblyError {
	return &AssemblyError{Step: step, Err: err}
}
