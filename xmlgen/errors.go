package xmlgen

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable is returned when the template directory is
	// missing or cannot be listed.
	ErrStoreUnavailable = errors.New("template store unavailable")

	// ErrTemplateNotFound is returned when a template name is not part of
	// the current directory scan.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRender is the sentinel matched by every *RenderError.
	ErrRender = errors.New("render failed")

	// ErrUnknownField is returned by strict submission parsing when the
	// input carries a key the template does not use.
	ErrUnknownField = errors.New("unknown submission field")
)

// RenderError reports a submission that cannot fill a template.
type RenderError struct {
	Template string
	Missing  []string
}

func (e *RenderError) Error() string {
	var b strings.Builder
	b.WriteString("render")
	if e.Template != "" {
		fmt.Fprintf(&b, " %q", e.Template)
	}
	fmt.Fprintf(&b, ": missing value for %s", strings.Join(e.Missing, ", "))
	return b.String()
}

// Is makes errors.Is(err, ErrRender) hold for any *RenderError.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}
