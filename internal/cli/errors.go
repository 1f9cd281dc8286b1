package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/tera/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

// ErrLintFailed is returned by lint when at least one error-severity issue
// was reported. The issues themselves are already printed.
var ErrLintFailed = errors.New("lint: errors found")

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// specErrorMessage renders a loader error with its location and every
// field violation, one per line.
func specErrorMessage(se *spec.SpecError) string {
	var b strings.Builder
	b.WriteString(se.Message)
	if se.Location != "" {
		fmt.Fprintf(&b, "\nLocation: %s", se.Location)
	}
	if se.Line > 0 {
		fmt.Fprintf(&b, "\nLine: %d", se.Line)
	}
	if len(se.Fields) == 0 && se.JSONPointer != "" {
		fmt.Fprintf(&b, "\nPointer: %s", se.JSONPointer)
	}
	for _, f := range se.Fields {
		fmt.Fprintf(&b, "\n  - %s", f)
	}
	return b.String()
}

// wrapLoadError turns input and document problems into usage errors so the
// caller exits with the usage status; network failures stay plain errors.
func wrapLoadError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	if se.Code == spec.NetworkError {
		return fmt.Errorf("%s: %w", specErrorMessage(se), err)
	}
	return newUsageError(specErrorMessage(se))
}
