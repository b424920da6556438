package errs

import (
	"strings"

	"github.com/pkg/errors"
)

// Multi collects validation errors so a config can report all of them at once.
type Multi struct {
	errors []error
}

func NewMulti() *Multi {
	return &Multi{
		errors: []error{},
	}
}

func (m *Multi) Add(err error) {
	if err == nil {
		return
	}

	m.errors = append(m.errors, err)
}

func (m *Multi) Err(text string) {
	m.Add(errors.New(text))
}

func (m *Multi) Errf(format string, args ...interface{}) {
	m.Add(errors.Errorf(format, args...))
}

// Merge appends all errors of other to m.
func (m *Multi) Merge(other *Multi) {
	if other == nil {
		return
	}

	m.errors = append(m.errors, other.errors...)
}

func (m *Multi) Error() string {
	if !m.HasErrors() {
		return ""
	}

	strErrs := make([]string, len(m.errors))
	for i := range m.errors {
		strErrs[i] = m.errors[i].Error()
	}

	return strings.Join(strErrs, "; ")
}

func (m *Multi) StackTrace() errors.StackTrace {
	for _, curErr := range m.errors {
		var errWithStack stackTracer
		if errors.As(curErr, &errWithStack) {
			return errWithStack.StackTrace()
		}
	}

	return errors.StackTrace{}
}

func (m *Multi) HasErrors() bool {
	return m != nil && len(m.errors) > 0
}

// ErrOrNil returns nil for an empty Multi, so callers can return it as a plain error.
func (m *Multi) ErrOrNil() error {
	if !m.HasErrors() {
		return nil
	}

	return m
}
