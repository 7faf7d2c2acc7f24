package board

import (
	"fmt"

	"kanban/domain"
)

// BoardError wraps a board validation failure with its kind.
type BoardError struct {
	Kind error
	Msg  string
}

func (e *BoardError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *BoardError) Unwrap() error { return e.Kind }

func invalidf(format string, args ...any) error {
	return &BoardError{Kind: domain.ErrInvalidBoard, Msg: fmt.Sprintf(format, args...)}
}

func violationf(format string, args ...any) error {
	return &BoardError{Kind: domain.ErrInvariantViolation, Msg: fmt.Sprintf(format, args...)}
}
