package gl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCheck selects how often glGetError is polled.
type ErrorCheck uint8

const (
	// ErrorCheckOff never polls.
	ErrorCheckOff ErrorCheck = iota
	// ErrorCheckPerFrame polls once per frame.
	ErrorCheckPerFrame
	// ErrorCheckPerAttribute polls after every mode and attribute apply.
	ErrorCheckPerAttribute
)

// ErrUnknownErrorCheck is returned by ParseErrorCheck for unrecognized names.
var ErrUnknownErrorCheck = errors.New("gl: unknown error check mode")

// String returns the configuration name of the mode.
func (e ErrorCheck) String() string {
	switch e {
	case ErrorCheckOff:
		return "off"
	case ErrorCheckPerFrame:
		return "frame"
	case ErrorCheckPerAttribute:
		return "attribute"
	default:
		return fmt.Sprintf("ErrorCheck(%d)", uint8(e))
	}
}

// ParseErrorCheck parses "off", "frame" or "attribute" (case-insensitive).
// "on" is accepted as a synonym for "frame".
func ParseErrorCheck(s string) (ErrorCheck, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return ErrorCheckOff, nil
	case "frame", "on", "once_per_frame":
		return ErrorCheckPerFrame, nil
	case "attribute", "once_per_attribute":
		return ErrorCheckPerAttribute, nil
	}
	return ErrorCheckOff, fmt.Errorf("%w: %q", ErrUnknownErrorCheck, s)
}

// maxDrainedErrors bounds DrainErrors. A lost context can report
// GL_CONTEXT_LOST forever.
const maxDrainedErrors = 16

// DrainErrors returns every pending GL error flag, oldest first.
func DrainErrors(d Driver) []Enum {
	var errs []Enum
	for range maxDrainedErrors {
		e := d.GetError()
		if e == NO_ERROR {
			break
		}
		errs = append(errs, e)
	}
	return errs
}
