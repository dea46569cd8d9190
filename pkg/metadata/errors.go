package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable covers transport failures and non-2xx responses
	ErrUnreachable = errors.New("metadata: page unreachable")
	// ErrMalformedDocument covers unreadable or unparseable response bodies
	ErrMalformedDocument = errors.New("metadata: malformed document")
)

// ParseError is returned when the requested URL itself cannot be parsed.
// It is the only failure the soft extraction surfaces.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("metadata: cannot parse url %q", e.URL)
	}
	return fmt.Sprintf("metadata: cannot parse url %q: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err carries a *ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
