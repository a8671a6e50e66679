package pairs

import (
	"errors"
	"fmt"
)

// Error kinds returned by the services. Detailed messages wrap one of these;
// test with errors.Is.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ParseID parses a path id. Only non-negative base-10 integers are accepted.
func ParseID(raw string) (uint, error) {
	id, err := parseUint(raw)
	if err != nil {
		return 0, invalidArgument("invalid id %q", raw)
	}
	return id, nil
}
