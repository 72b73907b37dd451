package llm

import (
	"errors"
	"fmt"
)

// ErrProviderStatus is matched by errors.Is for any non-2xx provider reply
var ErrProviderStatus = errors.New("provider returned error status")

// APIError is returned when a provider answers with a non-2xx status
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Is reports whether target is ErrProviderStatus
func (e *APIError) Is(target error) bool {
	return target == ErrProviderStatus
}
