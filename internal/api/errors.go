package api

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Fetch failures are terminal and mutually exclusive. Match them with
// errors.Is from github.com/cockroachdb/errors; marks are not visible to the
// standard library's errors.Is.
var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidResponse = errors.New("invalid response from server")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrServer          = errors.New("server error")
	ErrDecode          = errors.New("failed to decode response")
	ErrNetwork         = errors.New("network error")
)

// ServerError is any non-200, non-404 status.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d", e.StatusCode)
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

func invalidURL(err error, msg string) error {
	return errors.Mark(errors.Wrap(err, msg), ErrInvalidURL)
}

func networkError(err error) error {
	return errors.Mark(errors.Wrap(err, "network error"), ErrNetwork)
}

func decodeError(err error) error {
	return errors.Mark(errors.Wrap(err, "failed to decode player essentials"), ErrDecode)
}

// outcome labels a result for the request counter.
func outcome(err error) string {
	var se *ServerError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrPlayerNotFound):
		return "not_found"
	case errors.As(err, &se):
		return "server_error"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	default:
		return "unknown"
	}
}
