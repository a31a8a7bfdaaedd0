package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransient indicates that the remote store is unreachable or temporarily
	// unavailable; the request may be retried
	ErrTransient = errors.New("transient remote failure")

	// ErrRemoteRejection indicates that the remote store refused the request;
	// retrying the same payload will not help
	ErrRemoteRejection = errors.New("rejected by remote store")

	// ErrUnauthorized indicates a missing, expired or insufficient access token.
	// The payload itself was not judged; it may succeed after a new login
	ErrUnauthorized = errors.New("not authorized by remote store")
)

// StatusError описывает неуспешный HTTP ответ сервера
type StatusError struct {
	Message string
	Code    int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server error (%d)", e.Code)
	}
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// Unwrap classifies the status: 408, 429 and 5xx are transient, 401 and 403 are
// unauthorized, other codes are rejections.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Transient():
		return ErrTransient
	case e.Unauthorized():
		return ErrUnauthorized
	default:
		return ErrRemoteRejection
	}
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout
}

// Unauthorized reports whether the token was refused.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound
}
