package geocode

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a reverse geocoding failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimit
	KindNotFound
	KindInvalidRequest
	KindUnavailable
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate limited"
	case KindNotFound:
		return "not found"
	case KindInvalidRequest:
		return "invalid request"
	case KindUnavailable:
		return "service unavailable"
	case KindNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

// Error is returned by Reverse for every failure it can classify.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("geocode: %s: %v", msg, e.Err)
	}
	return "geocode: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a geocoding Error of kind k.
func IsKind(err error, k Kind) bool {
	var geoErr *Error
	return errors.As(err, &geoErr) && geoErr.Kind == k
}

// classifyStatus maps a non-200 HTTP status to an Error.
func classifyStatus(status int) *Error {
	kind := KindUnknown
	switch status {
	case http.StatusTooManyRequests, http.StatusForbidden:
		// Nominatim answers 403 once a client is blocked for exceeding its policy.
		kind = KindRateLimit
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusBadRequest:
		kind = KindInvalidRequest
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		kind = KindUnavailable
	}
	return &Error{Kind: kind, Status: status}
}
