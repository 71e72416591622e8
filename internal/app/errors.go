package app

import (
	"context"
	"errors"
	"net"

	"github.com/NivBraz/topworkplaces/pkg/fetcher"
	"github.com/NivBraz/topworkplaces/pkg/parser"
)

// ErrorKind groups run failures for operator-facing messages.
type ErrorKind string

const (
	KindHTTP      ErrorKind = "http"
	KindNetwork   ErrorKind = "network"
	KindMalformed ErrorKind = "malformed"
	KindCanceled  ErrorKind = "canceled"
	KindUnknown   ErrorKind = "unknown"
)

func ClassifyError(err error) ErrorKind {
	var httpErr *fetcher.HTTPError
	var netErr net.Error

	switch {
	case err == nil:
		return ""
	case errors.As(err, &httpErr):
		return KindHTTP
	case errors.Is(err, parser.ErrMalformed):
		return KindMalformed
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// Describe prefixes the error with a label for its kind.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	switch ClassifyError(err) {
	case KindHTTP:
		return "HTTP error: " + err.Error()
	case KindNetwork:
		return "Network error: " + err.Error()
	case KindMalformed:
		return "Malformed API response: " + err.Error()
	case KindCanceled:
		return "Run canceled: " + err.Error()
	default:
		return "Unexpected error: " + err.Error()
	}
}
