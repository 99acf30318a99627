package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
)

const (
	msgForbidden    = "access denied by the server: connect to the company wifi network and try again"
	msgUnauthorized = "this client is not authorized: check the API token or update the app"
	msgTimeout      = "the server did not answer in time"
	msgUnreachable  = "the server could not be reached"
	msgEncode       = "the request could not be encoded"
)

// RemoteError is returned by every failing Client call. Its message is meant
// for display; errors.Is matches exactly one taxonomy sentinel in common.
type RemoteError struct {
	Kind    error
	Message string
	Status  int
	Cause   error
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Unwrap() error {
	return e.Kind
}

// mapTransportError classifies an error returned by http.Client.Do.
func mapTransportError(err error) error {
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}

	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &RemoteError{Kind: common.ErrTimeout, Message: msgTimeout, Cause: err}
	}
	return &RemoteError{Kind: common.ErrUnreachable, Message: msgUnreachable, Cause: err}
}

// mapStatus classifies a non-2xx response. message is the server supplied
// text, if any.
func mapStatus(code int, message string) error {
	switch code {
	case http.StatusForbidden:
		return &RemoteError{Kind: common.ErrForbidden, Message: msgForbidden, Status: code}
	case http.StatusUnauthorized:
		return &RemoteError{Kind: common.ErrUnauthorized, Message: msgUnauthorized, Status: code}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &RemoteError{Kind: common.ErrTimeout, Message: msgTimeout, Status: code}
	}
	if message == "" {
		message = fmt.Sprintf("server returned %d %s", code, http.StatusText(code))
	}
	return &RemoteError{Kind: common.ErrServer, Message: message, Status: code}
}

// serverRejected is used when the server answered 2xx but success=false.
func serverRejected(message string) error {
	if message == "" {
		message = "the server rejected the request"
	}
	return &RemoteError{Kind: common.ErrServer, Message: message, Status: http.StatusOK}
}
