package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies an aggregator call failure. Callers branch on the kind, not
// on transport details.
type Kind string

const (
	KindUnauthorized    Kind = "unauthorized"
	KindNotFound        Kind = "not_found"
	KindInvalidResponse Kind = "invalid_response"
	KindTimeout         Kind = "timeout"
	KindUnreachable     Kind = "unreachable"
)

// Error is the uniform failure returned by every gateway call.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("upstream %s: %s: %s", e.Op, e.Kind, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from err, or an empty Kind when err did not
// originate from the gateway.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}

func classifyTransport(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	return &Error{Kind: KindUnreachable, Op: op, Err: err}
}

func classifyStatus(op string, status int, body []byte) *Error {
	detail := string(body)
	if len(detail) > 256 {
		detail = detail[:256]
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Op: op, Detail: detail}
	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Op: op, Detail: detail}
	default:
		return &Error{Kind: KindInvalidResponse, Op: op, Detail: fmt.Sprintf("status %d: %s", status, detail)}
	}
}
