package adapter

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind tags a remote failure with its handling class.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindTransient covers network failures, timeouts and 5xx/429 answers.
	KindTransient
	// KindAuth covers 401/403 answers. These are never retried.
	KindAuth
	// KindTransportSecurity covers TLS handshake and scheme mismatches.
	KindTransportSecurity
	// KindConflict is a rejected optimistic write (409).
	KindConflict
	KindNotFound
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindTransportSecurity:
		return "transport-security"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	ErrUnauthorized     = errors.New("client unauthorized")
	ErrForbidden        = errors.New("access forbidden")
	ErrNotFound         = errors.New("record not found")
	ErrVersionConflict  = errors.New("version conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrServerError      = errors.New("remote server error")
	ErrTransportFailure = errors.New("transport failure")
	ErrTLSMismatch      = errors.New("transport security mismatch")
	ErrEmptyAddress     = errors.New("empty address")
	ErrMissingID        = errors.New("record id is required")
)

// RemoteError is the single error type returned by [RemoteService]
// implementations.
type RemoteError struct {
	Kind       ErrorKind
	StatusCode int
	Op         string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (http %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Errors that did not come from the adapter are
// classified by their shape: context deadlines and net errors are
// transient, everything else is unknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind
	}
	return classifyTransportError(err)
}

// IsRetryable reports whether a failed remote call may succeed when repeated.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindTransient, KindUnknown:
		return !errors.Is(err, context.Canceled)
	default:
		return false
	}
}

func classifyTransportError(err error) ErrorKind {
	var (
		recordHeaderErr tls.RecordHeaderError
		certVerifyErr   *tls.CertificateVerificationError
		unknownAuthErr  x509.UnknownAuthorityError
		hostnameErr     x509.HostnameError
		certInvalidErr  x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &recordHeaderErr),
		errors.As(err, &certVerifyErr),
		errors.As(err, &unknownAuthErr),
		errors.As(err, &hostnameErr),
		errors.As(err, &certInvalidErr):
		return KindTransportSecurity
	}

	// net/http reports a plain-HTTP answer to a TLS request only as text.
	if strings.Contains(err.Error(), "server gave HTTP response to HTTPS client") {
		return KindTransportSecurity
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindTransient
	}
	return KindUnknown
}

func transportError(op string, err error) error {
	kind := classifyTransportError(err)
	sentinel := ErrTransportFailure
	if kind == KindTransportSecurity {
		sentinel = ErrTLSMismatch
	}
	if kind == KindUnknown {
		kind = KindTransient
	}
	return &RemoteError{Kind: kind, Op: op, Err: fmt.Errorf("%w: %w", sentinel, err)}
}
