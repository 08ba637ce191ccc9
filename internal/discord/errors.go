package discord

import "fmt"

// ErrorKind classifies an outbound API failure.
type ErrorKind int

const (
	// KindTransport covers DNS, TLS, connection, and context failures. The
	// request may never have reached Discord; it is never retried here.
	KindTransport ErrorKind = iota

	// KindServerFault covers 5xx responses. The body is not parsed.
	KindServerFault

	// KindRejected covers 4xx responses whose error code carries no domain
	// meaning, and unparseable client-error bodies.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServerFault:
		return "server fault"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// APIError is a failed call against the Discord REST API.
type APIError struct {
	Kind    ErrorKind
	Status  int    // HTTP status, 0 for transport failures
	Code    int    // Discord error code, 0 when the body was not parseable
	Message string // Discord error message, empty when not parseable
	cause   error
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == KindTransport:
		return fmt.Sprintf("discord: transport failure: %v", e.cause)
	case e.Code != 0:
		return fmt.Sprintf("discord: %s (status %d, code %d): %s", e.Kind, e.Status, e.Code, e.Message)
	default:
		return fmt.Sprintf("discord: %s (status %d)", e.Kind, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.cause }

// apiErrorBody is the JSON error envelope Discord returns on client errors.
type apiErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
