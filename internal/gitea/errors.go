package gitea

import (
	"errors"
)

const (
	baseURLMissingMessageConstant     = "gitea base url must be provided"
	accessTokenMissingMessageConstant = "gitea access token must be provided"
	failureKindTransportConstant      = "transport"
	failureKindRejectionConstant      = "rejection"
)

var (
	// ErrBaseURLMissing indicates the client was constructed without a server URL.
	ErrBaseURLMissing = errors.New(baseURLMissingMessageConstant)
	// ErrAccessTokenMissing indicates the client was constructed without an access token.
	ErrAccessTokenMissing = errors.New(accessTokenMissingMessageConstant)
)

// FailureKind distinguishes why a Gitea operation failed.
type FailureKind string

// Failure kind enumerations.
const (
	// FailureKindTransport reports that the HTTP exchange could not be completed.
	FailureKindTransport FailureKind = FailureKind(failureKindTransportConstant)
	// FailureKindRejection reports that the server answered with a non-success status.
	FailureKindRejection FailureKind = FailureKind(failureKindRejectionConstant)
)

// ServiceError reports a failed Gitea operation.
type ServiceError struct {
	Message        string
	AdditionalInfo string
	Kind           FailureKind
	StatusCode     int
	Cause          error
}

// Error returns the human-readable message.
func (serviceError ServiceError) Error() string {
	return serviceError.Message
}

// Unwrap exposes the underlying transport failure, if any.
func (serviceError ServiceError) Unwrap() error {
	return serviceError.Cause
}
