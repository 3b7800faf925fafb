package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the requesting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrQuery indicates that a read against the backing store failed. The
// wrapped message is surfaced to the caller verbatim; no automatic retry.
var ErrQuery = errors.New("query failed")

// ErrTimeout indicates that the client-side wait for a store operation
// exceeded the configured threshold. Only the local wait is abandoned; the
// underlying request is not cancelled at the transport level.
var ErrTimeout = errors.New("operation timed out")

// ErrWebhook indicates a non-2xx or malformed response from an external
// webhook endpoint.
var ErrWebhook = errors.New("webhook call failed")
