package domain

import "errors"

// Sentinel errors for the query engine's failure taxonomy. Callers are
// expected to test with errors.Is; wrapped detail carries the cause.
var (
	ErrMissingQuery        = errors.New("missing required field: query")
	ErrInvalidQuery        = errors.New("invalid query")
	ErrUnknownEntity       = errors.New("unknown entity")
	ErrTranslationFailure  = errors.New("query translation failed")
	ErrParamDecodeFailure  = errors.New("malformed query parameter")
	ErrExecutionFailure    = errors.New("query execution failed")
	ErrAuthorizationDenied = errors.New("authorization denied")
)
