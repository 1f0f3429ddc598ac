package errcode

const (
	ErrUnknown = 10000000 + iota
	ErrUnauthorized
	ErrForbidden
	ErrNotFound
	ErrInvalid
	ErrTooMany
	ErrInternal
	ErrAIUnavailable
	ErrIngestFailed
)
