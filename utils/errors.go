package utils

import "github.com/pkg/errors"

// Shared error taxonomy. Handlers map these onto HTTP statuses in one place;
// lower layers wrap them with call-site context via errors.Wrap so the cause
// stays inspectable with errors.Is.
var (
	// ErrNotFound: the referenced edge, post or notification does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a duplicate friend edge, or a second transition attempt on
	// an already transitioned edge.
	ErrConflict = errors.New("conflict")
	// ErrForbidden: the actor lacks rights over the target entity.
	ErrForbidden = errors.New("forbidden")
	// ErrUnavailable: a datastore query failed, the request is retryable.
	ErrUnavailable = errors.New("unavailable")
	// ErrInvalidArgument: malformed request body or unknown tag.
	ErrInvalidArgument = errors.New("invalid argument")
)
