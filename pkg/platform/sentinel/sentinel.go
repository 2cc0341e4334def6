package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Storage backends return these
// (optionally wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: the addressed object does not exist in its store
// - ErrUnavailable: the store could not be reached or refused the request
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
