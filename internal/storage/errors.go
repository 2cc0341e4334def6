package storage

import "dicomviewer/pkg/platform/sentinel"

var (
	// ErrNotFound is returned (optionally wrapped) when the addressed
	// document does not exist in its container.
	ErrNotFound = sentinel.ErrNotFound
	// ErrUnavailable is returned when the backend could not be reached or
	// refused the request.
	ErrUnavailable = sentinel.ErrUnavailable
)
