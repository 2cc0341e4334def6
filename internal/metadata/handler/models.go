package handler

import (
	"strings"

	dErrors "dicomviewer/pkg/domain-errors"
)

// ExtractRequest is the body of POST /api/dicom-metadata.
type ExtractRequest struct {
	Path   string   `json:"path"`
	Fields []string `json:"fields,omitempty"`
}

// Validate trims the path and rejects requests that do not name a document.
// Field names are passed through untouched: names are case-sensitive and
// unknown names simply select nothing.
func (r *ExtractRequest) Validate() error {
	r.Path = strings.TrimSpace(r.Path)
	if r.Path == "" {
		return dErrors.New(dErrors.CodeInvalidPath, "missing 'path' parameter")
	}
	return nil
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Message string `json:"message"`
}
