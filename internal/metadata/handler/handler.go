package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dicomviewer/internal/audit"
	"dicomviewer/internal/metadata/resolver"
	"dicomviewer/internal/metadata/service"
	"dicomviewer/internal/platform/middleware"
	dErrors "dicomviewer/pkg/domain-errors"
	"dicomviewer/pkg/platform/httputil"
	"dicomviewer/pkg/requestcontext"
)

// Service defines the extraction operations exposed over HTTP.
type Service interface {
	Extract(ctx context.Context, path string, fields []string) (resolver.AttributeMap, error)
	KnownFields() []string
	DefaultFields() []string
}

// Auditor receives one event per extraction attempt.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler serves the metadata API used by the viewer.
type Handler struct {
	service   Service
	auditor   Auditor
	logger    *slog.Logger
	extractMW []func(http.Handler) http.Handler
}

// Option configures a Handler.
type Option func(*Handler)

// WithExtractMiddleware applies mw to the extraction route only, e.g. a rate
// limiter that should not count listing calls.
func WithExtractMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.extractMW = append(h.extractMW, mw...)
	}
}

// New creates a metadata Handler. A nil auditor disables audit events.
func New(svc Service, auditor Auditor, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service: svc,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the metadata routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.With(h.extractMW...).With(middleware.ContentTypeJSON).Post("/dicom-metadata", h.handleExtract)
		r.Get("/common-fields", h.handleCommonFields)
		r.Get("/fields", h.handleFields)
	})
}

// handleExtract returns the requested header attributes of one document.
func (h *Handler) handleExtract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ExtractRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	start := time.Now()
	attrs, err := h.service.Extract(ctx, req.Path, req.Fields)
	h.emit(ctx, req, attrs, err, time.Since(start))
	if err != nil {
		h.writeExtractError(ctx, w, requestID, req.Path, err)
		return
	}

	h.logger.InfoContext(ctx, "metadata extracted",
		"request_id", requestID,
		"path", req.Path,
		"attributes", len(attrs),
	)
	httputil.WriteJSON(w, http.StatusOK, attrs)
}

func (h *Handler) writeExtractError(ctx context.Context, w http.ResponseWriter, requestID, path string, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		h.logger.ErrorContext(ctx, "metadata extraction failed",
			"request_id", requestID,
			"path", path,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "extraction failed"))
		return
	}

	level := slog.LevelWarn
	if se.Kind == service.KindSourceUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "metadata extraction failed",
		"request_id", requestID,
		"path", path,
		"kind", string(se.Kind),
		"error", err,
	)
	httputil.WriteError(w, dErrors.Wrap(err, se.Code(), se.Message))
}

func (h *Handler) emit(ctx context.Context, req *ExtractRequest, attrs resolver.AttributeMap, err error, d time.Duration) {
	if h.auditor == nil {
		return
	}
	outcome := audit.OutcomeSuccess
	if err != nil {
		outcome = string(dErrors.CodeInternal)
		if kind, ok := service.KindOf(err); ok {
			outcome = string(kind)
		}
	}
	event := audit.Event{
		Timestamp:      requestcontext.Now(ctx),
		RequestID:      requestcontext.RequestID(ctx),
		Path:           req.Path,
		Fields:         len(req.Fields),
		Outcome:        outcome,
		AttributeCount: len(attrs),
		Duration:       d,
		ClientIP:       requestcontext.ClientIP(ctx),
		UserAgent:      requestcontext.UserAgent(ctx),
	}
	if emitErr := h.auditor.Emit(ctx, event); emitErr != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", event.RequestID,
			"error", emitErr,
		)
	}
}

// handleCommonFields lists the attribute names the viewer shows by default.
func (h *Handler) handleCommonFields(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.DefaultFields())
}

// handleFields lists every attribute name the service can resolve.
func (h *Handler) handleFields(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.KnownFields())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Message: "The server is running"})
}
