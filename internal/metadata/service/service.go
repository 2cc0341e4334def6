// Package service orchestrates one metadata extraction: fetch the document,
// walk its header and resolve the selected attributes.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dicomviewer/internal/metadata/dictionary"
	"dicomviewer/internal/metadata/metrics"
	"dicomviewer/internal/metadata/parser"
	"dicomviewer/internal/metadata/resolver"
	"dicomviewer/internal/storage"
)

// Fetcher retrieves document bytes. It mirrors storage.Fetcher so mocks can
// be generated alongside the service.
type Fetcher interface {
	Fetch(ctx context.Context, loc storage.Location) ([]byte, error)
}

// Service extracts header attributes from stored documents. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	fetcher Fetcher
	dict    *dictionary.Dictionary
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records extraction metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithDictionary replaces the process-wide tag dictionary.
func WithDictionary(d *dictionary.Dictionary) Option {
	return func(s *Service) {
		if d != nil {
			s.dict = d
		}
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New creates a Service. The fetcher is required.
func New(fetcher Fetcher, opts ...Option) (*Service, error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	s := &Service{
		fetcher: fetcher,
		dict:    dictionary.Standard(),
		tracer:  otel.Tracer("dicomviewer/metadata"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ParseLocation splits "container/key" at the first separator. Both halves
// must be non-empty; the key is passed through unchanged.
func ParseLocation(path string) (storage.Location, error) {
	if strings.TrimSpace(path) == "" {
		return storage.Location{}, newError(KindInvalidPath, "path is required", nil)
	}
	container, key, found := strings.Cut(path, "/")
	if !found || container == "" || key == "" {
		return storage.Location{}, newError(KindInvalidPath,
			fmt.Sprintf("path %q must have the form <container>/<key>", path), nil)
	}
	return storage.Location{Container: container, Key: key}, nil
}

// Extract fetches the document at path and returns its attributes. A nil or
// empty fields list returns every attribute the dictionary can name;
// otherwise only the listed names are returned.
//
// Every failure is an *Error. A document that cannot be parsed never yields a
// partial map.
func (s *Service) Extract(ctx context.Context, path string, fields []string) (attrs resolver.AttributeMap, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "metadata.Extract", trace.WithAttributes(
		attribute.String("dicom.path", path),
		attribute.Int("dicom.fields", len(fields)),
	))
	defer func() {
		outcome := "ok"
		if err != nil {
			kind, _ := KindOf(err)
			outcome = string(kind)
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		} else {
			span.SetAttributes(attribute.Int("dicom.attributes", len(attrs)))
			s.metrics.ObserveAttributes(len(attrs))
		}
		s.metrics.IncrementOutcome(outcome)
		s.metrics.ObserveExtractLatency(time.Since(start))
		span.End()
	}()

	loc, err := ParseLocation(path)
	if err != nil {
		return nil, err
	}

	data, err := s.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDocumentSize(len(data))

	sc, err := parser.Parse(data, parser.WithVRLookup(s.dict))
	if err != nil {
		return nil, newError(KindUnsupportedOrCorruptDocument, "document is not a DICOM file", err)
	}
	attrs = resolver.Resolve(sc, resolver.SelectionFromFields(fields), s.dict)
	if err := sc.Err(); err != nil {
		return nil, newError(KindUnsupportedOrCorruptDocument, "document header is corrupt", err)
	}
	return attrs, nil
}

func (s *Service) fetch(ctx context.Context, loc storage.Location) ([]byte, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "storage.Fetch", trace.WithAttributes(
		attribute.String("storage.container", loc.Container),
		attribute.String("storage.key", loc.Key),
	))
	defer span.End()

	data, err := s.fetcher.Fetch(ctx, loc)
	switch {
	case err == nil:
		s.metrics.ObserveFetchLatency("ok", time.Since(start))
		span.SetAttributes(attribute.Int("storage.bytes", len(data)))
		return data, nil
	case errors.Is(err, storage.ErrNotFound):
		s.metrics.ObserveFetchLatency("not_found", time.Since(start))
		return nil, newError(KindSourceNotFound, fmt.Sprintf("document %s not found", loc), err)
	default:
		s.metrics.ObserveFetchLatency("error", time.Since(start))
		return nil, newError(KindSourceUnavailable, fmt.Sprintf("storage unavailable while fetching %s", loc), err)
	}
}

// KnownFields lists every attribute name the service can return.
func (s *Service) KnownFields() []string {
	return s.dict.Names()
}

// DefaultFields lists the attribute names shown when the caller has not
// chosen columns.
func (s *Service) DefaultFields() []string {
	return s.dict.Defaults()
}
