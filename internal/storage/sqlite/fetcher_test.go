package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"dicomviewer/internal/storage"
)

type FetcherSuite struct {
	suite.Suite
	ctx     context.Context
	fetcher *Fetcher
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherSuite))
}

func (s *FetcherSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := Open(s.ctx, filepath.Join(s.T().TempDir(), "docs.db"), "")
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })
	s.fetcher = New(db)
}

func (s *FetcherSuite) TestFetchStoredDocument() {
	loc := storage.Location{Container: "studies", Key: "ct/1.dcm"}
	s.Require().NoError(s.fetcher.Put(s.ctx, loc, []byte("DICM-body")))

	got, err := s.fetcher.Fetch(s.ctx, loc)
	s.Require().NoError(err)
	s.Equal([]byte("DICM-body"), got)
}

func (s *FetcherSuite) TestPutReplaces() {
	loc := storage.Location{Container: "studies", Key: "ct/1.dcm"}
	s.Require().NoError(s.fetcher.Put(s.ctx, loc, []byte("v1")))
	s.Require().NoError(s.fetcher.Put(s.ctx, loc, []byte("v2")))

	got, err := s.fetcher.Fetch(s.ctx, loc)
	s.Require().NoError(err)
	s.Equal([]byte("v2"), got)
}

func (s *FetcherSuite) TestNotFound() {
	_, err := s.fetcher.Fetch(s.ctx, storage.Location{Container: "missing-bucket", Key: "missing.dat"})
	s.ErrorIs(err, storage.ErrNotFound)
}

func (s *FetcherSuite) TestMissingTableIsUnavailable() {
	f := New(s.fetcher.db, WithTable("no_such_table"))
	_, err := f.Fetch(s.ctx, storage.Location{Container: "a", Key: "b"})
	s.ErrorIs(err, storage.ErrUnavailable)
}

func (s *FetcherSuite) TestMaxBytes() {
	loc := storage.Location{Container: "studies", Key: "ct/1.dcm"}
	s.Require().NoError(s.fetcher.Put(s.ctx, loc, []byte("0123456789")))

	s.Run("larger document is rejected", func() {
		_, err := New(s.fetcher.db, WithMaxBytes(9)).Fetch(s.ctx, loc)
		s.ErrorIs(err, storage.ErrUnavailable)
		s.ErrorContains(err, "10 bytes, limit 9")
	})
	s.Run("document at the limit is served", func() {
		got, err := New(s.fetcher.db, WithMaxBytes(10)).Fetch(s.ctx, loc)
		s.Require().NoError(err)
		s.Equal([]byte("0123456789"), got)
	})
	s.Run("missing document is still not found", func() {
		_, err := New(s.fetcher.db, WithMaxBytes(9)).Fetch(s.ctx, storage.Location{Container: "studies", Key: "other.dcm"})
		s.ErrorIs(err, storage.ErrNotFound)
	})
}

func (s *FetcherSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.fetcher.Fetch(ctx, storage.Location{Container: "a", Key: "b"})
	s.ErrorIs(err, storage.ErrUnavailable)
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
}
