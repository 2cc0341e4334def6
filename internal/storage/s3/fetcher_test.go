package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomviewer/internal/storage"
)

type fakeObjectAPI struct {
	body  string
	err   error
	input *s3.GetObjectInput
}

func (f *fakeObjectAPI) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentLength: aws.Int64(int64(len(f.body))),
	}, nil
}

func TestFetch_Success(t *testing.T) {
	api := &fakeObjectAPI{body: "DICM-body"}
	f := New(api, 0)

	got, err := f.Fetch(context.Background(), storage.Location{Container: "bucket", Key: "a/b.dcm"})
	require.NoError(t, err)
	assert.Equal(t, []byte("DICM-body"), got)
	assert.Equal(t, "bucket", aws.ToString(api.input.Bucket))
	assert.Equal(t, "a/b.dcm", aws.ToString(api.input.Key))
}

func TestFetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "no such key", err: &types.NoSuchKey{}, expected: storage.ErrNotFound},
		{name: "no such bucket", err: &types.NoSuchBucket{}, expected: storage.ErrNotFound},
		{name: "generic not found code", err: &smithy.GenericAPIError{Code: "NotFound"}, expected: storage.ErrNotFound},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, expected: storage.ErrUnavailable},
		{name: "network failure", err: errors.New("dial tcp: connection refused"), expected: storage.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(&fakeObjectAPI{err: tt.err}, 0)
			_, err := f.Fetch(context.Background(), storage.Location{Container: "missing-bucket", Key: "missing.dat"})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestFetch_MaxBytes(t *testing.T) {
	f := New(&fakeObjectAPI{body: strings.Repeat("x", 100)}, 10)
	_, err := f.Fetch(context.Background(), storage.Location{Container: "bucket", Key: "big.dcm"})
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}
