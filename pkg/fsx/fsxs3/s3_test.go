package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	keys    []string
	fail    error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.keys = append(f.keys, aws.ToString(in.Key))
	if f.fail != nil {
		return nil, f.fail
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.keys = append(f.keys, aws.ToString(in.Key))
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		LastModified:  aws.Time(time.Unix(1700000000, 0)),
	}, nil
}

func TestS3FileSystem(t *testing.T) {
	api := &fakeS3{objects: map[string][]byte{"cv/resume.pdf": []byte("pdf")}}
	fs := NewS3FileSystem(api, "bucket", "cv")
	ctx := context.Background()

	data, err := fs.ReadFile(ctx, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))

	info, err := fs.Stat(ctx, "resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", info.Name)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "application/pdf", info.ContentType)

	ok, err := fs.Exists(ctx, "other.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fs.ReadFile(ctx, "other.pdf")
	assert.True(t, fsx.IsNotFound(err))

	_, err = fs.ReadFile(ctx, "../escape.pdf")
	assert.Error(t, err)
	assert.Equal(t, []string{"cv/resume.pdf", "cv/resume.pdf", "cv/other.pdf", "cv/other.pdf"}, api.keys)
}

func TestS3FileSystem_TransportError(t *testing.T) {
	fs := NewS3FileSystem(&fakeS3{fail: errors.New("dial tcp: timeout")}, "bucket", "")
	_, err := fs.ReadFile(context.Background(), "resume.pdf")
	require.Error(t, err)
	assert.False(t, fsx.IsNotFound(err))
	assert.ErrorContains(t, err, "dial tcp: timeout")
}
