package fsxs3

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/Abraxas-365/mosaic/pkg/fsx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// API is the subset of *s3.Client used here
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3FileSystem implements fsx.FileReader over a bucket and key prefix
type S3FileSystem struct {
	client API
	bucket string
	prefix string
}

// NewS3FileSystem creates a reader for bucket. Every path is resolved under
// prefix, which may be empty.
func NewS3FileSystem(client API, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{client: client, bucket: bucket, prefix: prefix}
}

func (fs *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	key, err := fs.key(p)
	if err != nil {
		return nil, err
	}
	out, err := fs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fs.mapErr(p, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fsx.ErrReadFailed(p, err)
	}
	return data, nil
}

func (fs *S3FileSystem) Stat(ctx context.Context, p string) (fsx.FileInfo, error) {
	key, err := fs.key(p)
	if err != nil {
		return fsx.FileInfo{}, err
	}
	out, err := fs.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(fs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fsx.FileInfo{}, fs.mapErr(p, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" || contentType == "binary/octet-stream" {
		contentType = fsx.DetectContentType(key)
	}
	return fsx.FileInfo{
		Name:        path.Base(key),
		Size:        aws.ToInt64(out.ContentLength),
		ModTime:     aws.ToTime(out.LastModified),
		ContentType: contentType,
	}, nil
}

func (fs *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := fs.Stat(ctx, p)
	if err != nil {
		if fsx.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *S3FileSystem) key(p string) (string, error) {
	rel, err := fsx.Clean(p)
	if err != nil {
		return "", err
	}
	if fs.prefix == "" {
		return rel, nil
	}
	return path.Join(fs.prefix, rel), nil
}

func (fs *S3FileSystem) mapErr(p string, err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return fsx.ErrNotFound(p)
	}
	return fsx.ErrReadFailed(p, err)
}
