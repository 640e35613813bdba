package infrastructure

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string

	putErr      error
	putBucket   string
	putKey      string
	putBody     []byte
	putSize     int64
	putMimeType string
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeMinio) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.madeBucket = bucket
	return f.makeBucketErr
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.putBucket, f.putKey, f.putBody, f.putSize, f.putMimeType = bucket, key, body, size, opts.ContentType
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func TestMinioArchive_CreatesMissingBucket(t *testing.T) {
	api := &fakeMinio{}
	_, err := newMinioArchive(context.Background(), api, "resume-exports")
	require.NoError(t, err)
	assert.Equal(t, "resume-exports", api.madeBucket)
}

func TestMinioArchive_KeepsExistingBucket(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	_, err := newMinioArchive(context.Background(), api, "resume-exports")
	require.NoError(t, err)
	assert.Empty(t, api.madeBucket)
}

func TestMinioArchive_BucketErrors(t *testing.T) {
	_, err := newMinioArchive(context.Background(), &fakeMinio{bucketExistsErr: errors.New("denied")}, "b")
	assert.ErrorContains(t, err, "check bucket b")

	_, err = newMinioArchive(context.Background(), &fakeMinio{makeBucketErr: errors.New("quota")}, "b")
	assert.ErrorContains(t, err, "create bucket b")
}

func TestMinioArchive_Put(t *testing.T) {
	api := &fakeMinio{bucketExists: true}
	a, err := newMinioArchive(context.Background(), api, "resume-exports")
	require.NoError(t, err)

	err = a.Put(context.Background(), "exports/d/classic/x.pdf", []byte("%PDF-1.7"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "resume-exports", api.putBucket)
	assert.Equal(t, "exports/d/classic/x.pdf", api.putKey)
	assert.Equal(t, []byte("%PDF-1.7"), api.putBody)
	assert.Equal(t, int64(8), api.putSize)
	assert.Equal(t, "application/pdf", api.putMimeType)
}

func TestMinioArchive_PutError(t *testing.T) {
	a, err := newMinioArchive(context.Background(), &fakeMinio{bucketExists: true, putErr: errors.New("timeout")}, "b")
	require.NoError(t, err)

	err = a.Put(context.Background(), "k", []byte("x"), "image/png")
	assert.ErrorContains(t, err, "upload k")
}
