package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/dmitrijs2005/todoapi/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string][]byte
	putErr  error
	delErr  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if aws.ToInt64(in.ContentLength) != int64(len(b)) {
		return nil, errors.New("content length mismatch")
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func newTestS3Store(t *testing.T, fake *fakeS3) *S3Store {
	t.Helper()
	orig := newS3Client
	t.Cleanup(func() { newS3Client = orig })
	newS3Client = func(ctx context.Context, cfg *config.Config) (s3API, error) { return fake, nil }

	s, err := NewS3Store(context.Background(), &config.Config{S3Bucket: "uploads"})
	require.NoError(t, err)
	return s
}

func TestS3Store_PutOpenRemove(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}}
	s := newTestS3Store(t, fake)

	path, n, err := s.Put(ctx, "file-1-2.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "file-1-2.pdf", path)
	assert.Equal(t, int64(4), n)
	assert.Contains(t, fake.objects, "uploads/file-1-2.pdf")

	rc, err := s.Open(ctx, path)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "%PDF", string(b))

	require.NoError(t, s.Remove(ctx, path))
	_, err = s.Open(ctx, path)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_Errors(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{
		objects: map[string][]byte{},
		putErr:  errors.New("denied"),
		delErr:  &types.NoSuchKey{},
	}
	s := newTestS3Store(t, fake)

	_, _, err := s.Put(ctx, "x.txt", strings.NewReader("x"))
	require.ErrorContains(t, err, "denied")

	require.NoError(t, s.Remove(ctx, "gone.txt"))

	fake.delErr = errors.New("timeout")
	require.ErrorContains(t, s.Remove(ctx, "x.txt"), "timeout")

	_, _, err = s.Put(ctx, "../x.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestNewS3Store_ClientError(t *testing.T) {
	orig := newS3Client
	t.Cleanup(func() { newS3Client = orig })
	newS3Client = func(ctx context.Context, cfg *config.Config) (s3API, error) { return nil, errors.New("no region") }

	_, err := NewS3Store(context.Background(), &config.Config{})
	require.ErrorContains(t, err, "no region")
}
