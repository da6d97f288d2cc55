package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	data        []byte
	contentType string
}

// fakeS3 内存实现的 s3API
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = fakeObject{data: data, contentType: aws.ToString(in.ContentType)}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.data))),
		LastModified:  aws.Time(time.Unix(1700000000, 0)),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

// --- 测试 S3Storage ---

func TestS3Storage_RoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := newS3StorageWithClient(fake, "bucket")
	ctx := context.Background()
	path := "events/2024/01/15/a.png"

	// 非 Seeker 的 reader 也能上传
	require.NoError(t, s.SaveWithContext(ctx, path, io.LimitReader(bytes.NewReader(pngHeader), 1<<20), "image/png"))
	assert.Equal(t, "image/png", fake.objects[path].contentType)

	exists, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	obj, err := s.GetWithContext(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(len(pngHeader)), obj.Size)
	assert.False(t, obj.ModTime.IsZero())

	require.NoError(t, s.DeleteWithContext(ctx, path))
	assert.ErrorIs(t, s.DeleteWithContext(ctx, path), ErrNotFound)

	_, err = s.GetWithContext(ctx, path)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, s.Health(ctx))
	assert.Equal(t, "s3", s.Name())
}

func TestS3Storage_DefaultContentTypeAndInvalidPath(t *testing.T) {
	fake := newFakeS3()
	s := newS3StorageWithClient(fake, "bucket")
	ctx := context.Background()

	require.NoError(t, s.SaveWithContext(ctx, "a.bin", strings.NewReader("x"), ""))
	assert.Equal(t, "application/octet-stream", fake.objects["a.bin"].contentType)

	err := s.SaveWithContext(ctx, "../a.bin", strings.NewReader("x"), "")
	assert.ErrorContains(t, err, "invalid")
}

func TestS3Storage_HeadError(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("boom")
	s := newS3StorageWithClient(fake, "bucket")

	_, err := s.Exists(context.Background(), "a.jpg")
	assert.ErrorContains(t, err, "boom")
	assert.NotErrorIs(t, s.DeleteWithContext(context.Background(), "a.jpg"), ErrNotFound)
}

func TestNewS3Storage_RequiresBucket(t *testing.T) {
	_, err := NewS3Storage(context.Background(), S3Config{})
	assert.EqualError(t, err, "s3 bucket is required")
}

func TestReaderSize(t *testing.T) {
	assert.Equal(t, int64(3), readerSize(strings.NewReader("abc")))
	assert.Equal(t, int64(-1), readerSize(io.LimitReader(strings.NewReader("abc"), 3)))

	r := bytes.NewReader([]byte("abcdef"))
	_, _ = r.Seek(2, io.SeekStart)
	assert.Equal(t, int64(4), readerSize(r))
}
