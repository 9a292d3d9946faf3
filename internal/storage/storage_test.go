package storage

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects   map[string][]byte
	headErr   error
	created   []string
	lastPut   *s3.PutObjectInput
	deleteErr error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = body
	f.lastPut = in
	return &s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = append(f.created, aws.ToString(in.Bucket))
	return &s3.CreateBucketOutput{}, nil
}

func testConfig() S3Config {
	return S3Config{
		Endpoint:   "http://minio:9000",
		Region:     "us-east-1",
		Bucket:     "solidarios",
		AccessKey:  "minio",
		SecretKey:  "minio123",
		PublicHost: "192.168.0.10",
	}
}

func TestUploadBuildsPublicURL(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := newS3Store(testConfig(), fake)

	res, err := store.Upload(context.Background(), UploadInput{Key: "/items/1/foto.jpg", Body: []byte("img"), ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.0.10:9000/solidarios/items/1/foto.jpg", res.URL)
	assert.Equal(t, "abc", res.ETag)
	assert.Equal(t, []byte("img"), fake.objects["items/1/foto.jpg"])
	assert.EqualValues(t, 3, aws.ToInt64(fake.lastPut.ContentLength))

	key, ok := store.KeyFromURL(res.URL)
	assert.True(t, ok)
	assert.Equal(t, "items/1/foto.jpg", key)

	_, ok = store.KeyFromURL("https://outro.host/x.jpg")
	assert.False(t, ok)
}

func TestUploadRejectsEmpty(t *testing.T) {
	store := newS3Store(testConfig(), &fakeS3{objects: map[string][]byte{}})
	_, err := store.Upload(context.Background(), UploadInput{Key: "x"})
	assert.Error(t, err)
	_, err = store.Upload(context.Background(), UploadInput{Body: []byte("x")})
	assert.Error(t, err)
}

func TestPublicURLFallsBackToEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.PublicHost = ""
	store := newS3Store(cfg, &fakeS3{objects: map[string][]byte{}})
	res, err := store.Upload(context.Background(), UploadInput{Key: "a.png", Body: []byte("1")})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/solidarios/a.png", res.URL)
}

func TestEnsureBucketCreatesWhenMissing(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, headErr: &types.NotFound{}}
	require.NoError(t, newS3Store(testConfig(), fake).EnsureBucket(context.Background()))
	assert.Equal(t, []string{"solidarios"}, fake.created)

	existing := &fakeS3{objects: map[string][]byte{}}
	require.NoError(t, newS3Store(testConfig(), existing).EnsureBucket(context.Background()))
	assert.Empty(t, existing.created)
}

func TestDeleteIgnoresMissingObject(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, deleteErr: &types.NoSuchKey{}}
	assert.NoError(t, newS3Store(testConfig(), fake).Delete(context.Background(), "nada.jpg"))
}

func TestConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Endpoint = "minio:9000"
	_, err := NewS3Store(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}
	_, err := s.Upload(context.Background(), UploadInput{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, s.Delete(context.Background(), "x"))
}
