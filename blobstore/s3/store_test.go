package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PavLouis/PWA-Movies/blobstore"
)

// fakeClient keeps objects in a map and speaks just enough S3 for the store.
type fakeClient struct {
	objects map[string]fakeObject
}

type fakeObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{objects: make(map[string]fakeObject)}
}

func (c *fakeClient) PutObject(_ context.Context, in *aws_s3.PutObjectInput, _ ...func(*aws_s3.Options)) (*aws_s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	c.objects[aws.ToString(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
	}
	return &aws_s3.PutObjectOutput{}, nil
}

func (c *fakeClient) GetObject(_ context.Context, in *aws_s3.GetObjectInput, _ ...func(*aws_s3.Options)) (*aws_s3.GetObjectOutput, error) {
	obj, ok := c.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, errors.New("api error NoSuchKey: The specified key does not exist")
	}
	return &aws_s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentType:   aws.String(obj.contentType),
		ContentLength: aws.Int64(int64(len(obj.data))),
		Metadata:      obj.metadata,
	}, nil
}

func (c *fakeClient) HeadObject(_ context.Context, in *aws_s3.HeadObjectInput, _ ...func(*aws_s3.Options)) (*aws_s3.HeadObjectOutput, error) {
	if _, ok := c.objects[aws.ToString(in.Key)]; !ok {
		return nil, errors.New("api error NotFound: Not Found, StatusCode: 404")
	}
	return &aws_s3.HeadObjectOutput{}, nil
}

func (c *fakeClient) DeleteObject(_ context.Context, in *aws_s3.DeleteObjectInput, _ ...func(*aws_s3.Options)) (*aws_s3.DeleteObjectOutput, error) {
	delete(c.objects, aws.ToString(in.Key))
	return &aws_s3.DeleteObjectOutput{}, nil
}

func TestBlobStore_S3_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeClient(), "test-bucket")

	content := []byte("poster bytes")
	id, err := blobstore.Put(ctx, s, "poster.jpg", "image/jpeg", bytes.NewReader(content))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	data, obj, err := blobstore.ReadAll(ctx, s, id)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.Equal(t, "poster.jpg", obj.Name)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.EqualValues(t, len(content), obj.Size)
}

func TestBlobStore_S3_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeClient(), "test-bucket")

	_, _, err := s.OpenRead(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	err = s.Delete(ctx, "missing")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBlobStore_S3_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewWithClient(newFakeClient(), "test-bucket")

	id, err := blobstore.Put(ctx, s, "gone.jpg", "image/jpeg", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, id))

	_, _, err = s.OpenRead(ctx, id)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
