// Package s3 implements the blob store on AWS S3.
package s3

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	aws_s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/PavLouis/PWA-Movies/blobstore"
	"github.com/PavLouis/PWA-Movies/model"
)

const (
	objectPrefix = "blobs/"

	metaName = "blob-name"
)

type Client interface {
	PutObject(ctx context.Context, in *aws_s3.PutObjectInput, opts ...func(*aws_s3.Options)) (*aws_s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *aws_s3.GetObjectInput, opts ...func(*aws_s3.Options)) (*aws_s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *aws_s3.HeadObjectInput, opts ...func(*aws_s3.Options)) (*aws_s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *aws_s3.DeleteObjectInput, opts ...func(*aws_s3.Options)) (*aws_s3.DeleteObjectOutput, error)
}

type store struct {
	client Client
	bucket string
}

// New creates an S3-backed blob store using the default AWS config chain.
func New(ctx context.Context, region, bucket string) (blobstore.Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load aws config")
	}

	return NewWithClient(aws_s3.NewFromConfig(cfg), bucket), nil
}

// NewWithClient creates an S3-backed blob store with an explicit client.
func NewWithClient(client Client, bucket string) blobstore.Store {
	return &store{client: client, bucket: bucket}
}

func (s *store) OpenWrite(ctx context.Context, name, contentType string) (blobstore.Writer, error) {
	return &writer{
		store:       s,
		ctx:         ctx,
		name:        name,
		contentType: contentType,
	}, nil
}

func (s *store) OpenRead(ctx context.Context, id string) (io.ReadCloser, *blobstore.Object, error) {
	out, err := s.client.GetObject(ctx, &aws_s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectPrefix + id),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil, blobstore.ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "failed to get object from s3")
	}

	meta := &blobstore.Object{
		ID:          id,
		Name:        out.Metadata[metaName],
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}
	if out.LastModified != nil {
		meta.CreatedAt = *out.LastModified
	}

	return out.Body, meta, nil
}

func (s *store) Delete(ctx context.Context, id string) error {
	key := objectPrefix + id

	// S3 deletes are unconditional; probe first so absent objects report
	// not found instead of succeeding silently.
	_, err := s.client.HeadObject(ctx, &aws_s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return blobstore.ErrNotFound
		}
		return errors.Wrap(err, "failed to check object in s3")
	}

	_, err = s.client.DeleteObject(ctx, &aws_s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete object from s3")
	}

	log.Infof("Deleted s3://%s/%s", s.bucket, key)
	return nil
}

func isNotFound(err error) bool {
	// Covers NoSuchKey from GetObject and the bare 404 from HeadObject.
	msg := err.Error()
	return strings.Contains(msg, "NoSuchKey") ||
		strings.Contains(msg, "NotFound") ||
		strings.Contains(msg, "StatusCode: 404")
}

// writer buffers the object and uploads it in a single PutObject on Commit.
// Multipart upload is not worth it for poster-sized images.
type writer struct {
	store       *store
	ctx         context.Context
	name        string
	contentType string

	buf    bytes.Buffer
	closed bool
}

func (w *writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, blobstore.ErrClosed
	}
	return w.buf.Write(p)
}

func (w *writer) Commit() (string, error) {
	if w.closed {
		return "", blobstore.ErrClosed
	}
	w.closed = true

	id := model.MustGenerateID()
	key := objectPrefix + id

	_, err := w.store.client.PutObject(w.ctx, &aws_s3.PutObjectInput{
		Bucket:        aws.String(w.store.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(w.buf.Bytes()),
		ContentType:   aws.String(w.contentType),
		ContentLength: aws.Int64(int64(w.buf.Len())),
		Metadata:      map[string]string{metaName: w.name},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to upload object to s3")
	}

	log.Infof("Uploaded %d bytes to s3://%s/%s", w.buf.Len(), w.store.bucket, key)
	return id, nil
}

func (w *writer) Close() error {
	w.closed = true
	w.buf.Reset()
	return nil
}
