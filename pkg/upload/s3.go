package upload

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pillar-dev/pillar/pkg/api"
)

// S3Uploader puts images straight into an S3 bucket, for self-hosted
// deployments where the backend reads media from the same bucket instead
// of proxying uploads.
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	up := upload.NewS3Uploader(s3.NewFromConfig(cfg), "media-bucket")
type S3Uploader struct {
	client    *s3.Client
	bucket    string
	prefix    string
	maxSize   int64
	urlExpiry time.Duration
}

// S3Option configures an S3Uploader.
type S3Option func(*S3Uploader)

// WithPrefix sets the object key prefix. Default: "images/".
func WithPrefix(p string) S3Option {
	return func(u *S3Uploader) {
		u.prefix = p
	}
}

// WithS3MaxSize bounds the upload size in bytes. Default: 10 MB.
func WithS3MaxSize(n int64) S3Option {
	return func(u *S3Uploader) {
		u.maxSize = n
	}
}

// WithURLExpiry sets how long the returned presigned URL stays valid.
// Default: 24 hours.
func WithURLExpiry(d time.Duration) S3Option {
	return func(u *S3Uploader) {
		u.urlExpiry = d
	}
}

// NewS3Uploader creates an uploader writing into the given bucket.
func NewS3Uploader(client *s3.Client, bucket string, opts ...S3Option) *S3Uploader {
	u := &S3Uploader{
		client:    client,
		bucket:    bucket,
		prefix:    "images/",
		maxSize:   10 << 20,
		urlExpiry: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload implements Uploader. The object key doubles as the Image id;
// the URL is presigned for read access.
func (u *S3Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (*api.Image, error) {
	var buf bytes.Buffer
	src := r
	if u.maxSize > 0 {
		src = io.LimitReader(r, u.maxSize+1)
	}
	n, err := io.Copy(&buf, src)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if u.maxSize > 0 && n > u.maxSize {
		return nil, ErrTooLarge
	}

	key := u.prefix + randomID() + path.Ext(filename)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload: %w", err)
	}

	presigner := s3.NewPresignClient(u.client)
	presigned, err := presigner.PresignGetObject(ctx,
		&s3.GetObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		},
		s3.WithPresignExpires(u.urlExpiry),
	)
	if err != nil {
		return nil, fmt.Errorf("presign image url: %w", err)
	}

	return &api.Image{
		ID:        key,
		URL:       presigned.URL,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func randomID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
