package drivers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Driver stores payloads in an S3-compatible bucket, optionally under a key prefix
type S3Driver struct {
	Client *s3.Client
	Bucket string
	Prefix string
}

func NewS3Driver(client *s3.Client, bucket, prefix string) *S3Driver {
	return &S3Driver{
		Client: client,
		Bucket: bucket,
		Prefix: prefix,
	}
}

// ObjectKey maps an archive key onto the bucket key
func (d *S3Driver) ObjectKey(key string) string {
	if d.Prefix == "" {
		return key
	}
	return path.Join(d.Prefix, key)
}

func (d *S3Driver) Save(ctx context.Context, key string, content io.Reader, contentType string) error {
	_, err := d.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.Bucket),
		Key:         aws.String(d.ObjectKey(key)),
		Body:        content,
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"archive-key": key},
	})
	if err != nil {
		return fmt.Errorf("failed to upload payload %s to S3: %w", key, err)
	}
	return nil
}

// Get returns an error wrapping fs.ErrNotExist when the key is absent, as the local driver does.
func (d *S3Driver) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	resp, err := d.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(d.Bucket),
		Key:    aws.String(d.ObjectKey(key)),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, "", fmt.Errorf("payload %s: %w", key, fs.ErrNotExist)
		}
		return nil, "", fmt.Errorf("failed to get payload %s from S3: %w", key, err)
	}

	contentType := "application/octet-stream"
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}

	return resp.Body, contentType, nil
}
