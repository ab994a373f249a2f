package export

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client the destination uses.
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads artifacts to an S3-compatible bucket.
type S3Destination struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Name implements Destination.
func (d *S3Destination) Name() string {
	return "s3://" + path.Join(d.bucket, d.prefix)
}

// Key returns the object key for an artifact name.
func (d *S3Destination) Key(name string) string {
	if d.prefix == "" {
		return name
	}
	return path.Join(d.prefix, name)
}

// Write uploads each artifact as <prefix>/<name>.
func (d *S3Destination) Write(ctx context.Context, artifacts []Artifact) error {
	contentType := "text/csv"
	for _, a := range artifacts {
		_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(d.bucket),
			Key:         aws.String(d.Key(a.Name)),
			Body:        bytes.NewReader(a.Data),
			ContentType: &contentType,
		})
		if err != nil {
			return fmt.Errorf("s3 put object %s: %w", a.Name, err)
		}
	}
	return nil
}
