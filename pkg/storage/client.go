package storage

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/ir-automation/forensic-launcher/pkg/errors"
)

// S3API is the subset of *s3.Client used by Client.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Client provides read-only checks against the evidence buckets
type Client struct {
	s3Client S3API
}

// NewClient creates a new S3 client using the default credential chain
func NewClient(ctx context.Context, region string) (*Client, error) {
	slog.Info("s3_client_init", "region", region)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		slog.Error("aws_config_load_failed", "error", err)
		return nil, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to load AWS config"))
	}

	return NewClientWithAPI(s3.NewFromConfig(cfg)), nil
}

// NewClientWithAPI wraps an existing S3 API implementation.
func NewClientWithAPI(api S3API) *Client {
	return &Client{s3Client: api}
}

// BucketExists checks if the bucket exists and is reachable with the
// current credentials
func (c *Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	_, err := c.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		if isNotFound(err) {
			slog.Info("s3_bucket_not_found", "bucket", bucket)
			return false, nil
		}
		slog.Error("s3_head_bucket_failed", "bucket", bucket, "error", err)
		return false, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to check bucket existence"))
	}

	slog.Info("s3_bucket_exists", "bucket", bucket)
	return true, nil
}

// ObjectExists checks if an object exists in S3
func (c *Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			slog.Info("s3_object_not_found", "bucket", bucket, "s3_key", key)
			return false, nil
		}
		slog.Error("s3_head_object_failed", "bucket", bucket, "s3_key", key, "error", err)
		return false, errors.Classify(errors.ErrCollaborator, errors.Wrap(err, "failed to check object existence"))
	}

	slog.Info("s3_object_exists", "bucket", bucket, "s3_key", key)
	return true, nil
}

// isNotFound reports whether err is a missing bucket or key. HEAD responses
// carry no body, so S3 reports both as the bare "NotFound" code.
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket", "NoSuchKey":
		return true
	}
	return false
}
