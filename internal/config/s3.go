// internal/config/s3.go
package config

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the client pieces used to store receipt attachments.
type S3Config struct {
	Client   *s3.Client
	Uploader *manager.Uploader
	Bucket   string
}

// Enabled reports whether receipts can be stored.
func (c *S3Config) Enabled() bool {
	return c != nil && c.Client != nil && c.Bucket != ""
}

// NewS3Config builds an S3 client from settings. Static credentials are used
// only when both keys are set; otherwise the default AWS chain applies. A
// custom endpoint switches to path-style addressing (MinIO, LocalStack).
func NewS3Config(ctx context.Context, settings S3Settings) (*S3Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(settings.Region),
	}
	if settings.AccessKeyID != "" && settings.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.Endpoint != "" {
			o.BaseEndpoint = &settings.Endpoint
			o.UsePathStyle = true
		}
	})

	return &S3Config{
		Client:   client,
		Uploader: manager.NewUploader(client),
		Bucket:   settings.Bucket,
	}, nil
}
