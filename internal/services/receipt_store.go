package services

import (
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"expensetracker/internal/apperr"
	"expensetracker/internal/config"
)

// ReceiptStore keeps receipt attachments in object storage.
type ReceiptStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) error
	URL(ctx context.Context, key string) (string, error)
}

type S3ReceiptStore struct {
	uploader  *manager.Uploader
	presigner *s3.PresignClient
	bucket    string
	urlTTL    time.Duration
}

func NewS3ReceiptStore(cfg *config.S3Config) *S3ReceiptStore {
	return &S3ReceiptStore{
		uploader:  cfg.Uploader,
		presigner: s3.NewPresignClient(cfg.Client),
		bucket:    cfg.Bucket,
		urlTTL:    15 * time.Minute,
	}
}

func (s *S3ReceiptStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return apperr.Internal(err, "upload receipt", "key", key)
	}
	return nil
}

// URL returns a short-lived presigned GET link for key.
func (s *S3ReceiptStore) URL(ctx context.Context, key string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", apperr.Internal(err, "presign receipt", "key", key)
	}
	return req.URL, nil
}
