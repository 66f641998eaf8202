package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/solara-app/mediakit/internal/config"
	"github.com/solara-app/mediakit/internal/model"
)

// S3Storage writes images straight to an S3-compatible bucket. Credentials
// come from the environment so they never land in the yaml config.
type S3Storage struct {
	client *s3.Client

	bucket        string
	keyPrefix     string
	publicBaseURL string
}

func NewS3Storage(cfg config.S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			os.Getenv("S3_ACCESS_KEY_ID"), os.Getenv("S3_SECRET_ACCESS_KEY"), "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	publicBase := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}

	return &S3Storage{
		client:        client,
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		publicBaseURL: publicBase,
	}, nil
}

func (s *S3Storage) Upload(ctx context.Context, f *model.File) (string, error) {
	key := s.keyPrefix + uuid.New().String() + filepath.Ext(f.Name)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(f.Data),
	}
	if f.MIME != "" {
		input.ContentType = aws.String(f.MIME)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %q: %w", f.Name, err)
	}

	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Storage) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is not under this bucket", url)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}
