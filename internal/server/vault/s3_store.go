package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/passvault/passvault/internal/common"
	sc "github.com/passvault/passvault/internal/server/config"
)

// s3API is the subset of the S3 client used by the store; a seam for tests.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Store keeps one object per user, named after the user id. Works against
// AWS or any S3-compatible backend (MinIO in development).
type S3Store struct {
	client s3API
	bucket string
}

func NewS3Store(ctx context.Context, cfg *sc.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func storageKey(userID string) string {
	return fmt.Sprintf("user-%s.enc", userID)
}

func (s *S3Store) Get(ctx context.Context, userID string) (*File, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey(userID)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("blob store error: %w", err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("blob store error: %w", err)
	}

	lastModified := time.Now().UTC()
	if out.LastModified != nil {
		lastModified = *out.LastModified
	}

	return &File{Content: string(content), LastModified: lastModified}, nil
}

func (s *S3Store) Put(ctx context.Context, userID string, content string) (time.Time, error) {
	now := time.Now().UTC()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey(userID)),
		Body:        strings.NewReader(content),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("blob store error: %w", err)
	}

	return now, nil
}

func (s *S3Store) Size(ctx context.Context, userID string) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey(userID)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("blob store error: %w", err)
	}

	if out.ContentLength == nil {
		return 0, nil
	}
	return *out.ContentLength, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
