package repomanager

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/repositories/links"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options locates the bucket holding link objects.
type S3Options struct {
	AccessKey    string
	SecretKey    string
	Region       string
	BaseEndpoint string
	Bucket       string
	Prefix       string
}

// S3API is what the manager needs from *s3.Client.
type S3API interface {
	links.S3API
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3RepositoryManager serves links from an S3-compatible bucket. There are
// no transactions; conditional writes keep Create and Replace atomic.
type S3RepositoryManager struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Client builds a path-style client suitable for MinIO and AWS.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	optFns := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		optFns = append(optFns, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		so.UsePathStyle = true
	}), nil
}

func NewS3RepositoryManager(client S3API, o S3Options) *S3RepositoryManager {
	return &S3RepositoryManager{client: client, bucket: o.Bucket, prefix: o.Prefix}
}

// RunMigrations only checks that the bucket is reachable.
func (m *S3RepositoryManager) RunMigrations(ctx context.Context) error {
	if _, err := m.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(m.bucket)}); err != nil {
		return fmt.Errorf("bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *S3RepositoryManager) Links(scheme models.Scheme) links.Repository {
	return links.NewS3Repository(m.client, m.bucket, m.prefix, scheme)
}

func (m *S3RepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return fn(ctx, m)
}

func (m *S3RepositoryManager) Close() error {
	return nil
}
