package links

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
)

// S3API is the subset of *s3.Client used by S3Repository.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Repository stores one JSON object per link in an S3-compatible bucket.
// Uniqueness relies on conditional writes: Create sends If-None-Match: *
// and Replace sends If-Match with the ETag it just observed.
type S3Repository struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Repository(client S3API, bucket, prefix string, scheme models.Scheme) *S3Repository {
	return &S3Repository{client: client, bucket: bucket, prefix: path.Join(prefix, tableFor(scheme))}
}

func (r *S3Repository) key(lookupHash string) *string {
	return aws.String(path.Join(r.prefix, lookupHash))
}

func (r *S3Repository) Get(ctx context.Context, lookupHash string) (*models.Link, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.key(lookupHash),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("s3 error: %w", err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 error: %w", err)
	}

	m, err := decodeMaterial(b)
	if err != nil {
		return nil, fmt.Errorf("s3 error: %w", err)
	}
	return &models.Link{LookupHash: lookupHash, Material: m}, nil
}

func (r *S3Repository) Exists(ctx context.Context, lookupHash string) (bool, error) {
	_, err := r.head(ctx, lookupHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *S3Repository) Create(ctx context.Context, link *models.Link) error {
	body, err := encodeMaterial(link.Material)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         r.key(link.LookupHash),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		switch s3ErrorCode(err) {
		case "PreconditionFailed":
			return common.ErrorAlreadyExists
		case "ConditionalRequestConflict":
			return common.ErrorConflict
		}
		return fmt.Errorf("s3 error: %w", err)
	}
	return nil
}

func (r *S3Repository) Replace(ctx context.Context, link *models.Link) error {
	head, err := r.head(ctx, link.LookupHash)
	if err != nil {
		return err
	}

	body, err := encodeMaterial(link.Material)
	if err != nil {
		return err
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         r.key(link.LookupHash),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfMatch:     head.ETag,
	})
	if err != nil {
		switch s3ErrorCode(err) {
		case "PreconditionFailed", "ConditionalRequestConflict":
			return common.ErrorConflict
		}
		return fmt.Errorf("s3 error: %w", err)
	}
	return nil
}

func (r *S3Repository) head(ctx context.Context, lookupHash string) (*s3.HeadObjectOutput, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    r.key(lookupHash),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("s3 error: %w", err)
	}
	return out, nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	code := s3ErrorCode(err)
	return code == "NoSuchKey" || code == "NotFound"
}

func s3ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
