package links

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/tnyr/internal/common"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body []byte
	etag string
}

// fakeS3 honours If-None-Match: * and If-Match the way S3 does.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	version int
	keys    []string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string]fakeObject{}}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(o.body)), ETag: aws.String(o.etag)}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ETag: aws.String(o.etag)}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return nil, f.putErr
	}

	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	cur, exists := f.objects[key]

	if aws.ToString(in.IfNoneMatch) == "*" && exists {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}
	}
	if in.IfMatch != nil && (!exists || cur.etag != aws.ToString(in.IfMatch)) {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed"}
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.version++
	etag := fmt.Sprintf("\"v%d\"", f.version)
	f.objects[key] = fakeObject{body: body, etag: etag}
	return &s3.PutObjectOutput{ETag: aws.String(etag)}, nil
}

func TestS3Repository_Contract(t *testing.T) {
	runRepositoryContract(t, NewS3Repository(newFakeS3(), "bucket", "tnyr", models.SchemeClient))
}

func TestS3Repository_ConcurrentCreate(t *testing.T) {
	runConcurrentCreate(t, NewS3Repository(newFakeS3(), "bucket", "", models.SchemeServer), 16)
}

func TestS3Repository_KeyLayout(t *testing.T) {
	fake := newFakeS3()
	ctx := context.Background()

	require.NoError(t, NewS3Repository(fake, "bucket", "tnyr", models.SchemeServer).
		Create(ctx, &models.Link{LookupHash: "abc"}))
	require.NoError(t, NewS3Repository(fake, "bucket", "", models.SchemeClient).
		Create(ctx, &models.Link{LookupHash: "abc"}))

	assert.Equal(t, []string{"tnyr/urls/abc", "client_side_urls/abc"}, fake.keys)
}

func TestS3Repository_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	link := &models.Link{LookupHash: "abc"}

	tests := []struct {
		name    string
		putErr  error
		wantErr error
	}{
		{"conditional conflict", &smithy.GenericAPIError{Code: "ConditionalRequestConflict"}, common.ErrorConflict},
		{"precondition", &smithy.GenericAPIError{Code: "PreconditionFailed"}, common.ErrorAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeS3()
			fake.putErr = tt.putErr
			err := NewS3Repository(fake, "bucket", "", models.SchemeServer).Create(ctx, link)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("other errors are wrapped", func(t *testing.T) {
		fake := newFakeS3()
		boom := errors.New("boom")
		fake.putErr = boom
		err := NewS3Repository(fake, "bucket", "", models.SchemeServer).Create(ctx, link)
		require.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, common.ErrorAlreadyExists))
	})
}

func TestS3Repository_ReplaceDetectsConcurrentWrite(t *testing.T) {
	fake := newFakeS3()
	ctx := context.Background()
	repo := NewS3Repository(fake, "bucket", "", models.SchemeServer)

	require.NoError(t, repo.Create(ctx, &models.Link{LookupHash: "abc"}))

	fake.putErr = &smithy.GenericAPIError{Code: "PreconditionFailed"}
	err := repo.Replace(ctx, &models.Link{LookupHash: "abc"})
	require.ErrorIs(t, err, common.ErrorConflict)
}
