package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/poiesic/lockbox/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjects is an in-memory ObjectAPI.
type fakeObjects struct {
	objects map[string][]byte
	err     error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func TestSource_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects()
	src := New(api, "vaults", "users/me/")

	ok, err := src.Exists(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = src.Fetch(ctx, "default")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, src.Save(ctx, "default", []byte("blob")))
	assert.Contains(t, api.objects, "vaults/users/me/coll_default")

	data, err := src.Fetch(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob"), data)

	ok, err = src.Exists(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSource_TransportErrors(t *testing.T) {
	ctx := context.Background()
	api := newFakeObjects()
	api.err = errors.New("connection reset")
	src := New(api, "vaults", "")

	_, err := src.Fetch(ctx, "default")
	assert.ErrorIs(t, err, storage.ErrTransport)
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, src.Save(ctx, "default", nil), storage.ErrTransport)

	_, err = src.Exists(ctx, "default")
	assert.ErrorIs(t, err, storage.ErrTransport)
}

func TestConfig_Validate(t *testing.T) {
	cfg := NewConfig(WithBucket("b"), WithPrefix("/team"), WithEndpoint("http://minio:9000/"))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "team/", cfg.Prefix)
	assert.Equal(t, "http://minio:9000", cfg.Endpoint)
	assert.True(t, cfg.UsePathStyle)

	assert.Error(t, NewConfig().Validate())
	assert.Error(t, NewConfig(WithBucket("b"), WithRegion("")).Validate())
	assert.Error(t, NewConfig(WithBucket("b"), WithStaticCredentials("ak", "")).Validate())
}

func TestNewFromConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var region string
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		region = lo.Region
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	api := newFakeObjects()
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		for _, fn := range optFns {
			fn(&opts)
		}
		return api
	}

	src, err := NewFromConfig(context.Background(), NewConfig(
		WithBucket("vaults"),
		WithRegion("eu-west-1"),
		WithEndpoint("http://127.0.0.1:9000"),
		WithStaticCredentials("minioadmin", "minioadmin"),
	))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", region)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	require.NoError(t, src.Save(context.Background(), "x", []byte("1")))
	assert.Contains(t, api.objects, "vaults/coll_x")
}

func TestNewFromConfig_LoadError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no profile")
	}

	_, err := NewFromConfig(context.Background(), NewConfig(WithBucket("b")))
	assert.EqualError(t, err, "no profile")
}
