package storage

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielrjepsen/Nory-sub001/internal/config"
)

type fakePresigner struct {
	bucket, key string
	err         error
}

func (f *fakePresigner) PresignedGetObject(_ context.Context, bucket, key string, _ time.Duration, _ url.Values) (*url.URL, error) {
	f.bucket, f.key = bucket, key
	if f.err != nil {
		return nil, f.err
	}
	return url.Parse("https://s3.test/" + bucket + "/" + key + "?X-Amz-Signature=abc")
}

func TestDirectResolver(t *testing.T) {
	r, err := NewDirectResolver("https://api.nory.test/")
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		ref  string
		want string
	}{
		{"https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"/uploads/e1/a.jpg", "https://api.nory.test/uploads/e1/a.jpg"},
		{"uploads/e1/a.jpg?w=200", "https://api.nory.test/uploads/e1/a.jpg?w=200"},
		{"//cdn.test/b.mp4", "https://cdn.test/b.mp4"},
	}
	for _, tt := range tests {
		got, err := r.Resolve(ctx, tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got)
	}

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnresolvable)

	_, err = r.Resolve(ctx, "s3://bucket/key")
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestNewDirectResolver_RequiresAbsoluteBase(t *testing.T) {
	_, err := NewDirectResolver("api.nory.test")
	assert.Error(t, err)
}

func TestPresignResolver(t *testing.T) {
	direct, err := NewDirectResolver("https://api.nory.test")
	require.NoError(t, err)
	fp := &fakePresigner{}
	r := NewPresignResolver(direct, fp, 0)
	ctx := context.Background()

	got, err := r.Resolve(ctx, "s3://event-media/e1/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, "event-media", fp.bucket)
	assert.Equal(t, "e1/clip.mp4", fp.key)
	assert.Contains(t, got, "X-Amz-Signature")

	got, err = r.Resolve(ctx, "/uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://api.nory.test/uploads/a.jpg", got)

	_, err = r.Resolve(ctx, "s3://only-bucket")
	assert.ErrorIs(t, err, ErrUnresolvable)

	fp.err = errors.New("denied")
	_, err = r.Resolve(ctx, "s3://b/k")
	assert.Error(t, err)
}

func TestFactory(t *testing.T) {
	cfg := &config.Config{}
	cfg.URLs.API = "https://api.nory.test"

	r, err := NewFactory(ResolverTypeDirect).CreateResolver(cfg)
	require.NoError(t, err)
	assert.IsType(t, &DirectResolver{}, r)

	cfg.Storage.Endpoint = "minio.nory.test:9000"
	cfg.Storage.AccessKey = "key"
	cfg.Storage.SecretKey = "secret"
	r, err = NewFactory(ResolverTypeMinio).CreateResolver(cfg)
	require.NoError(t, err)
	assert.IsType(t, &PresignResolver{}, r)

	_, err = ValidateResolverType("ftp")
	assert.Error(t, err)
	rt, err := ValidateResolverType("minio")
	require.NoError(t, err)
	assert.Equal(t, ResolverTypeMinio, rt)
}
