// Package storage turns media references returned by the backend into absolute
// URLs a screen can load.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// ErrUnresolvable is returned for references no resolver can serve
var ErrUnresolvable = errors.New("media reference cannot be resolved")

// Resolver resolves a raw media reference to an absolute URL
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// DirectResolver resolves relative references against a base URL and passes
// absolute http(s) URLs through unchanged.
type DirectResolver struct {
	base *url.URL
}

// NewDirectResolver creates a resolver rooted at baseURL
func NewDirectResolver(baseURL string) (*DirectResolver, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	return &DirectResolver{base: base}, nil
}

func (r *DirectResolver) Resolve(_ context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrUnresolvable
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	switch u.Scheme {
	case "http", "https":
		return u.String(), nil
	case "":
		if u.Host != "" {
			// protocol-relative reference
			u.Scheme = r.base.Scheme
			return u.String(), nil
		}
		return r.base.ResolveReference(&url.URL{Path: strings.TrimPrefix(u.Path, "/"), RawQuery: u.RawQuery}).String(), nil
	default:
		return "", fmt.Errorf("%w: scheme %q", ErrUnresolvable, u.Scheme)
	}
}

// presigner is the part of *minio.Client the resolver needs
type presigner interface {
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

// PresignResolver presigns s3://bucket/key references and delegates everything
// else to a DirectResolver.
type PresignResolver struct {
	direct *DirectResolver
	client presigner
	ttl    time.Duration
}

var _ presigner = (*minio.Client)(nil)

// NewPresignResolver creates a resolver backed by an S3 compatible store
func NewPresignResolver(direct *DirectResolver, client presigner, ttl time.Duration) *PresignResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &PresignResolver{direct: direct, client: client, ttl: ttl}
}

func (r *PresignResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if !strings.HasPrefix(ref, "s3://") {
		return r.direct.Resolve(ctx, ref)
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(ref, "s3://"), "/")
	if !ok || bucket == "" || key == "" {
		return "", fmt.Errorf("%w: malformed object reference %q", ErrUnresolvable, ref)
	}

	u, err := r.client.PresignedGetObject(ctx, bucket, key, r.ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, key, err)
	}
	return u.String(), nil
}
