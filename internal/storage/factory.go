package storage

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/danielrjepsen/Nory-sub001/internal/config"
)

// ResolverType represents the backend used to turn stored media references into URLs
type ResolverType string

const (
	// ResolverTypeDirect resolves relative paths against the API base URL
	ResolverTypeDirect ResolverType = "direct"
	// ResolverTypeMinio additionally presigns s3:// references
	ResolverTypeMinio ResolverType = "minio"
)

// Factory creates media resolvers
type Factory struct {
	resolverType ResolverType
}

// NewFactory creates a new storage factory
func NewFactory(resolverType ResolverType) *Factory {
	return &Factory{
		resolverType: resolverType,
	}
}

// CreateResolver creates a resolver based on the configured type
func (f *Factory) CreateResolver(cfg *config.Config) (Resolver, error) {
	direct, err := NewDirectResolver(cfg.URLs.API)
	if err != nil {
		return nil, err
	}

	switch f.resolverType {
	case ResolverTypeDirect:
		return direct, nil
	case ResolverTypeMinio:
		client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return NewPresignResolver(direct, client, cfg.Storage.PresignTTL), nil
	default:
		return nil, fmt.Errorf("unsupported resolver type: %s", f.resolverType)
	}
}

// GetSupportedTypes returns a list of supported resolver types
func GetSupportedTypes() []ResolverType {
	return []ResolverType{
		ResolverTypeDirect,
		ResolverTypeMinio,
	}
}

// ValidateResolverType validates if a resolver type is supported
func ValidateResolverType(resolverType string) (ResolverType, error) {
	rt := ResolverType(resolverType)

	for _, supported := range GetSupportedTypes() {
		if rt == supported {
			return rt, nil
		}
	}

	return "", fmt.Errorf("unsupported resolver type: %s. Supported types: %v", resolverType, GetSupportedTypes())
}
