package storage

import (
	"context"
	"testing"

	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func validConfig() *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:         true,
		Bucket:          "images",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}
}

func TestNewS3ObjectStore_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"missing access key", func(c *config.StorageConfig) { c.AccessKeyID = "" }, "access key is required"},
		{"missing secret", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			_, err := NewS3ObjectStore(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := NewS3ObjectStore(nil)
	assert.ErrorContains(t, err, "configuration is required")
}

func TestNewS3ObjectStore_Defaults(t *testing.T) {
	s, err := NewS3ObjectStore(validConfig(), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "images", s.Bucket())
	assert.Equal(t, "us-east-1", s.region)
	assert.Empty(t, s.endpoint)
}

func TestS3ObjectStore_PublicURL(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.StorageConfig)
		want   string
	}{
		{
			name:   "aws virtual host",
			mutate: func(c *config.StorageConfig) { c.Region = "eu-west-1" },
			want:   "https://images.s3.eu-west-1.amazonaws.com/products/1/a.jpg",
		},
		{
			name: "path style endpoint",
			mutate: func(c *config.StorageConfig) {
				c.Endpoint = "http://localhost:9000/"
				c.UsePathStyle = true
			},
			want: "http://localhost:9000/images/products/1/a.jpg",
		},
		{
			name:   "virtual host endpoint without scheme",
			mutate: func(c *config.StorageConfig) { c.Endpoint = "storage.example.com" },
			want:   "https://images.storage.example.com/products/1/a.jpg",
		},
		{
			name: "public base url wins",
			mutate: func(c *config.StorageConfig) {
				c.Endpoint = "http://localhost:9000"
				c.PublicBaseURL = "https://cdn.example.com/"
			},
			want: "https://cdn.example.com/products/1/a.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			s, err := NewS3ObjectStore(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.PublicURL("/products/1/a.jpg"))
		})
	}
}

func TestS3ObjectStore_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStore(validConfig())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upload(ctx, "", []byte("x"), "image/png"), errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
}
