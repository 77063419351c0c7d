// Package storage stores product images in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cmlibra71/keenan-group-channels/internal/application/catalog"
	infraconfig "github.com/cmlibra71/keenan-group-channels/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ catalog.ObjectStore = (*S3ObjectStore)(nil)

var errEmptyKey = errors.New("storage key is required")

// S3ObjectStore writes objects with the AWS SDK v2. It works against AWS S3
// and compatible services such as MinIO.
type S3ObjectStore struct {
	client        *s3.Client
	bucket        string
	endpoint      string
	region        string
	usePathStyle  bool
	publicBaseURL string
	logger        *zap.Logger
}

// S3Option configures an S3ObjectStore.
type S3Option func(*S3ObjectStore)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ObjectStore) {
		s.logger = logger
	}
}

// NewS3ObjectStore creates a store from cfg. Credentials are static; the
// endpoint may be empty for AWS itself.
func NewS3ObjectStore(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3ObjectStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ObjectStore{
		client:        client,
		bucket:        cfg.Bucket,
		endpoint:      endpoint,
		region:        region,
		usePathStyle:  cfg.UsePathStyle,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureBucket creates the bucket if it does not exist.
func (s *S3ObjectStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload writes data under key.
func (s *S3ObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	s.logger.Debug("Uploaded object", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// DeleteObject removes key. Deleting a missing key succeeds.
func (s *S3ObjectStore) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PublicURL is the address browsers load key from. PublicBaseURL, usually a
// CDN, wins over the storage endpoint.
func (s *S3ObjectStore) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case s.publicBaseURL != "":
		return s.publicBaseURL + "/" + key
	case s.endpoint != "" && s.usePathStyle:
		return s.endpoint + "/" + s.bucket + "/" + key
	case s.endpoint != "":
		u, _ := url.Parse(s.endpoint)
		return u.Scheme + "://" + s.bucket + "." + u.Host + "/" + key
	default:
		return "https://" + s.bucket + ".s3." + s.region + ".amazonaws.com/" + key
	}
}

// Bucket returns the bucket name
func (s *S3ObjectStore) Bucket() string {
	return s.bucket
}
