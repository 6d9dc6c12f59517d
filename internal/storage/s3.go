package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	appconfig "github.com/velstore/velstore-api/internal/config"
)

// ErrObjectExists is returned by Upload when overwrites are disabled and the
// target key is already stored.
var ErrObjectExists = errors.New("object already exists")

// S3Store is the product-images object store backed by S3.
type S3Store struct {
	client         *s3.Client
	uploader       *manager.Uploader
	bucket         string
	region         string
	allowOverwrite bool
}

// ObjectInfo describes one stored object, as reported by List.
type ObjectInfo struct {
	Key          string
	LastModified time.Time
}

// New creates an S3Store from config. Static credentials from the environment
// take precedence; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg *appconfig.StorageConfig) (*S3Store, error) {
	if cfg == nil {
		return nil, errors.New("nil storage config")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		client:         client,
		uploader:       manager.NewUploader(client),
		bucket:         cfg.Bucket,
		region:         cfg.Region,
		allowOverwrite: cfg.AllowOverwrite,
	}, nil
}

// Upload stores an object and returns its public URL. When overwrites are
// disabled, an existing key fails with ErrObjectExists.
func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if !s.allowOverwrite {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			return "", fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		var notFound *types.NotFound
		if !errors.As(err, &notFound) {
			return "", fmt.Errorf("failed to check object %s: %w", key, err)
		}
	}

	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("S3 upload failed")
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("uploaded object")
	return s.ObjectURL(key), nil
}

// Remove deletes the given keys in one bulk call.
func (s *S3Store) Remove(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, k := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(k)})
	}

	out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("S3 bulk delete failed")
		return fmt.Errorf("failed to remove objects: %w", err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("failed to remove %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}

// List returns every object under prefix.
func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, nil
}

// ObjectURL returns the public URL for a stored object.
func (s *S3Store) ObjectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// KeyFromURL converts a public URL of this store back to its object key, or
// "" when the URL does not belong to this bucket.
func (s *S3Store) KeyFromURL(url string) string {
	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if !strings.HasPrefix(url, base) {
		return ""
	}
	return strings.TrimPrefix(url, base)
}
