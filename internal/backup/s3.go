package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Uploader stores a copy of a backup artifact off the device.
type Uploader interface {
	Upload(ctx context.Context, artifact Artifact) (string, error)
}

// NoopUploader is used when no off-site bucket is configured.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, Artifact) (string, error) { return "", nil }

// S3Config describes an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client putObjectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

type S3UploaderOption func(*S3Uploader)

func WithLogger(logger *zap.Logger) S3UploaderOption {
	return func(u *S3Uploader) {
		u.logger = logger
	}
}

// withClient swaps the S3 client, for tests.
func withClient(client putObjectAPI) S3UploaderOption {
	return func(u *S3Uploader) {
		u.client = client
	}
}

// NewS3Uploader builds an uploader. Static credentials are used when given,
// otherwise the default AWS credential chain applies. A custom endpoint
// switches to path-style addressing for MinIO and similar servers.
func NewS3Uploader(ctx context.Context, cfg S3Config, opts ...S3UploaderOption) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("backup bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := &S3Uploader{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(uploader)
	}
	return uploader, nil
}

// Upload puts the artifact under prefix/name and returns the object key.
func (u *S3Uploader) Upload(ctx context.Context, artifact Artifact) (string, error) {
	key := artifact.Name
	if u.prefix != "" {
		key = path.Join(u.prefix, artifact.Name)
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(artifact.Body),
		ContentLength: aws.Int64(int64(len(artifact.Body))),
		ContentType:   aws.String(artifact.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload backup %s: %w", key, err)
	}
	u.logger.Info("backup uploaded",
		zap.String("bucket", u.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(artifact.Body)),
	)
	return key, nil
}
