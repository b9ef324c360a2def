package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

// Store is the local blob store: one public-read bucket on MinIO or any S3-compatible server.
type Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
	log        zerolog.Logger
}

func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = cfg.S3UsePathStyle
	})

	return &Store{
		client:     client,
		bucket:     cfg.StorageBucket,
		publicBase: cfg.S3PublicBaseURL,
		log:        log,
	}, nil
}

// Upload writes the object on behalf of the actor in ctx. Anonymous visitors may not write.
func (s *Store) Upload(ctx context.Context, key, contentType string, data []byte) error {
	if appCtx.GetActor(ctx).UserID == "" {
		return domain.New(domain.KindForbidden, "upload_forbidden", "not allowed to upload")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// EnsureBucket creates the bucket when missing and opens it for anonymous reads.
func (s *Store) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		s.log.Info().Str("bucket", s.bucket).Msg("creating bucket")
		if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}

	policy := fmt.Sprintf(`{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"AWS": ["*"]},
			"Action": ["s3:GetObject"],
			"Resource": ["arn:aws:s3:::%s/*"]
		}]
	}`, s.bucket)

	_, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(s.bucket),
		Policy: aws.String(policy),
	})
	if err != nil {
		// bucket may already carry a policy we are not allowed to replace
		s.log.Warn().Err(err).Str("bucket", s.bucket).Msg("failed to set public bucket policy")
	}
	return nil
}
