package media

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures where uploaded images are written.
type S3Options struct {
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// s3Uploader implements Uploader by writing objects to AWS S3.
type s3Uploader struct {
	client PutObjectAPI
	opts   S3Options
	logger zerolog.Logger
}

// NewS3Uploader creates an S3-backed uploader using the default AWS credential chain.
func NewS3Uploader(ctx context.Context, opts S3Options, logger zerolog.Logger) (Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewS3UploaderWithClient(s3.NewFromConfig(cfg), opts, logger), nil
}

// NewS3UploaderWithClient creates an S3 uploader around an existing client.
func NewS3UploaderWithClient(client PutObjectAPI, opts S3Options, logger zerolog.Logger) Uploader {
	logger = logger.With().Str("component", "s3-uploader").Logger()
	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Msg("S3 uploader initialised")

	return &s3Uploader{client: client, opts: opts, logger: logger}
}

// Upload writes img under a fresh key and returns its public URL.
func (u *s3Uploader) Upload(ctx context.Context, img Image) (string, error) {
	key := u.opts.Prefix + uuid.NewString() + img.extension()

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.opts.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(img.Data),
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(int64(len(img.Data))),
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			Str("bucket", u.opts.Bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", u.opts.Bucket, key, err)
	}

	u.logger.Info().
		Str("key", key).
		Int("bytes", len(img.Data)).
		Msg("image uploaded to S3")

	return u.objectURL(key), nil
}

func (u *s3Uploader) objectURL(key string) string {
	if u.opts.PublicBaseURL != "" {
		return strings.TrimSuffix(u.opts.PublicBaseURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.opts.Bucket, u.opts.Region, key)
}

// fallbackUploader tries S3 first, then falls back to inline data URIs.
type fallbackUploader struct {
	s3        Uploader
	local     Uploader
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackUploader creates an uploader that tries S3 first and falls back to local.
// If s3 is nil, only local is used.
func NewFallbackUploader(s3 Uploader, local Uploader, s3Enabled bool, logger zerolog.Logger) Uploader {
	return &fallbackUploader{
		s3:        s3,
		local:     local,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-uploader").Logger(),
	}
}

func (u *fallbackUploader) Upload(ctx context.Context, img Image) (string, error) {
	if u.s3Enabled && u.s3 != nil {
		url, err := u.s3.Upload(ctx, img)
		if err == nil {
			return url, nil
		}

		u.logger.Warn().
			Err(err).
			Str("name", img.Name).
			Msg("failed to upload to S3, falling back to data URI")
	} else {
		u.logger.Debug().
			Bool("s3_enabled", u.s3Enabled).
			Bool("has_s3_uploader", u.s3 != nil).
			Msg("S3 disabled or not configured, using data URI")
	}

	return u.local.Upload(ctx, img)
}
