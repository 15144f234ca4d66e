// Package photoarchive copies progress photos to S3-compatible object
// storage (AWS S3, MinIO). The tracker keeps the payload in its own store;
// the archive is an optional off-site copy.
package photoarchive

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/musclemap/internal/models"
)

var ErrBadPayload = errors.New("photo payload is not a valid data URL")

// Archive stores a photo and returns its object key.
type Archive interface {
	Put(ctx context.Context, p models.Photo) (string, error)
}

// Config describes the bucket. Endpoint is optional for AWS and required
// for MinIO.
type Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Enabled reports whether enough is configured to archive photos.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type S3Archive struct {
	client objectPutter
	bucket string
	prefix string
}

// NewS3 builds an archive client. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, c Config) (*S3Archive, error) {
	if c.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			// MinIO does not serve virtual-hosted buckets by default
			o.UsePathStyle = true
		}
	})
	return &S3Archive{client: client, bucket: c.Bucket, prefix: c.Prefix}, nil
}

// Put uploads the decoded photo under photos/<muscle>/<id>.<ext>.
func (a *S3Archive) Put(ctx context.Context, p models.Photo) (string, error) {
	contentType, data, err := Decode(p.Payload)
	if err != nil {
		return "", err
	}
	key := Key(a.prefix, p, contentType)

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"muscle":   p.MuscleID.String(),
			"taken-at": p.TakenAt.UTC().Format("2006-01-02T15:04:05Z"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, nil
}

// Key returns the object key of a photo.
func Key(prefix string, p models.Photo, contentType string) string {
	return path.Join(prefix, "photos", p.MuscleID.String(), p.ID+extension(contentType))
}

// Decode splits a base64 data URL into its media type and bytes.
func Decode(payload string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(payload, "data:")
	if !ok {
		return "", nil, ErrBadPayload
	}
	meta, body, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrBadPayload
	}
	contentType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, ErrBadPayload
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return contentType, data, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".bin"
}

// Nop discards photos.
type Nop struct{}

func (Nop) Put(context.Context, models.Photo) (string, error) { return "", nil }
