// Package receipts uploads fuel receipt photos to an S3 compatible bucket
// (MinIO in the field setup) and returns the object URL stored on the record.
package receipts

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	now = time.Now
)

type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	// PublicURL prefixes returned object URLs. Defaults to BaseEndpoint.
	PublicURL string
}

type Uploader struct {
	opts Options
}

func NewUploader(opts Options) *Uploader {
	return &Uploader{opts: opts}
}

// Enabled reports whether a bucket is configured. A disabled uploader is
// skipped by the sync engine and receipts stay local.
func (u *Uploader) Enabled() bool {
	return u != nil && u.opts.Bucket != ""
}

// StorageKey builds receipts/YYYY/M/D/<uuid><ext> for a local file path.
func StorageKey(t time.Time, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("receipts/%d/%d/%d/%v%s", t.Year(), t.Month(), t.Day(), uuid.New(), ext)
}

// Upload puts the file at localPath into the bucket and returns its URL.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("receipt upload is not configured")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open receipt: %w", err)
	}
	defer f.Close()

	client, err := u.client(ctx)
	if err != nil {
		return "", err
	}

	key := StorageKey(now(), localPath)
	in := &s3.PutObjectInput{
		Bucket: aws.String(u.opts.Bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		in.ContentType = aws.String(ct)
	}

	if _, err := putObject(client, ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload receipt: %w", err)
	}
	return u.objectURL(key), nil
}

func (u *Uploader) client(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(u.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.opts.AccessKey,
			u.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if u.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(u.opts.BaseEndpoint)
		}
		o.UsePathStyle = true
	}), nil
}

func (u *Uploader) objectURL(key string) string {
	base := u.opts.PublicURL
	if base == "" {
		base = u.opts.BaseEndpoint
	}
	return strings.TrimRight(base, "/") + "/" + u.opts.Bucket + "/" + key
}
