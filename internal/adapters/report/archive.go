package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"github.com/okian/stockwatch/internal/domain/model"
)

// Uploader stores one object; *s3.Client satisfies it.
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client loads the default AWS chain for region. A non-empty endpoint
// switches to path-style addressing for S3-compatible stores.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ArchiveReporter uploads the gzip-compressed JSON outcome.
type ArchiveReporter struct {
	uploader Uploader
	bucket   string
	prefix   string
	retries  int
	backoff  time.Duration
}

// NewArchiveReporter returns a reporter writing to bucket under prefix.
// Uploads are attempted retries+1 times with linear backoff.
func NewArchiveReporter(u Uploader, bucket, prefix string, retries int, backoff time.Duration) (*ArchiveReporter, error) {
	if bucket == "" {
		return nil, ErrEmptyBucket
	}
	if retries < 0 {
		retries = 0
	}
	return &ArchiveReporter{uploader: u, bucket: bucket, prefix: prefix, retries: retries, backoff: backoff}, nil
}

// Name implements Reporter.
func (r *ArchiveReporter) Name() string { return "archive" }

// Key returns the object key for an outcome.
func (r *ArchiveReporter) Key(o *model.RunOutcome) string {
	t := o.StartedAt.UTC()
	return path.Join(r.prefix, t.Format("2006"), t.Format("01"), t.Format("02"), o.RunID+".json.gz")
}

// Encode returns the gzip-compressed JSON form of the outcome.
func Encode(o *model.RunOutcome) ([]byte, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeArchive, err)
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeArchive, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeArchive, err)
	}
	return buf.Bytes(), nil
}

// Deliver implements Reporter.
func (r *ArchiveReporter) Deliver(ctx context.Context, o *model.RunOutcome) error {
	body, err := Encode(o)
	if err != nil {
		return err
	}
	key := r.Key(o)

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrUploadArchive, ctx.Err())
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
		_, lastErr = r.uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket:          aws.String(r.bucket),
			Key:             aws.String(key),
			Body:            bytes.NewReader(body),
			ContentType:     aws.String("application/json"),
			ContentEncoding: aws.String("gzip"),
		})
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %w", ErrUploadArchive, lastErr)
}
