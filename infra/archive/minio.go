// Package archive ships journal records to S3 compatible object storage,
// partitioned by day for offline analytics.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kilianp07/pillbox/core/journal"
)

// Config defines the object storage endpoint.
type Config struct {
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UseSSL          bool   `json:"use_ssl"`
	Bucket          string `json:"bucket"`
	// Prefix is the top level partition, dispense_completed by default.
	Prefix string `json:"prefix"`
}

// DefaultPrefix is the partition root of dispense records.
const DefaultPrefix = "dispense_completed"

// Validate checks required settings.
func (c Config) Validate() error {
	if c.Endpoint == "" || c.Bucket == "" {
		return errors.New("archive: endpoint and bucket are required")
	}
	return nil
}

// objectPutter is the subset of *minio.Client used by the store.
type objectPutter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
}

// MinioStore writes one object per record. It implements journal.Store.
type MinioStore struct {
	client objectPutter
	bucket string
	prefix string
}

var _ journal.Store = (*MinioStore)(nil)

// NewMinioStore creates the client. The bucket is not checked until
// EnsureBucket is called.
func NewMinioStore(cfg Config) (*MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newStore(client, cfg), nil
}

func newStore(client objectPutter, cfg Config) *MinioStore {
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, prefix: prefix}
}

// EnsureBucket creates the bucket when missing.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ObjectKey returns the partitioned key of rec.
func (s *MinioStore) ObjectKey(rec journal.Record) string {
	t := rec.Time.UTC()
	return fmt.Sprintf("%s/year=%d/month=%d/day=%d/%d.json", s.prefix, t.Year(), int(t.Month()), t.Day(), rec.EventTimestamp)
}

// Append uploads rec as a JSON object.
func (s *MinioStore) Append(ctx context.Context, rec journal.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := s.ObjectKey(rec)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(b), int64(len(b)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; the client holds no persistent connection.
func (s *MinioStore) Close() error { return nil }
