package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/johnquangdev/call-assistant/internal/domain/entities"
	"github.com/johnquangdev/call-assistant/pkg/config"
)

// User metadata keys stored alongside each export
const (
	metaTranscriptionSid = "Transcription-Sid"
	metaFormat           = "Export-Format"
)

// ExportArchive keeps rendered transcription exports in an S3-compatible bucket.
// Objects stay private; callers hand out presigned links.
type ExportArchive struct {
	client *minio.Client
	bucket string
}

// NewExportArchive connects to the object store and makes sure the bucket exists
func NewExportArchive(ctx context.Context, cfg *config.StorageConfig) (*ExportArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	a := &ExportArchive{client: client, bucket: cfg.BucketName}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}
	return a, nil
}

func (a *ExportArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Put stores one rendered export under exp.Key
func (a *ExportArchive) Put(ctx context.Context, exp entities.ArchivedExport, body []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, exp.Key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: exp.ContentType,
		UserMetadata: map[string]string{
			metaTranscriptionSid: exp.TranscriptionSid,
			metaFormat:           exp.Format,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload export %s: %w", exp.Key, err)
	}
	return nil
}

// Link returns a time-limited download URL for key
func (a *ExportArchive) Link(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

// List returns the exports stored under prefix
func (a *ExportArchive) List(ctx context.Context, prefix string) ([]entities.ArchivedExport, error) {
	exports := []entities.ArchivedExport{}

	objects := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:       prefix,
		Recursive:    true,
		WithMetadata: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("error listing exports: %w", obj.Err)
		}
		exports = append(exports, entities.ArchivedExport{
			Key:              obj.Key,
			TranscriptionSid: userMeta(obj.UserMetadata, metaTranscriptionSid),
			Format:           userMeta(obj.UserMetadata, metaFormat),
			ContentType:      obj.ContentType,
			Size:             obj.Size,
			ArchivedAt:       obj.LastModified,
		})
	}
	return exports, nil
}

// userMeta reads a user metadata value; listings may return it with the X-Amz-Meta- prefix
func userMeta(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok {
		return v
	}
	return meta["X-Amz-Meta-"+key]
}
