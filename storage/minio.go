package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"vintagefm/config"
	"vintagefm/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectInfo describes one audio object in the bucket.
type ObjectInfo struct {
	Key          string
	Name         string
	Size         int64
	LastModified time.Time
}

// BucketStats summarizes a listing.
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// PullResult reports what Pull did.
type PullResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// CatalogBucket is a MinIO bucket holding station music under a prefix.
// Only direct children of the prefix are considered, matching the flat
// music directory.
type CatalogBucket struct {
	client *minio.Client
	bucket string
	prefix string
	exts   []string
}

// NewCatalogBucket connects to the bucket described by cfg.
func NewCatalogBucket(cfg config.MinioConfig, exts []string) (*CatalogBucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	prefix := strings.TrimPrefix(cfg.Prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &CatalogBucket{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		exts:   exts,
	}, nil
}

// Bucket returns the bucket name.
func (b *CatalogBucket) Bucket() string {
	return b.bucket
}

// ListAudio lists the audio objects under the prefix.
func (b *CatalogBucket) ListAudio(ctx context.Context) ([]ObjectInfo, *BucketStats, error) {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check bucket %s: %w", b.bucket, err)
	}
	if !exists {
		return nil, nil, fmt.Errorf("bucket %s does not exist", b.bucket)
	}

	stats := &BucketStats{}
	var objects []ObjectInfo

	objectCh := b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix: b.prefix,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		name, ok := audioObjectName(object.Key, b.prefix, b.exts)
		if !ok {
			continue
		}

		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Name:         name,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}
	return objects, stats, nil
}

// Pull downloads audio objects into dir. Files already present with the
// same size are left alone. Individual download failures are logged and
// counted; only a failed listing is returned as an error.
func (b *CatalogBucket) Pull(ctx context.Context, dir string) (PullResult, error) {
	var result PullResult

	objects, _, err := b.ListAudio(ctx)
	if err != nil {
		return result, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create music directory: %w", err)
	}

	for _, obj := range objects {
		dest := filepath.Join(dir, obj.Name)
		if info, err := os.Stat(dest); err == nil && info.Size() == obj.Size {
			result.Skipped++
			continue
		}

		if err := b.client.FGetObject(ctx, b.bucket, obj.Key, dest, minio.GetObjectOptions{}); err != nil {
			result.Failed++
			logger.Warn("failed to pull track",
				logger.String("key", obj.Key),
				logger.String("dest", dest),
				logger.ErrorField(err))
			continue
		}
		result.Downloaded++
		logger.Debug("track pulled", logger.String("key", obj.Key), logger.String("size", FormatSize(obj.Size)))
	}

	logger.Info("music pulled from bucket",
		logger.String("bucket", b.bucket),
		logger.String("prefix", b.prefix),
		logger.Int("downloaded", result.Downloaded),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed))
	return result, nil
}

// audioObjectName returns the file name for key when it is a direct child
// of prefix with one of exts.
func audioObjectName(key, prefix string, exts []string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	ext := strings.ToLower(path.Ext(rest))
	for _, want := range exts {
		if ext == want {
			return rest, true
		}
	}
	return "", false
}

// FormatSize renders a byte count for humans.
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
