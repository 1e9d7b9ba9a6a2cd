// Package minio stores key-value entries as objects in a MinIO (S3) bucket.
//
// Versions live in object user metadata. CompareAndSwap is stat-compare-put and
// is therefore only best effort: two writers racing between stat and put can
// both succeed.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/minio/minio-go/v7"

	"github.com/mmynk/slidemaker/internal/storage"
)

const versionMeta = "Version"

// minioAPI is the subset of *minio.Client the store needs, so tests can fake it.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

type minioClientWrapper struct{ c *minio.Client }

func (w minioClientWrapper) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return w.c.BucketExists(ctx, bucketName)
}
func (w minioClientWrapper) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucketName, opts)
}
func (w minioClientWrapper) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucketName, objectName, reader, objectSize, opts)
}
func (w minioClientWrapper) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := w.c.GetObject(ctx, bucketName, objectName, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
func (w minioClientWrapper) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucketName, objectName, opts)
}
func (w minioClientWrapper) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	return w.c.StatObject(ctx, bucketName, objectName, opts)
}

var _ storage.KeyValue = (*Client)(nil)

// Client implements storage.KeyValue on one bucket.
type Client struct {
	api    minioAPI
	bucket string
}

// NewClient creates a store using a real *minio.Client instance.
func NewClient(ctx context.Context, client *minio.Client, bucket string) (*Client, error) {
	return NewClientWithAPI(ctx, minioClientWrapper{c: client}, bucket)
}

// NewClientWithAPI allows injecting a fake API in tests.
func NewClientWithAPI(ctx context.Context, api minioAPI, bucket string) (*Client, error) {
	c := &Client{api: api, bucket: bucket}

	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return c, nil
}

// Close is a no-op; the minio client holds no long-lived connections of its own.
func (c *Client) Close() error { return nil }

func (c *Client) Get(ctx context.Context, key string) (storage.Entry, error) {
	version, err := c.version(ctx, key)
	if err != nil {
		return storage.Entry{}, err
	}
	if version == 0 {
		return storage.Entry{}, storage.ErrKeyNotFound
	}

	obj, err := c.api.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return storage.Entry{Value: string(data), Version: version}, nil
}

func (c *Client) Set(ctx context.Context, key, value string) error {
	version, err := c.version(ctx, key)
	if err != nil {
		return err
	}
	return c.put(ctx, key, value, version+1)
}

func (c *Client) CompareAndSwap(ctx context.Context, key, value string, version int64) error {
	current, err := c.version(ctx, key)
	if err != nil {
		return err
	}
	if current != version {
		return storage.ErrVersionConflict
	}
	return c.put(ctx, key, value, version+1)
}

func (c *Client) Remove(ctx context.Context, key string) error {
	err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (c *Client) put(ctx context.Context, key, value string, version int64) error {
	data := []byte(value)
	_, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{versionMeta: strconv.FormatInt(version, 10)},
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// version returns the stored version of key, 0 when the object does not exist.
func (c *Client) version(ctx context.Context, key string) (int64, error) {
	info, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}

	raw := info.UserMetadata[versionMeta]
	if raw == "" {
		raw = info.Metadata.Get("X-Amz-Meta-" + versionMeta)
	}
	if raw == "" {
		// Objects written by other tools count as the first version.
		return 1, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version metadata on %s: %w", key, err)
	}
	return v, nil
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
