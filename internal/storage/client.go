package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/postbase/postbase/internal/config"
)

const attachmentsBucket = "postbase-attachments"

// ErrDisabled is returned when storage is not configured.
var ErrDisabled = fmt.Errorf("storage service not configured")

// Client wraps MinIO and provides post-scoped attachment storage: one shared
// bucket, objects keyed by post ID prefix.
type Client struct {
	mc      *minio.Client
	enabled bool
}

// NewClient creates a storage client. If config has empty Endpoint, the client
// is disabled (all ops return ErrDisabled).
func NewClient(cfg config.StorageConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return &Client{enabled: false}, nil
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Client{mc: mc, enabled: true}, nil
}

// Enabled reports whether the storage client is configured.
func (c *Client) Enabled() bool {
	return c.enabled
}

func objectKey(postID, key string) string {
	return postID + "/" + strings.TrimPrefix(key, "/")
}

// ensureBucket creates the attachments bucket if it does not exist (idempotent).
func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, attachmentsBucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return c.mc.MakeBucket(ctx, attachmentsBucket, minio.MakeBucketOptions{})
}

// PutObject uploads an attachment for a post.
func (c *Client) PutObject(ctx context.Context, postID, key string, reader io.Reader, size int64, contentType string) error {
	if !c.enabled {
		return ErrDisabled
	}
	if err := c.ensureBucket(ctx); err != nil {
		return err
	}
	_, err := c.mc.PutObject(ctx, attachmentsBucket, objectKey(postID, key), reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// GetObjectResult holds the reader and metadata for a downloaded attachment.
type GetObjectResult struct {
	Reader       io.ReadCloser
	ContentType  string
	Size         int64
	LastModified time.Time
}

// GetObject downloads an attachment for a post.
func (c *Client) GetObject(ctx context.Context, postID, key string) (*GetObjectResult, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	obj, err := c.mc.GetObject(ctx, attachmentsBucket, objectKey(postID, key), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, err
	}
	return &GetObjectResult{
		Reader:       obj,
		ContentType:  info.ContentType,
		Size:         info.Size,
		LastModified: info.LastModified,
	}, nil
}

// DeleteObject removes an attachment.
func (c *Client) DeleteObject(ctx context.Context, postID, key string) error {
	if !c.enabled {
		return ErrDisabled
	}
	return c.mc.RemoveObject(ctx, attachmentsBucket, objectKey(postID, key), minio.RemoveObjectOptions{})
}

// ObjectInfo is a minimal attachment listing entry.
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// ListObjects lists a post's attachments.
func (c *Client) ListObjects(ctx context.Context, postID string) ([]ObjectInfo, error) {
	if !c.enabled {
		return nil, ErrDisabled
	}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}
	prefix := postID + "/"
	ch := c.mc.ListObjects(ctx, attachmentsBucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	var out []ObjectInfo
	for obj := range ch {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{
			Key:          strings.TrimPrefix(obj.Key, prefix),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}
