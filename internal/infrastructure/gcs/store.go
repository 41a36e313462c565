package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/go-kratos/kratos/v2/log"
)

// ErrObjectNotFound 表示对象在 bucket 中不存在。
var ErrObjectNotFound = errors.New("gcs: object not found")

// Store 以 bucket/prefix 为根读写课程视频。
type Store struct {
	client *storage.Client
	bucket string
	prefix string
	ttl    time.Duration
	signer *URLSigner
	log    *log.Helper
}

// NewStore 构造 Store；signer 为空时不提供签名链接。
func NewStore(client *storage.Client, bucket, prefix string, ttl time.Duration, signer *URLSigner, logger log.Logger) (*Store, error) {
	if client == nil {
		return nil, errors.New("gcs store: client is required")
	}
	if bucket == "" {
		return nil, errors.New("gcs store: bucket is required")
	}
	return &Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		ttl:    ttl,
		signer: signer,
		log:    log.NewHelper(logger),
	}, nil
}

// ObjectName 拼接 prefix 与存储 key。
func ObjectName(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// Put 上传视频并返回 gs:// 引用。
func (s *Store) Put(ctx context.Context, key string, r io.Reader, contentType string) (*po.MediaObject, error) {
	name := ObjectName(s.prefix, key)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	size, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		s.log.WithContext(ctx).Errorf("upload media failed: object=%s err=%v", name, err)
		return nil, fmt.Errorf("gcs put %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		s.log.WithContext(ctx).Errorf("finalize media upload failed: object=%s err=%v", name, err)
		return nil, fmt.Errorf("gcs put %s: %w", name, err)
	}
	return &po.MediaObject{
		Key:         key,
		URI:         fmt.Sprintf("gs://%s/%s", s.bucket, name),
		ContentType: contentType,
		SizeBytes:   size,
	}, nil
}

// Fetch 把对象下载到本地路径，供 ffmpeg 读取。
func (s *Store) Fetch(ctx context.Context, key, dst string) error {
	name := ObjectName(s.prefix, key)
	r, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("gcs open %s: %w", name, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("prepare fetch dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create fetch target: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("gcs read %s: %w", name, err)
	}
	return f.Close()
}

// SignedURL 返回对象的限时下载链接。
func (s *Store) SignedURL(ctx context.Context, key string) (string, time.Time, error) {
	if s.signer == nil {
		return "", time.Time{}, errors.New("gcs store: signer not configured")
	}
	return s.signer.SignedGetURL(ctx, s.bucket, ObjectName(s.prefix, key), s.ttl)
}
