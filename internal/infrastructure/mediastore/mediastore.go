// Package mediastore 归档上传的课程视频，并为 worker 取回本地副本。
package mediastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/gcs"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/go-kratos/kratos/v2/log"
)

// ErrNotFound 表示存储中没有该视频。
var ErrNotFound = errors.New("media object not found")

// ErrSigningUnsupported 表示当前后端无法签发下载链接（本地目录）。
var ErrSigningUnsupported = errors.New("signed media urls are not supported by this backend")

// Store 抽象视频归档后端。
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (*po.MediaObject, error)
	Fetch(ctx context.Context, key, dst string) error
	SignedURL(ctx context.Context, key string) (string, time.Time, error)
}

// ObjectKey 生成 (user, lecture) 对应的存储 key。容器格式由 ffprobe 按内容识别，统一使用 .mp4 后缀，
// 这样无需额外记录即可由 (user, lecture) 反推 key。
func ObjectKey(userID, lectureID string) string {
	return sanitize(userID) + "/" + sanitize(lectureID) + ".mp4"
}

func sanitize(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, "..", "_")
	v = strings.ReplaceAll(v, "/", "_")
	v = strings.ReplaceAll(v, "\\", "_")
	if v == "" {
		return "_"
	}
	return v
}

// LocalStore 把视频写入本地目录。
type LocalStore struct {
	root string
	log  *log.Helper
}

// NewLocalStore 构造 LocalStore。
func NewLocalStore(root string, logger log.Logger) *LocalStore {
	return &LocalStore{root: root, log: log.NewHelper(logger)}
}

// Put 写入 root/key。
func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (*po.MediaObject, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, fmt.Errorf("prepare media dir: %w", err)
	}
	f, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("create media file: %w", err)
	}
	size, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		s.log.WithContext(ctx).Errorf("write media failed: path=%s err=%v", target, err)
		return nil, fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close media file: %w", err)
	}
	abs, _ := filepath.Abs(target)
	return &po.MediaObject{
		Key:         key,
		URI:         "file://" + filepath.ToSlash(abs),
		ContentType: contentType,
		SizeBytes:   size,
	}, nil
}

// Fetch 复制到 dst；dst 与源文件相同则直接返回。
func (s *LocalStore) Fetch(_ context.Context, key, dst string) error {
	src := filepath.Join(s.root, filepath.FromSlash(key))
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("open media file: %w", err)
	}
	defer in.Close()

	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("prepare fetch dir: %w", err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create fetch target: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy media file: %w", err)
	}
	return out.Close()
}

// SignedURL 本地后端不支持。
func (s *LocalStore) SignedURL(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, ErrSigningUnsupported
}

type gcsStore struct {
	*gcs.Store
}

func (s gcsStore) Fetch(ctx context.Context, key, dst string) error {
	if err := s.Store.Fetch(ctx, key, dst); err != nil {
		if errors.Is(err, gcs.ErrObjectNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ProvideStore 按 storage.driver 选择后端。
func ProvideStore(cfg configloader.StorageConfig, remote *gcs.Store, logger log.Logger) (Store, error) {
	switch cfg.Driver {
	case "gcs":
		if remote == nil {
			return nil, errors.New("mediastore: gcs driver selected but no bucket client is configured")
		}
		return gcsStore{Store: remote}, nil
	default:
		return NewLocalStore(cfg.LocalDir, logger), nil
	}
}
