package gcs

import (
	"context"
	"fmt"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"cloud.google.com/go/storage"
	"github.com/go-kratos/kratos/v2/log"
	"google.golang.org/api/option"
)

// ProvideClient 在配置了 bucket 时创建 storage.Client，否则返回 nil。
func ProvideClient(ctx context.Context, cfg configloader.StorageConfig) (*storage.Client, func(), error) {
	if cfg.Driver != "gcs" {
		return nil, func() {}, nil
	}
	var opts []option.ClientOption
	if cfg.GCS.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCS.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create gcs client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideStore 供 Wire 注入使用；非 gcs 驱动返回 nil。
func ProvideStore(ctx context.Context, client *storage.Client, cfg configloader.StorageConfig, logger log.Logger) (*Store, error) {
	if client == nil {
		return nil, nil
	}
	helper := log.NewHelper(logger)
	signer, err := NewURLSigner(ctx, cfg.GCS.SignerServiceAccount, logger, WithCredentialsFile(cfg.GCS.CredentialsFile))
	if err != nil {
		// 没有私钥时仍可归档，只是不能签名下载链接。
		helper.WithContext(ctx).Warnf("gcs signer disabled: %v", err)
		signer = nil
	}
	return NewStore(client, cfg.GCS.Bucket, cfg.GCS.Prefix, cfg.GCS.SignedURLTTL, signer, logger)
}
