// Package openaiclient 构造语音转写与对话补全共用的 OpenAI 客户端。
package openaiclient

import (
	"errors"
	"net/http"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	openai "github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey 表示未配置 OPENAI_API_KEY。
var ErrMissingAPIKey = errors.New("openai: api key is required")

// NewClient 按配置创建客户端；BaseURL 可指向兼容网关。
func NewClient(cfg configloader.OpenAIConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}
	conf.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return openai.NewClientWithConfig(conf), nil
}

// ProvideClient 供 Wire 注入使用。
func ProvideClient(cfg configloader.OpenAIConfig) (*openai.Client, error) {
	return NewClient(cfg)
}
