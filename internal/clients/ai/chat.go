// Package ai 封装对话补全模型，为问题定位、标准答案和主题提取提供文本生成。
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	openai "github.com/sashabaranov/go-openai"
)

// ChatClient 实现 services.TextGenerator。
type ChatClient struct {
	api   *openai.Client
	model string
	log   *log.Helper
}

// NewChatClient 构造对话客户端。
func NewChatClient(api *openai.Client, cfg configloader.OpenAIConfig, logger log.Logger) (*ChatClient, error) {
	if api == nil {
		return nil, errors.New("chat client: openai client is required")
	}
	if cfg.ChatModel == "" {
		return nil, errors.New("chat client: model is required")
	}
	return &ChatClient{api: api, model: cfg.ChatModel, log: log.NewHelper(logger)}, nil
}

// Generate 以单条 user 消息发起补全并返回首个候选的文本。
func (c *ChatClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		c.log.WithContext(ctx).Warnw("msg", "chat completion failed", "model", c.model, "error", err)
		return "", Classify("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
