// Package stt 调用 whisper 转写音频分片，返回带分片内时间戳的片段。
package stt

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/clients/ai"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	openai "github.com/sashabaranov/go-openai"
)

// WhisperClient 实现 services.SpeechToText。
type WhisperClient struct {
	api   *openai.Client
	model string
	log   *log.Helper
}

// NewWhisperClient 构造转写客户端。
func NewWhisperClient(api *openai.Client, cfg configloader.OpenAIConfig, logger log.Logger) (*WhisperClient, error) {
	if api == nil {
		return nil, errors.New("whisper client: openai client is required")
	}
	model := cfg.TranscriptionModel
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperClient{api: api, model: model, log: log.NewHelper(logger)}, nil
}

// Transcribe 以 verbose_json 格式请求转写，时间戳相对于分片起点。
func (c *WhisperClient) Transcribe(ctx context.Context, audioPath string) ([]po.Segment, error) {
	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, ai.Classify("transcribe "+filepath.Base(audioPath), err)
	}

	segments := make([]po.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, po.Segment{Text: text, Start: s.Start, End: s.End})
	}
	c.log.WithContext(ctx).Debugf("transcribed %s: segments=%d duration=%.1fs", filepath.Base(audioPath), len(segments), resp.Duration)
	return segments, nil
}
