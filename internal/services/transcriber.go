package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

// Transcriber 并发转写音频分片，并把各分片的相对时间戳平移为课程全局时间戳。
type Transcriber struct {
	stt     SpeechToText
	workers int
	log     *log.Helper
}

// NewTranscriber 构造分片转写器。workers 为并发上限。
func NewTranscriber(stt SpeechToText, workers int, logger log.Logger) (*Transcriber, error) {
	switch {
	case stt == nil:
		return nil, errors.New("transcriber: speech-to-text client is required")
	case workers <= 0:
		return nil, errors.New("transcriber: workers must be positive")
	}
	return &Transcriber{stt: stt, workers: workers, log: log.NewHelper(logger)}, nil
}

// Transcribe 返回按分片顺序合并后的片段。任一分片失败则整体失败，不返回部分结果。
func (t *Transcriber) Transcribe(ctx context.Context, chunks []media.Chunk) ([]po.Segment, error) {
	if len(chunks) == 0 {
		return []po.Segment{}, nil
	}

	results := make([][]po.Segment, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			segments, err := t.stt.Transcribe(gctx, chunk.Path)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.Index, err)
			}
			results[i] = shiftSegments(segments, chunk.Offset)
			t.log.WithContext(gctx).Debugf("chunk transcribed: index=%d segments=%d", chunk.Index, len(segments))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	total := 0
	for _, segs := range results {
		total += len(segs)
	}
	merged := make([]po.Segment, 0, total)
	for _, segs := range results {
		merged = append(merged, segs...)
	}
	return merged, nil
}

// shiftSegments 平移时间戳。分片内按起点稳定排序，并保证 start <= end。
func shiftSegments(segments []po.Segment, offset float64) []po.Segment {
	out := make([]po.Segment, 0, len(segments))
	for _, seg := range segments {
		start := seg.Start + offset
		end := seg.End + offset
		if end < start {
			end = start
		}
		out = append(out, po.Segment{Text: seg.Text, Start: start, End: end})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
