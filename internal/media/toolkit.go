package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
)

// Chunk 是一段固定时长的音频切片。
type Chunk struct {
	Index  int
	Path   string
	Offset float64 // 该切片在整段音频中的起点（秒）
}

// Toolkit 封装 ffmpeg/ffprobe 调用。
type Toolkit struct {
	ffmpeg  string
	ffprobe string
	runner  Runner
	log     *log.Helper
}

// Option 定义可选配置。
type Option func(*Toolkit)

// WithRunner 替换命令执行器，便于测试。
func WithRunner(r Runner) Option {
	return func(t *Toolkit) {
		if r != nil {
			t.runner = r
		}
	}
}

// NewToolkit 构造 Toolkit。
func NewToolkit(cfg configloader.MediaConfig, logger log.Logger, opts ...Option) *Toolkit {
	t := &Toolkit{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		runner:  ExecRunner{},
		log:     log.NewHelper(logger),
	}
	if t.ffmpeg == "" {
		t.ffmpeg = "ffmpeg"
	}
	if t.ffprobe == "" {
		t.ffprobe = "ffprobe"
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ExtractAudioArgs 返回抽取单声道 16kHz mp3 的参数。
func ExtractAudioArgs(videoPath, audioPath string) []string {
	return []string{"-y", "-i", videoPath, "-vn", "-ac", "1", "-ar", "16000", "-b:a", "64k", audioPath}
}

// ExtractAudio 先探测音轨，没有音轨时返回 ErrNoAudioStream。
func (t *Toolkit) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	info, err := t.Probe(ctx, videoPath)
	if err != nil {
		return err
	}
	if !info.HasAudio {
		return ErrNoAudioStream
	}
	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		return fmt.Errorf("prepare audio dir: %w", err)
	}

	start := time.Now()
	if _, err := t.runner.Run(ctx, t.ffmpeg, ExtractAudioArgs(videoPath, audioPath)...); err != nil {
		return fmt.Errorf("%w: extract audio: %v", ErrUnreadable, err)
	}
	t.log.WithContext(ctx).Debugf("audio extracted: video=%s audio=%s elapsed=%s", videoPath, audioPath, time.Since(start))
	return nil
}

// ChunkCount 返回时长 duration 按 length 切分的块数，最后一块可以更短。
func ChunkCount(duration, length float64) int {
	if duration <= 0 || length <= 0 {
		return 0
	}
	return int(math.Ceil(duration / length))
}

// ChunkPath 返回第 i 块的文件名。
func ChunkPath(dir string, index int) string {
	return filepath.Join(dir, "chunk_"+strconv.Itoa(index)+".mp3")
}

// SplitArgs 返回截取 [offset, offset+length) 的参数。
func SplitArgs(audioPath, chunkPath string, offset, length float64) []string {
	return []string{
		"-y",
		"-ss", formatSeconds(offset),
		"-t", formatSeconds(length),
		"-i", audioPath,
		"-acodec", "copy",
		chunkPath,
	}
}

// Split 把音频切成 length 时长的块；块 i 覆盖 [i*L, (i+1)*L)。
func (t *Toolkit) Split(ctx context.Context, audioPath, outDir string, length time.Duration) ([]Chunk, error) {
	if length <= 0 {
		return nil, errors.New("media: chunk length must be positive")
	}
	info, err := t.Probe(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if !info.HasAudio {
		return nil, ErrNoAudioStream
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("prepare chunk dir: %w", err)
	}

	l := length.Seconds()
	n := ChunkCount(info.Duration, l)
	if n == 0 {
		return nil, fmt.Errorf("%w: audio duration is zero", ErrNoAudioStream)
	}
	chunks := make([]Chunk, 0, n)
	for i := 0; i < n; i++ {
		c := Chunk{Index: i, Path: ChunkPath(outDir, i), Offset: float64(i) * l}
		if _, err := t.runner.Run(ctx, t.ffmpeg, SplitArgs(audioPath, c.Path, c.Offset, l)...); err != nil {
			return nil, fmt.Errorf("%w: split chunk %d: %v", ErrUnreadable, i, err)
		}
		chunks = append(chunks, c)
	}
	t.log.WithContext(ctx).Infof("audio split: chunks=%d duration=%.1fs chunk_length=%s", n, info.Duration, length)
	return chunks, nil
}

// FrameArgs 返回把某一时刻的单帧以 JPEG 写到 stdout 的参数。
func FrameArgs(videoPath string, at float64) []string {
	return []string{
		"-v", "error",
		"-ss", formatSeconds(at),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"pipe:1",
	}
}

// FrameAt 返回第 index 帧的 JPEG 数据，帧时间为 index/fps。
func (t *Toolkit) FrameAt(ctx context.Context, videoPath string, index int, fps float64) ([]byte, error) {
	if fps <= 0 {
		return nil, ErrNoVideoStream
	}
	raw, err := t.runner.Run(ctx, t.ffmpeg, FrameArgs(videoPath, float64(index)/fps)...)
	if err != nil {
		return nil, fmt.Errorf("%w: frame %d: %v", ErrUnreadable, index, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: frame %d is empty", ErrUnreadable, index)
	}
	return raw, nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
