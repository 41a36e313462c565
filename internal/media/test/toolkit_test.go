package media_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

const probeWithAudio = `{
  "format": {"duration": "1500.250000"},
  "streams": [
    {"codec_type": "video", "r_frame_rate": "30/1", "avg_frame_rate": "30000/1001", "nb_frames": "44963"},
    {"codec_type": "audio"}
  ]
}`

const probeVideoOnly = `{
  "format": {"duration": "12.0"},
  "streams": [{"codec_type": "video", "r_frame_rate": "25/1", "avg_frame_rate": "0/0"}]
}`

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  []call
	probe  string
	failOn string
	frame  []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: append([]string(nil), args...)})
	if f.failOn != "" && name == f.failOn {
		return nil, errors.New("exit status 1")
	}
	if name == "ffprobe" {
		return []byte(f.probe), nil
	}
	return f.frame, nil
}

func newToolkit(r media.Runner) *media.Toolkit {
	return media.NewToolkit(configloader.MediaConfig{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"},
		log.NewStdLogger(io.Discard), media.WithRunner(r))
}

func TestParseProbe(t *testing.T) {
	info, err := media.ParseProbe([]byte(probeWithAudio))
	require.NoError(t, err)
	require.True(t, info.HasAudio)
	require.True(t, info.HasVideo)
	require.InDelta(t, 29.97, info.FPS, 0.01)
	require.Equal(t, 44963, info.TotalFrames)
	require.InDelta(t, 1500.25, info.Duration, 1e-9)

	info, err = media.ParseProbe([]byte(probeVideoOnly))
	require.NoError(t, err)
	require.False(t, info.HasAudio)
	require.Equal(t, 25.0, info.FPS)
	require.Equal(t, 300, info.TotalFrames)

	_, err = media.ParseProbe([]byte("not json"))
	require.Error(t, err)
}

func TestChunkCount(t *testing.T) {
	require.Equal(t, 3, media.ChunkCount(1500, 600))
	require.Equal(t, 2, media.ChunkCount(1200, 600))
	require.Equal(t, 1, media.ChunkCount(10, 600))
	require.Equal(t, 0, media.ChunkCount(0, 600))
}

func TestExtractAudioRejectsVideoWithoutAudio(t *testing.T) {
	video := filepath.Join(t.TempDir(), "silent.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o600))

	runner := &fakeRunner{probe: probeVideoOnly}
	err := newToolkit(runner).ExtractAudio(context.Background(), video, filepath.Join(t.TempDir(), "a.mp3"))
	require.ErrorIs(t, err, media.ErrNoAudioStream)
	require.Len(t, runner.calls, 1, "ffmpeg must not run without an audio stream")
}

func TestExtractAudioMissingFile(t *testing.T) {
	err := newToolkit(&fakeRunner{}).ExtractAudio(context.Background(), "/does/not/exist.mp4", "/tmp/a.mp3")
	require.ErrorIs(t, err, media.ErrUnreadable)
}

func TestExtractAudioUnreadable(t *testing.T) {
	video := filepath.Join(t.TempDir(), "broken.mp4")
	require.NoError(t, os.WriteFile(video, []byte("x"), 0o600))

	err := newToolkit(&fakeRunner{failOn: "ffprobe"}).ExtractAudio(context.Background(), video, filepath.Join(t.TempDir(), "a.mp3"))
	require.ErrorIs(t, err, media.ErrUnreadable)
}

func TestSplitCoversWholeAudio(t *testing.T) {
	runner := &fakeRunner{probe: probeWithAudio}
	dir := t.TempDir()

	chunks, err := newToolkit(runner).Split(context.Background(), "audio.mp3", dir, 10*time.Minute)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		require.Equal(t, i, c.Index)
		require.Equal(t, float64(i*600), c.Offset)
		require.Equal(t, media.ChunkPath(dir, i), c.Path)
	}

	// 第一次调用为 ffprobe，其余依次为每块的 ffmpeg
	require.Len(t, runner.calls, 4)
	last := runner.calls[3]
	require.Equal(t, "ffmpeg", last.name)
	require.Equal(t, media.SplitArgs("audio.mp3", chunks[2].Path, 1200, 600), last.args)
	require.Contains(t, strings.Join(last.args, " "), "-ss 1200.000 -t 600.000")
}

func TestFrameAt(t *testing.T) {
	runner := &fakeRunner{frame: []byte{0xff, 0xd8}}
	tk := newToolkit(runner)

	raw, err := tk.FrameAt(context.Background(), "video.mp4", 60, 30)
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xd8}, raw)
	require.Equal(t, media.FrameArgs("video.mp4", 2), runner.calls[0].args)

	_, err = tk.FrameAt(context.Background(), "video.mp4", 1, 0)
	require.ErrorIs(t, err, media.ErrNoVideoStream)

	empty := newToolkit(&fakeRunner{})
	_, err = empty.FrameAt(context.Background(), "video.mp4", 1, 30)
	require.ErrorIs(t, err, media.ErrUnreadable)
}
