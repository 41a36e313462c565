package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Info 是 ffprobe 的探测结果。
type Info struct {
	Duration    float64 // 秒
	FPS         float64
	TotalFrames int
	HasAudio    bool
	HasVideo    bool
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// ProbeArgs 返回 ffprobe 参数。
func ProbeArgs(path string) []string {
	return []string{"-v", "error", "-print_format", "json", "-show_format", "-show_streams", path}
}

// ParseProbe 解析 ffprobe JSON。nb_frames 缺失时按 duration*fps 估算总帧数。
func ParseProbe(raw []byte) (*Info, error) {
	var out probeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	info := &Info{Duration: parseFloat(out.Format.Duration)}
	for _, stream := range out.Streams {
		switch stream.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if info.HasVideo {
				continue
			}
			info.HasVideo = true
			info.FPS = parseRate(stream.AvgFrameRate)
			if info.FPS <= 0 {
				info.FPS = parseRate(stream.RFrameRate)
			}
			if n, err := strconv.Atoi(stream.NbFrames); err == nil && n > 0 {
				info.TotalFrames = n
			}
			if info.Duration <= 0 {
				info.Duration = parseFloat(stream.Duration)
			}
		}
	}
	if info.HasVideo && info.TotalFrames == 0 && info.FPS > 0 {
		info.TotalFrames = int(math.Floor(info.Duration * info.FPS))
	}
	return info, nil
}

// Probe 探测文件；ffprobe 失败视为 ErrUnreadable。
func (t *Toolkit) Probe(ctx context.Context, path string) (*Info, error) {
	raw, err := t.runner.Run(ctx, t.ffprobe, ProbeArgs(path)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	info, err := ParseProbe(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return info, nil
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRate 解析 "30000/1001" 形式的帧率。
func parseRate(raw string) float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return parseFloat(raw)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d <= 0 {
		return 0
	}
	return n / d
}
