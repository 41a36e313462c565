// Package media 基于 ffmpeg/ffprobe 完成音轨抽取、按时长切片、视频探测与单帧截取。
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrUnreadable 表示文件无法打开或无法被解码。
	ErrUnreadable = errors.New("media: file cannot be opened or decoded")
	// ErrNoAudioStream 表示视频中没有可解码的音轨。
	ErrNoAudioStream = errors.New("media: no decodable audio stream")
	// ErrNoVideoStream 表示文件中没有视频流，无法截帧。
	ErrNoVideoStream = errors.New("media: no video stream")
)

// Runner 执行外部命令并返回 stdout。
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner 基于 os/exec 的默认实现。
type ExecRunner struct{}

// Run 执行命令；失败时把 stderr 末尾附加到错误信息中。
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, tail(stderr.String(), 512))
	}
	return stdout.Bytes(), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
