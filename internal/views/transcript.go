// Package views 负责把服务层结果渲染为 HTTP 响应体：分窗输出的纯文本与 PDF 文档。
package views

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// DefaultStreamWindow 为未配置时的分窗大小（字节）。
const DefaultStreamWindow = 1024

// StreamText 将 text 按 window 字节分窗写入 w，每窗之后尝试 Flush。
// 分窗边界不会切开 UTF-8 字符。
func StreamText(w io.Writer, text string, window int) error {
	if window <= 0 {
		window = DefaultStreamWindow
	}
	flusher, _ := w.(http.Flusher)
	for len(text) > 0 {
		end := window
		if end >= len(text) {
			end = len(text)
		} else {
			for end > 0 && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == 0 {
				// 单个字符超过窗口大小
				_, size := utf8.DecodeRuneInString(text)
				end = size
			}
		}
		if _, err := io.WriteString(w, text[:end]); err != nil {
			return fmt.Errorf("views: write transcript window: %w", err)
		}
		if flusher != nil {
			flusher.Flush()
		}
		text = text[end:]
	}
	return nil
}

// TranscriptFilename 返回 PDF 附件名。
func TranscriptFilename(lectureID, language string) string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if lang == "" {
		lang = "english"
	}
	return fmt.Sprintf("transcript_%s_%s.pdf", lectureID, lang)
}
