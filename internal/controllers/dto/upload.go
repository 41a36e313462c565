// Package dto 定义 HTTP 请求体与服务层输入之间的转换。
package dto

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/metadata"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"
)

// 上传表单字段名。
const (
	FieldVideo    = "video"
	FieldLanguage = "language"
)

// ToUploadInput 将 multipart 文件与表单字段转换为服务层输入。
func ToUploadInput(lectureID string, header *multipart.FileHeader, body io.Reader, language string, meta metadata.HandlerMetadata) services.UploadInput {
	input := services.UploadInput{
		LectureID: strings.TrimSpace(lectureID),
		UserID:    strings.TrimSpace(meta.UserID),
		Language:  strings.TrimSpace(language),
		Body:      body,
	}
	if header != nil {
		input.Filename = strings.TrimSpace(header.Filename)
		input.ContentType = strings.TrimSpace(header.Header.Get("Content-Type"))
	}
	return input
}
