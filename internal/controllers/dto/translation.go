package dto

import "strings"

// TranslateRequest 为 POST /translate 的请求体。
type TranslateRequest struct {
	LectureID string `json:"lecture_id"`
	Language  string `json:"language"`
}

// Normalize 去除字段首尾空白。
func (r *TranslateRequest) Normalize() {
	r.LectureID = strings.TrimSpace(r.LectureID)
	r.Language = strings.TrimSpace(r.Language)
}
