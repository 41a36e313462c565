package vo

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// JobKind 区分队列中的任务类型。
type JobKind string

const (
	// JobKindProcess 处理一次上传：抽音轨、转写、翻译、互动分析。
	JobKindProcess JobKind = "process"
	// JobKindTranslate 处理一次显式翻译请求。
	JobKindTranslate JobKind = "translate"
)

// PipelineJob 是写入任务队列的消息体。
type PipelineJob struct {
	ID         string    `json:"id"`
	Kind       JobKind   `json:"kind"`
	LectureID  string    `json:"lecture_id"`
	UserID     string    `json:"user_id"`
	MediaKey   string    `json:"media_key,omitempty"`
	Language   string    `json:"language,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Validate 校验必填字段。
func (j *PipelineJob) Validate() error {
	switch {
	case j == nil:
		return errors.New("job is nil")
	case j.ID == "":
		return errors.New("job id is required")
	case j.LectureID == "" || j.UserID == "":
		return errors.New("job lecture_id and user_id are required")
	}
	switch j.Kind {
	case JobKindProcess:
		if j.MediaKey == "" {
			return errors.New("process job requires media_key")
		}
	case JobKindTranslate:
		if j.Language == "" {
			return errors.New("translate job requires language")
		}
	default:
		return fmt.Errorf("unknown job kind %q", j.Kind)
	}
	return nil
}

// EncodeJob 序列化任务。
func EncodeJob(j *PipelineJob) ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

// DecodeJob 反序列化并校验任务。
func DecodeJob(raw []byte) (*PipelineJob, error) {
	var j PipelineJob
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &j, nil
}
