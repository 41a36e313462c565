package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/mediastore"
	"github.com/bionicotaku/lingo-services-lecture/internal/media"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	"github.com/go-kratos/kratos/v2/log"
)

func testLogger() log.Logger {
	return log.NewStdLogger(io.Discard)
}

func fastRetrier() *services.Retrier {
	return services.NewRetrier(configloader.RetryConfig{
		Initial:    time.Millisecond,
		Multiplier: 2,
		Max:        2 * time.Millisecond,
		Timeout:    200 * time.Millisecond,
	}, nil, testLogger())
}

type recordKey struct{ lecture, user string }

// ---- transcripts ----

type memTranscripts struct {
	mu      sync.Mutex
	records map[recordKey]*po.TranscriptRecord
	err     error
}

func newMemTranscripts() *memTranscripts {
	return &memTranscripts{records: map[recordKey]*po.TranscriptRecord{}}
}

func (m *memTranscripts) Upsert(_ context.Context, lectureID, userID string, segments []po.Segment) (*po.TranscriptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rec := &po.TranscriptRecord{
		LectureID:       lectureID,
		UserID:          userID,
		Segments:        segments,
		PlainTranscript: repositories.PlainText(segments),
	}
	m.records[recordKey{lectureID, userID}] = rec
	return rec, nil
}

func (m *memTranscripts) Get(_ context.Context, lectureID, userID string) (*po.TranscriptRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey{lectureID, userID}]
	if !ok {
		return nil, repositories.ErrTranscriptNotFound
	}
	return rec, nil
}

func (m *memTranscripts) put(lectureID, userID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey{lectureID, userID}] = &po.TranscriptRecord{LectureID: lectureID, UserID: userID, PlainTranscript: text}
}

// ---- translations ----

type memTranslations struct {
	mu      sync.Mutex
	records map[string]*po.TranslationRecord
	upserts int
}

func newMemTranslations() *memTranslations {
	return &memTranslations{records: map[string]*po.TranslationRecord{}}
}

func translationKey(lectureID, userID string, lang po.Language) string {
	return lectureID + "|" + userID + "|" + string(lang)
}

func (m *memTranslations) Get(_ context.Context, lectureID, userID string, lang po.Language) (*po.TranslationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[translationKey(lectureID, userID, lang)]
	if !ok {
		return nil, repositories.ErrTranslationNotFound
	}
	return rec, nil
}

func (m *memTranslations) Upsert(_ context.Context, record *po.TranslationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	cp := *record
	m.records[translationKey(record.LectureID, record.UserID, record.Language)] = &cp
	return nil
}

func (m *memTranslations) ListLanguages(_ context.Context, lectureID, userID string) ([]po.Language, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []po.Language
	for _, lang := range po.SupportedLanguages {
		if _, ok := m.records[translationKey(lectureID, userID, lang)]; ok {
			out = append(out, lang)
		}
	}
	return out, nil
}

// ---- statuses ----

type memStatuses struct {
	mu      sync.Mutex
	records map[recordKey]*po.ProcessingStatus
	labels  []string
}

func newMemStatuses() *memStatuses {
	return &memStatuses{records: map[recordKey]*po.ProcessingStatus{}}
}

func (m *memStatuses) Start(_ context.Context, lectureID, userID string, preferred po.Language) (*po.ProcessingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &po.ProcessingStatus{
		LectureID:         lectureID,
		UserID:            userID,
		Status:            po.RunStatusProcessing,
		Stage:             string(po.StageUploading),
		PreferredLanguage: preferred,
	}
	m.records[recordKey{lectureID, userID}] = s
	m.labels = append(m.labels, s.Stage)
	cp := *s
	return &cp, nil
}

func (m *memStatuses) update(lectureID, userID string, fn func(*po.ProcessingStatus)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[recordKey{lectureID, userID}]
	if !ok {
		return repositories.ErrStatusNotFound
	}
	fn(s)
	return nil
}

func (m *memStatuses) UpdateStage(_ context.Context, lectureID, userID, label string, progress int) error {
	return m.update(lectureID, userID, func(s *po.ProcessingStatus) {
		s.Status, s.Stage, s.Progress, s.Error = po.RunStatusProcessing, label, progress, nil
		m.labels = append(m.labels, label)
	})
}

func (m *memStatuses) MarkCompleted(_ context.Context, lectureID, userID string) error {
	return m.update(lectureID, userID, func(s *po.ProcessingStatus) {
		s.Status, s.Stage, s.Progress = po.RunStatusCompleted, string(po.StageCompleted), 100
		m.labels = append(m.labels, s.Stage)
	})
}

func (m *memStatuses) MarkError(_ context.Context, lectureID, userID, message string) error {
	return m.update(lectureID, userID, func(s *po.ProcessingStatus) {
		s.Status, s.Stage, s.Progress, s.Error = po.RunStatusError, string(po.StageError), 0, &message
		m.labels = append(m.labels, s.Stage)
	})
}

func (m *memStatuses) Get(_ context.Context, lectureID, userID string) (*po.ProcessingStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.records[recordKey{lectureID, userID}]
	if !ok {
		return nil, repositories.ErrStatusNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStatuses) StartTranslation(_ context.Context, lectureID, userID string, lang po.Language) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := recordKey{lectureID, userID}
	s, ok := m.records[key]
	if !ok {
		s = &po.ProcessingStatus{LectureID: lectureID, UserID: userID, Status: po.RunStatusCompleted, Stage: string(po.StageCompleted), Progress: 100}
		m.records[key] = s
	}
	s.TranslationStatus = po.TranslationStateProcessing
	s.TranslationLanguage = &lang
	s.TranslationProgress = repositories.TranslationProgressStarted
	s.TranslationError = nil
	return nil
}

func (m *memStatuses) CompleteTranslation(_ context.Context, lectureID, userID string, lang po.Language) error {
	return m.update(lectureID, userID, func(s *po.ProcessingStatus) {
		s.TranslationStatus = po.TranslationStateCompleted
		s.TranslationLanguage = &lang
		s.TranslationProgress = repositories.TranslationProgressDone
		s.TranslationError = nil
	})
}

func (m *memStatuses) FailTranslation(_ context.Context, lectureID, userID string, lang po.Language, message string) error {
	return m.update(lectureID, userID, func(s *po.ProcessingStatus) {
		s.TranslationStatus = po.TranslationStateError
		s.TranslationLanguage = &lang
		s.TranslationProgress = 0
		s.TranslationError = &message
	})
}

func (m *memStatuses) stageLabels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.labels...)
}

// ---- results ----

type memResults struct {
	mu      sync.Mutex
	records map[recordKey]*po.EngagementResult
	saves   int
}

func newMemResults() *memResults {
	return &memResults{records: map[recordKey]*po.EngagementResult{}}
}

func (m *memResults) Save(_ context.Context, result *po.EngagementResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cp := *result
	m.records[recordKey{result.LectureID, result.UserID}] = &cp
	return nil
}

func (m *memResults) MarkError(_ context.Context, lectureID, userID, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[recordKey{lectureID, userID}] = &po.EngagementResult{LectureID: lectureID, UserID: userID, Error: &message}
	return nil
}

func (m *memResults) Get(_ context.Context, lectureID, userID string) (*po.EngagementResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey{lectureID, userID}]
	if !ok {
		return nil, repositories.ErrResultsNotFound
	}
	return rec, nil
}

// ---- external services ----

// scriptedAI 依据提示词内容返回预设答案。
type scriptedAI struct {
	mu      sync.Mutex
	respond func(prompt string) (string, error)
	prompts []string
}

func (a *scriptedAI) Generate(_ context.Context, prompt string) (string, error) {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	respond := a.respond
	a.mu.Unlock()
	if respond == nil {
		return "", errors.New("no script")
	}
	return respond(prompt)
}

func (a *scriptedAI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.prompts)
}

func (a *scriptedAI) callsContaining(marker string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, p := range a.prompts {
		if strings.Contains(p, marker) {
			n++
		}
	}
	return n
}

const (
	markerLocate      = "Analyze this transcript"
	markerGroundTruth = "Give me 1 word answer"
	markerTopics      = "topics relating to each question"
	markerTranslate   = "Translate the following text"
)

// lectureAI 模拟一次完整分析的模型输出。
func lectureAI(locateResponse, truth string) *scriptedAI {
	return &scriptedAI{respond: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, markerLocate):
			return locateResponse, nil
		case strings.Contains(prompt, markerGroundTruth):
			return truth, nil
		case strings.Contains(prompt, markerTopics):
			return "['Arithmetic', 'Geography']", nil
		case strings.Contains(prompt, markerTranslate):
			return "translated", nil
		}
		return "", fmt.Errorf("unexpected prompt: %.40s", prompt)
	}}
}

type stubSTT struct {
	mu       sync.Mutex
	segments map[string][]po.Segment
	fail     map[string]error
	delay    time.Duration
	inflight int
	peak     int
}

func (s *stubSTT) Transcribe(ctx context.Context, audioPath string) ([]po.Segment, error) {
	s.mu.Lock()
	s.inflight++
	s.peak = max(s.peak, s.inflight)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.fail[filepath.Base(audioPath)]; err != nil {
		return nil, err
	}
	return s.segments[filepath.Base(audioPath)], nil
}

type stubVision struct {
	mu     sync.Mutex
	raised int
	err    error
	calls  int
}

func (v *stubVision) CountRaisedHands(_ context.Context, _ []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calls++
	return v.raised, v.err
}

// stubToolkit 模拟 ffmpeg：音频按 chunkLength 切片，帧按索引返回。
type stubToolkit struct {
	info       media.Info
	extractErr error
	probeErr   error
	frameFail  int // >0 时从该索引起解码失败
	probes     int
	frames     []int
}

func (s *stubToolkit) Probe(context.Context, string) (*media.Info, error) {
	s.probes++
	if s.probeErr != nil {
		return nil, s.probeErr
	}
	info := s.info
	return &info, nil
}

func (s *stubToolkit) ExtractAudio(_ context.Context, _, audioPath string) error {
	if s.extractErr != nil {
		return s.extractErr
	}
	return os.WriteFile(audioPath, []byte("audio"), 0o644)
}

func (s *stubToolkit) Split(_ context.Context, _, outDir string, length time.Duration) ([]media.Chunk, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	n := media.ChunkCount(s.info.Duration, length.Seconds())
	chunks := make([]media.Chunk, 0, n)
	for i := range n {
		path := media.ChunkPath(outDir, i)
		if err := os.WriteFile(path, []byte("chunk"), 0o644); err != nil {
			return nil, err
		}
		chunks = append(chunks, media.Chunk{Index: i, Path: path, Offset: float64(i) * length.Seconds()})
	}
	return chunks, nil
}

func (s *stubToolkit) FrameAt(_ context.Context, _ string, index int, _ float64) ([]byte, error) {
	if s.frameFail > 0 && index >= s.frameFail {
		return nil, errors.New("decode failed")
	}
	s.frames = append(s.frames, index)
	return []byte{0xff, 0xd8}, nil
}

// memMedia 是内存版的媒体存储。
type memMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemMedia() *memMedia {
	return &memMedia{objects: map[string][]byte{}}
}

func (m *memMedia) Put(_ context.Context, key string, r io.Reader, contentType string) (*po.MediaObject, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = raw
	return &po.MediaObject{Key: key, URI: "mem://" + key, ContentType: contentType, SizeBytes: int64(len(raw))}, nil
}

func (m *memMedia) Fetch(_ context.Context, key, dst string) error {
	m.mu.Lock()
	raw, ok := m.objects[key]
	m.mu.Unlock()
	if !ok {
		return mediastore.ErrNotFound
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, raw, 0o644)
}

func (m *memMedia) SignedURL(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, mediastore.ErrSigningUnsupported
}

type memQueue struct {
	mu   sync.Mutex
	jobs []*vo.PipelineJob
	err  error
}

func (q *memQueue) Enqueue(_ context.Context, job *vo.PipelineJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func externalErr(msg string) error {
	return fmt.Errorf("%w: %s", services.ErrExternalService, msg)
}
