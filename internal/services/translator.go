package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bionicotaku/lingo-services-lecture/internal/models/po"
	"github.com/bionicotaku/lingo-services-lecture/internal/repositories"

	"github.com/go-kratos/kratos/v2/log"
)

const translatePrompt = `Translate the following text to %s:

%s

Return only the translated text without any explanations or additional content.`

// Translator 按窗口切分转写文本并逐段翻译，结果按 (lecture, user, language) 缓存。
type Translator struct {
	store   TranslationStore
	ai      TextGenerator
	log     *log.Helper
	metrics *PipelineMetrics
}

// NewTranslator 构造翻译器。
func NewTranslator(store TranslationStore, ai TextGenerator, metrics *PipelineMetrics, logger log.Logger) (*Translator, error) {
	switch {
	case store == nil:
		return nil, errors.New("translator: translation store is required")
	case ai == nil:
		return nil, errors.New("translator: text generator is required")
	}
	return &Translator{store: store, ai: ai, metrics: metrics, log: log.NewHelper(logger)}, nil
}

// Translate 返回 text 的 lang 译文。缓存命中时不调用模型；任一窗口失败则不写缓存。
// cached 表示结果来自缓存。
func (t *Translator) Translate(ctx context.Context, lectureID, userID, text string, lang po.Language, window int) (record *po.TranslationRecord, cached bool, err error) {
	if lang.IsSource() {
		return nil, false, fmt.Errorf("%w: %s is the source language", ErrTranslation, lang)
	}
	if window <= 0 {
		return nil, false, fmt.Errorf("%w: window must be positive", ErrTranslation)
	}

	existing, err := t.store.Get(ctx, lectureID, userID, lang)
	switch {
	case err == nil:
		t.metrics.recordTranslation(ctx, true)
		return existing, true, nil
	case !errors.Is(err, repositories.ErrTranslationNotFound):
		return nil, false, fmt.Errorf("lookup translation: %w", err)
	}
	t.metrics.recordTranslation(ctx, false)

	windows := SplitWindows(text, window)
	parts := make([]string, 0, len(windows))
	for i, w := range windows {
		out, genErr := t.ai.Generate(ctx, fmt.Sprintf(translatePrompt, DisplayLanguage(lang), w))
		if genErr != nil {
			return nil, false, fmt.Errorf("%w: window %d/%d: %w", ErrTranslation, i+1, len(windows), genErr)
		}
		parts = append(parts, strings.TrimSpace(out))
	}

	record = &po.TranslationRecord{
		LectureID:      lectureID,
		UserID:         userID,
		Language:       lang,
		TranslatedText: strings.Join(parts, "\n"),
	}
	if err := t.store.Upsert(ctx, record); err != nil {
		return nil, false, fmt.Errorf("save translation: %w", err)
	}
	t.log.WithContext(ctx).Infof("transcript translated: lecture_id=%s language=%s windows=%d", lectureID, lang, len(windows))
	return record, false, nil
}

// SplitWindows 按字符（rune）切分，每段至多 size 个字符。空文本返回空切片。
func SplitWindows(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	out := make([]string, 0, utf8.RuneCountInString(text)/size+1)
	start, count := 0, 0
	for i := range text {
		if count == size {
			out = append(out, text[start:i])
			start, count = i, 0
		}
		count++
	}
	return append(out, text[start:])
}

// DisplayLanguage 返回首字母大写的语言名，用于提示词。
func DisplayLanguage(lang po.Language) string {
	s := string(lang)
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
