// Package aiparse 解析生成式模型返回的半结构化文本：去除代码围栏、解析问题时间戳 JSON、
// 解析 Python 风格的字符串列表字面量。所有解析失败都以错误返回，由调用方决定是否降级。
package aiparse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed 表示模型输出无法解析为预期结构。
var ErrMalformed = errors.New("aiparse: malformed model output")

// UnwrapFenced 去掉模型常见的包装：多行文本先丢弃首行（语言标签行），再去掉结尾与开头的代码围栏。
func UnwrapFenced(raw string) string {
	s := strings.TrimSpace(raw)
	if _, rest, ok := strings.Cut(s, "\n"); ok {
		s = rest
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(s)
}

// Question 是一个问题及其举手作答的 yes/no 时间点（秒）。
type Question struct {
	Text string
	Yes  float64
	No   float64
}

// QuestionSet 对应 {"questions": [...]}。
type QuestionSet struct {
	Questions []Question
	Skipped   int // 结构正确但时间戳不合法的条目数
}

// EmptyQuestions 是解析失败时的降级结果。
func EmptyQuestions() QuestionSet {
	return QuestionSet{Questions: []Question{}}
}

// ParseQuestions 解析问题时间戳。支持两种形态：
//
//	{"questions": [{"Is 2+2=4?": [15.2, 17.2]}, ...]}
//	{"questions": {"Is 2+2=4?": [15.2, 17.2], ...}}
//
// 输出保持模型给出的顺序。
func ParseQuestions(raw string) (QuestionSet, error) {
	var envelope struct {
		Questions json.RawMessage `json:"questions"`
	}
	body := strings.TrimSpace(raw)
	if body == "" {
		return EmptyQuestions(), fmt.Errorf("%w: empty response", ErrMalformed)
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return EmptyQuestions(), fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	q := bytes.TrimSpace(envelope.Questions)
	if len(q) == 0 || bytes.Equal(q, []byte("null")) {
		return EmptyQuestions(), fmt.Errorf("%w: missing questions key", ErrMalformed)
	}

	set := EmptyQuestions()
	switch q[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(q, &items); err != nil {
			return EmptyQuestions(), fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		for _, item := range items {
			if err := collectPairs(item, &set); err != nil {
				return EmptyQuestions(), err
			}
		}
	case '{':
		if err := collectPairs(q, &set); err != nil {
			return EmptyQuestions(), err
		}
	default:
		return EmptyQuestions(), fmt.Errorf("%w: questions must be a list or object", ErrMalformed)
	}
	return set, nil
}

// collectPairs 按出现顺序读取对象中的 "问题": [yes, no]。
func collectPairs(raw json.RawMessage, set *QuestionSet) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: question entry must be an object", ErrMalformed)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key, _ := keyTok.(string)
		var pair []json.Number
		if err := dec.Decode(&pair); err != nil {
			set.Skipped++
			continue
		}
		q, ok := toQuestion(key, pair)
		if !ok {
			set.Skipped++
			continue
		}
		set.Questions = append(set.Questions, q)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func toQuestion(text string, pair []json.Number) (Question, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len(pair) != 2 {
		return Question{}, false
	}
	yes, err1 := pair[0].Float64()
	no, err2 := pair[1].Float64()
	if err1 != nil || err2 != nil || yes < 0 || no < 0 {
		return Question{}, false
	}
	return Question{Text: text, Yes: yes, No: no}, true
}
