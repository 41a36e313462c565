package aiparse

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseStringList 解析 Python 风格的字符串列表字面量，例如 ['Algebra', "Newton's laws"]。
// 只接受字符串元素；允许结尾逗号与代码围栏包装。
func ParseStringList(raw string) ([]string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = UnwrapFenced(s)
	}
	p := &listParser{src: s}
	out, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}

type listParser struct {
	src string
	pos int
}

func (p *listParser) parse() ([]string, error) {
	p.skipSpace()
	if !p.consume('[') {
		return nil, fmt.Errorf("expected '[' at offset %d", p.pos)
	}
	out := []string{}
	for {
		p.skipSpace()
		if p.consume(']') {
			break
		}
		item, err := p.parseString()
		if err != nil {
			return nil, err
		}
		out = append(out, item)

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			break
		}
		return nil, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected trailing input at offset %d", p.pos)
	}
	return out, nil
}

func (p *listParser) parseString() (string, error) {
	if p.pos >= len(p.src) {
		return "", fmt.Errorf("unexpected end of input")
	}
	quote := p.src[p.pos]
	if quote != '\'' && quote != '"' {
		return "", fmt.Errorf("expected string at offset %d", p.pos)
	}
	p.pos++

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return "", fmt.Errorf("dangling escape at offset %d", p.pos)
			}
			p.pos++
			b.WriteString(unescape(p.src[p.pos]))
			p.pos++
		case c == '\n':
			return "", fmt.Errorf("unterminated string at offset %d", p.pos)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '\'', '"':
		return string(c)
	default:
		return "\\" + string(c)
	}
}

func (p *listParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *listParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}
