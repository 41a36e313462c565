package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	openai "github.com/sashabaranov/go-openai"
)

// Classify 将 OpenAI 调用错误归类：限流、5xx 与网络超时包装为 services.ErrExternalService
// 以便重试，其余错误原样包装返回。
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if Transient(err) {
		return fmt.Errorf("%w: %s: %w", services.ErrExternalService, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Transient 判断错误是否值得重试。
func Transient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 || retryableStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
