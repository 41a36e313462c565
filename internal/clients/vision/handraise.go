// Package vision 调用托管的目标检测模型统计画面中的举手人数。
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// Prediction 是检测接口返回的单个框。
type Prediction struct {
	ClassID    int     `json:"class_id"`
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type inferResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// HandRaiseClient 实现 services.HandRaiseDetector。
type HandRaiseClient struct {
	http    *khttp.Client
	target  string
	classID int
	log     *log.Helper
}

// NewHandRaiseClient 基于 kratos HTTP 客户端构造检测客户端。
// 请求地址为 {endpoint}/{model_id}?api_key=...，请求体为 base64 编码的 JPEG。
func NewHandRaiseClient(ctx context.Context, cfg configloader.VisionConfig, logger log.Logger) (*HandRaiseClient, func(), error) {
	if cfg.Endpoint == "" || cfg.ModelID == "" {
		return nil, nil, errors.New("vision client: endpoint and model id are required")
	}
	client, err := khttp.NewClient(ctx,
		khttp.WithEndpoint(cfg.Endpoint),
		khttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("vision client: %w", err)
	}

	query := url.Values{}
	if cfg.APIKey != "" {
		query.Set("api_key", cfg.APIKey)
	}
	target := strings.TrimRight(cfg.Endpoint, "/") + "/" + strings.Trim(cfg.ModelID, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	c := &HandRaiseClient{
		http:    client,
		target:  target,
		classID: cfg.HandRaisedClassID,
		log:     log.NewHelper(logger),
	}
	return c, func() { _ = client.Close() }, nil
}

// CountRaisedHands 返回 class_id 等于举手类别的检测框数量。
func (c *HandRaiseClient) CountRaisedHands(ctx context.Context, frame []byte) (int, error) {
	if len(frame) == 0 {
		return 0, errors.New("vision: empty frame")
	}
	body := base64.StdEncoding.EncodeToString(frame)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target, strings.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("vision: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, classify(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: vision: read response: %w", services.ErrExternalService, err)
	}
	var out inferResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, fmt.Errorf("vision: decode response: %w", err)
	}
	return CountClass(out.Predictions, c.classID), nil
}

// CountClass 统计指定类别的检测框。
func CountClass(predictions []Prediction, classID int) int {
	n := 0
	for _, p := range predictions {
		if p.ClassID == classID {
			n++
		}
	}
	return n
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("vision: %w", err)
	}
	if se := new(kerrors.Error); errors.As(err, &se) {
		code := int(se.Code)
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return fmt.Errorf("%w: vision: status %d: %w", services.ErrExternalService, code, err)
		}
		return fmt.Errorf("vision: status %d: %w", code, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: vision: %w", services.ErrExternalService, err)
	}
	return fmt.Errorf("vision: %w", err)
}
