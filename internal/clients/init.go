// Package clients 汇总外部 AI 服务客户端的 Wire 装配，将其绑定到 Service 层接口。
package clients

import (
	"github.com/bionicotaku/lingo-services-lecture/internal/clients/ai"
	"github.com/bionicotaku/lingo-services-lecture/internal/clients/stt"
	"github.com/bionicotaku/lingo-services-lecture/internal/clients/vision"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/openaiclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/services"

	"github.com/google/wire"
)

// ProviderSet 提供转写、对话与举手检测客户端。
var ProviderSet = wire.NewSet(
	openaiclient.ProvideClient,
	stt.NewWhisperClient,
	ai.NewChatClient,
	vision.NewHandRaiseClient,
	wire.Bind(new(services.SpeechToText), new(*stt.WhisperClient)),
	wire.Bind(new(services.TextGenerator), new(*ai.ChatClient)),
	wire.Bind(new(services.HandRaiseDetector), new(*vision.HandRaiseClient)),
)
