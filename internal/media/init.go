package media

import (
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet 暴露 ffmpeg 工具集。
var ProviderSet = wire.NewSet(ProvideToolkit)

// ProvideToolkit 供 Wire 注入使用。
func ProvideToolkit(cfg configloader.MediaConfig, logger log.Logger) *Toolkit {
	return NewToolkit(cfg, logger)
}
