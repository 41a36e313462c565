// Package main 提供流水线 Runner 的独立进程入口，消费 redis/pubsub 队列中的处理与翻译任务。
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	configloader "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	pipelinerunner "github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"github.com/go-kratos/kratos/v2/log"

	_ "go.uber.org/automaxprocs"
)

type pipelineTaskApp struct {
	Runner *pipelinerunner.Runner
	Logger log.Logger
	Driver string
}

func main() {
	ctx := context.Background()

	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	params := configloader.Params{ConfPath: *confFlag}
	app, cleanup, err := wirePipelineTask(ctx, params)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	logger := app.Logger
	if logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	}
	helper := log.NewHelper(logger)

	if app.Driver == "" || app.Driver == "memory" {
		// 进程内队列无法跨进程共享，由 cmd/server 内置的 Runner 消费
		helper.Warn("pipeline worker disabled: queue.driver=memory is consumed by the server process")
		return
	}

	helper.Infof("starting pipeline runner: driver=%s", app.Driver)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Runner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		helper.Errorf("pipeline runner stopped unexpectedly: %v", err)
		os.Exit(1)
	}

	helper.Info("pipeline runner stopped")
}
