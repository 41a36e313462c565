// Package main boots the lecture HTTP service; with the memory queue it also runs the pipeline worker in-process.
package main

import (
	"context"
	"flag"
	"os"

	configloader "github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "lingo-services-lecture"
	// Version is the version of the compiled software.
	Version = "dev"

	id, _ = os.Hostname()
)

func newApp(logger log.Logger, meta configloader.ServiceMetadata, queueCfg configloader.QueueConfig, hs *http.Server, runner *pipeline.Runner) *kratos.App {
	servers := []transport.Server{hs}
	// redis/pubsub 驱动由独立的 cmd/tasks/pipeline 进程消费
	if queueCfg.Driver == "" || queueCfg.Driver == "memory" {
		servers = append(servers, runner)
	} else {
		log.NewHelper(logger).Infof("pipeline runner not started in-process: queue driver=%s", queueCfg.Driver)
	}
	return kratos.New(
		kratos.ID(firstNonEmpty(meta.InstanceID, id)),
		kratos.Name(firstNonEmpty(meta.Name, Name)),
		kratos.Version(firstNonEmpty(meta.Version, Version)),
		kratos.Metadata(map[string]string{"environment": meta.Environment}),
		kratos.Logger(logger),
		kratos.Server(servers...),
	)
}

func main() {
	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	app, cleanup, err := wireApp(context.Background(), configloader.Params{ConfPath: *confFlag})
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
