package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-lecture/internal/infrastructure/pubsubclient"
	"github.com/bionicotaku/lingo-services-lecture/internal/models/vo"
	"github.com/bionicotaku/lingo-services-lecture/internal/tasks/pipeline"

	"cloud.google.com/go/pubsub/pstest"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

func TestPubSubQueueDeliversAndAcks(t *testing.T) {
	ctx := context.Background()
	server := pstest.NewServer()
	defer server.Close()

	cfg := configloader.PubSubConfig{
		ProjectID:        "test-project",
		TopicID:          "lecture.jobs",
		SubscriptionID:   "lecture.jobs.worker",
		EmulatorEndpoint: server.Addr,
		NumGoroutines:    1,
		Enabled:          true,
	}
	topicName := fmt.Sprintf("projects/%s/topics/%s", cfg.ProjectID, cfg.TopicID)
	_, err := server.GServer.CreateTopic(ctx, &pubsubpb.Topic{Name: topicName})
	require.NoError(t, err)
	_, err = server.GServer.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:               fmt.Sprintf("projects/%s/subscriptions/%s", cfg.ProjectID, cfg.SubscriptionID),
		Topic:              topicName,
		AckDeadlineSeconds: 30,
	})
	require.NoError(t, err)

	client, err := pubsubclient.NewClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	q, err := pipeline.NewPubSubQueue(client, cfg, log.NewStdLogger(io.Discard))
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.Enqueue(ctx, processJob("j1", "lec-1")))
	require.NoError(t, q.Enqueue(ctx, translateJob("j2", "lec-1", "hindi")))
	require.Len(t, server.Messages(), 2)
	require.Equal(t, "process", server.Messages()[0].Attributes["kind"])

	var (
		mu  sync.Mutex
		got = map[string]vo.JobKind{}
	)
	runCtx, cancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() {
		errCh <- q.Receive(runCtx, func(_ context.Context, job *vo.PipelineJob) error {
			mu.Lock()
			defer mu.Unlock()
			got[job.ID] = job.Kind
			return fmt.Errorf("handler errors do not cause redelivery")
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 5*time.Second, 20*time.Millisecond)
	require.Equal(t, vo.JobKindProcess, got["j1"])
	require.Equal(t, vo.JobKindTranslate, got["j2"])

	require.Eventually(t, func() bool {
		for _, m := range server.Messages() {
			if m.Acks == 0 {
				return false
			}
		}
		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("pubsub receive did not stop")
	}
}

func TestPubSubQueueRejectsInvalidJob(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	cfg := configloader.PubSubConfig{ProjectID: "p", TopicID: "t", SubscriptionID: "s", EmulatorEndpoint: server.Addr}
	client, err := pubsubclient.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	defer client.Close()

	q, err := pipeline.NewPubSubQueue(client, cfg, log.NewStdLogger(io.Discard))
	require.NoError(t, err)
	defer q.Close()
	require.Error(t, q.Enqueue(context.Background(), &vo.PipelineJob{ID: "x"}))
	require.Empty(t, server.Messages())
}
