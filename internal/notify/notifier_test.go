package notify

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"sakanka/internal/metrics"
	"sakanka/pkg/queue"
)

func TestQueueNotifierEnqueuesAndCounts(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	q, err := queue.NewRedisNotifyQueue(queue.RedisQueueConfig{Addr: redisSrv.Addr()})
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	n := NewQueueNotifier(q, m)

	if err := n.Notify(context.Background(), "+233201112222", "your listing is live"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if got := testutil.ToFloat64(m.NotificationsOut); got != 1 {
		t.Fatalf("expected 1 enqueued notification counted, got %v", got)
	}

	if err := n.Notify(context.Background(), "", "no phone"); err == nil {
		t.Fatalf("expected error for empty phone")
	}
	if got := testutil.ToFloat64(m.NotificationsOut); got != 1 {
		t.Fatalf("failed enqueue must not count, got %v", got)
	}
}

func TestQueueNotifierWithoutMetrics(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	q, err := queue.NewRedisNotifyQueue(queue.RedisQueueConfig{Addr: redisSrv.Addr()})
	if err != nil {
		t.Fatalf("queue: %v", err)
	}
	n := NewQueueNotifier(q, nil)
	if err := n.Notify(context.Background(), "+233201112222", "hello"); err != nil {
		t.Fatalf("notify: %v", err)
	}
}
