package notify

import (
	"context"

	"sakanka/internal/metrics"
	"sakanka/pkg/queue"
)

// QueueNotifier hands SMS bodies to the Redis stream for the worker to
// deliver.
type QueueNotifier struct {
	queue   *queue.RedisNotifyQueue
	metrics *metrics.Metrics
}

func NewQueueNotifier(q *queue.RedisNotifyQueue, m *metrics.Metrics) *QueueNotifier {
	return &QueueNotifier{queue: q, metrics: m}
}

func (n *QueueNotifier) Notify(ctx context.Context, phone, body string) error {
	if _, err := n.queue.Enqueue(ctx, phone, body); err != nil {
		return err
	}
	if n.metrics != nil {
		n.metrics.NotificationsOut.Inc()
	}
	return nil
}
