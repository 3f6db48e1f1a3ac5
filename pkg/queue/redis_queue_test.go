package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisNotifyQueueEnqueueTracksStatus(t *testing.T) {
	redisSrv := miniredis.RunT(t)
	q, err := NewRedisNotifyQueue(RedisQueueConfig{
		Addr:   redisSrv.Addr(),
		Stream: "test:notify",
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	ctx := context.Background()

	job, err := q.Enqueue(ctx, "+233201234567", "Your listing is live")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	got, ok, err := q.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if !ok {
		t.Fatalf("expected job %s to exist", job.ID)
	}
	if got.Status != StatusQueued {
		t.Fatalf("expected status %q, got %q", StatusQueued, got.Status)
	}
	if got.Phone != "+233201234567" || got.Body != "Your listing is live" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	if _, err := q.Enqueue(ctx, "", "hello"); err == nil {
		t.Fatalf("expected error for empty phone")
	}
	if _, err := q.Enqueue(ctx, "+233201234567", "  "); err == nil {
		t.Fatalf("expected error for empty body")
	}
}

func TestRedisNotifyQueueRequeueAndAckSuccess(t *testing.T) {
	q, ctx, msgID, job := newPendingNotifyMessage(t)

	if err := q.requeueAndAck(ctx, msgID, job.ID, job.Phone, job.Body); err != nil {
		t.Fatalf("requeue and ack: %v", err)
	}

	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 0 {
		t.Fatalf("expected no pending messages, got %d", pending.Count)
	}

	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: "consumer-2",
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    0,
	}).Result()
	if err != nil {
		t.Fatalf("read requeued message: %v", err)
	}
	if len(streams) != 1 || len(streams[0].Messages) != 1 {
		t.Fatalf("expected one requeued message, got %+v", streams)
	}
	got := streams[0].Messages[0]
	if got.Values["job_id"] != job.ID || got.Values["phone"] != job.Phone {
		t.Fatalf("unexpected requeued payload: %+v", got.Values)
	}
}

func TestRedisNotifyQueueRequeueAndAckFailureKeepsPendingMessage(t *testing.T) {
	q, ctx, msgID, job := newPendingNotifyMessage(t)

	canceledCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := q.requeueAndAck(canceledCtx, msgID, job.ID, job.Phone, job.Body); err == nil {
		t.Fatalf("expected requeueAndAck to fail on canceled context")
	}

	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 1 {
		t.Fatalf("expected original message to remain pending, got %d", pending.Count)
	}

	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if streamLen != 1 {
		t.Fatalf("expected no new message in stream on failure, got len=%d", streamLen)
	}
}

func newPendingNotifyMessage(t *testing.T) (*RedisNotifyQueue, context.Context, string, Notification) {
	t.Helper()

	redisSrv := miniredis.RunT(t)
	q, err := NewRedisNotifyQueue(RedisQueueConfig{
		Addr:       redisSrv.Addr(),
		Stream:     "test:notify",
		Group:      "test-group",
		Consumer:   "consumer-1",
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	ctx := context.Background()
	q.ensureGroup(ctx)

	job, err := q.Enqueue(ctx, "+233244000111", "A buyer is interested in your listing")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: "consumer-1",
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    0,
	}).Result()
	if err != nil {
		t.Fatalf("readgroup: %v", err)
	}
	if len(streams) != 1 || len(streams[0].Messages) != 1 {
		t.Fatalf("expected one pending message, got %+v", streams)
	}

	msg := streams[0].Messages[0]
	return q, ctx, msg.ID, job
}
